package middlewares

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// CORSMiddleware lets the browser client call the API from the given
// origins. An empty list allows any origin.
func CORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:         300,
	})
}

// SecurityHeaders sets the browser hardening headers on every response.
// Cross-origin embedding stays allowed so the client can play audio.
func SecurityHeaders() func(http.Handler) http.Handler {
	return chi.Chain(
		chimiddleware.SetHeader("X-Content-Type-Options", "nosniff"),
		chimiddleware.SetHeader("X-Frame-Options", "SAMEORIGIN"),
		chimiddleware.SetHeader("Referrer-Policy", "no-referrer"),
		chimiddleware.SetHeader("X-DNS-Prefetch-Control", "off"),
		chimiddleware.SetHeader("Strict-Transport-Security", "max-age=15552000; includeSubDomains"),
		chimiddleware.SetHeader("Cross-Origin-Resource-Policy", "cross-origin"),
	).Handler
}
