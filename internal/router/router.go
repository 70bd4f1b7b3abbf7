// Package router assembles the HTTP routes and middleware chain.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/sbilibin2017/audio-vault/docs"
	"github.com/sbilibin2017/audio-vault/internal/handlers"
	"github.com/sbilibin2017/audio-vault/internal/middlewares"
	"github.com/sbilibin2017/audio-vault/internal/services"
)

// Deps are the collaborators the routes are built from.
type Deps struct {
	Users       *services.UserService
	Audio       *services.AudioService
	Tokener     middlewares.Tokener
	Revocations middlewares.RevocationChecker // may be nil

	// DB wraps account writes in a request transaction. Nil disables it.
	DB *sqlx.DB

	// AllowedOrigins are the CORS origins; empty allows any.
	AllowedOrigins []string

	HealthChecks   map[string]handlers.HealthChecker
	MaxUploadBytes int64
	UploadMessage  string
	SwaggerURL     string
}

// New returns the service's root handler.
func New(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware)
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.AllowedOrigins))

	tx := func(h http.HandlerFunc) http.Handler {
		if d.DB == nil {
			return h
		}
		return middlewares.TxMiddleware(d.DB)(h)
	}
	auth := middlewares.AuthMiddleware(d.Tokener, d.Revocations)

	r.Get("/health", handlers.NewHealthHandler(d.HealthChecks))
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(d.SwaggerURL)))

	r.Route("/user", func(r chi.Router) {
		r.Method(http.MethodPost, "/", tx(handlers.NewRegisterHandler(d.Users)))
		r.Post("/login", handlers.NewLoginHandler(d.Users))

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Post("/logout", handlers.NewLogoutHandler(d.Users))
			r.Get("/", handlers.NewListUsersHandler(d.Users))
			r.Get("/{username}", handlers.NewGetUserHandler(d.Users))
			r.Method(http.MethodPut, "/{id}", tx(handlers.NewUpdatePasswordHandler(d.Users)))
			r.Method(http.MethodDelete, "/{id}", tx(handlers.NewDeleteUserHandler(d.Users)))
		})
	})

	r.Route("/audio", func(r chi.Router) {
		r.Use(auth)
		r.Post("/upload", handlers.NewUploadAudioHandler(d.Audio, d.MaxUploadBytes, d.UploadMessage))
		r.Get("/", handlers.NewListAudioHandler(d.Audio))
		r.Get("/play/{fileName}", handlers.NewPlayAudioHandler(d.Audio))
		r.Delete("/{fileName}", handlers.NewDeleteAudioHandler(d.Audio))
	})

	return r
}
