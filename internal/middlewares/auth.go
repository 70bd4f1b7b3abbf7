package middlewares

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sbilibin2017/audio-vault/internal/jwt"
	"github.com/sbilibin2017/audio-vault/internal/logger"
	"github.com/sbilibin2017/audio-vault/internal/models"
)

// Tokener defines the minimal interface needed by the middleware
type Tokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// RevocationChecker reports whether a token was revoked by logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuthMiddleware verifies the bearer token and stores the requester
// identity in the request context. Every authentication failure is a 403.
// revocations may be nil.
func AuthMiddleware(tokener Tokener, revocations RevocationChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			tokenString, err := tokener.GetTokenFromRequest(ctx, r)
			if err != nil {
				logger.Log.Infow("authorization failed", "err", err)
				writeError(w, http.StatusForbidden, "Access token required")
				return
			}

			claims, err := tokener.GetClaims(ctx, tokenString)
			if err != nil {
				logger.Log.Infow("authorization failed", "err", err)
				msg := "Invalid token"
				if errors.Is(err, jwt.ErrExpired) {
					msg = "Token expired"
				}
				writeError(w, http.StatusForbidden, msg)
				return
			}

			identity := claims.Identity()

			if revocations != nil && identity.TokenID != "" {
				revoked, err := revocations.IsRevoked(ctx, identity.TokenID)
				if err != nil {
					logger.Log.Errorw("failed to check token revocation", "user_id", identity.ID, "err", err)
					writeError(w, http.StatusInternalServerError, "Internal server error")
					return
				}
				if revoked {
					logger.Log.Infow("authorization failed: token revoked", "user_id", identity.ID)
					writeError(w, http.StatusForbidden, "Token revoked")
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, identity)))
		})
	}
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying identity.
func WithIdentity(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext returns the identity stored by AuthMiddleware.
func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(models.Identity)
	return identity, ok
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
