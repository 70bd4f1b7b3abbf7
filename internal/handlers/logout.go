package handlers

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/audio-vault/internal/models"
)

// Logouter revokes the requester's token.
type Logouter interface {
	Logout(ctx context.Context, requester models.Identity) error
}

// NewLogoutHandler returns an HTTP handler that revokes the bearer token.
// @Summary User logout
// @Description Revokes the presented token until it expires
// @Tags users
// @Produce json
// @Success 200 {object} handlers.MessageResponse "Logged out"
// @Failure 403 {object} handlers.ErrorResponse "Missing or invalid token"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /user/logout [post]
// @Security BearerAuth
func NewLogoutHandler(svc Logouter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := requester(w, r)
		if !ok {
			return
		}

		if err := svc.Logout(r.Context(), identity); err != nil {
			writeInternalError(w, "Failed to log out", err)
			return
		}

		writeJSON(w, http.StatusOK, MessageResponse{Message: "Logged out"})
	}
}
