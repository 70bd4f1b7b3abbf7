package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sbilibin2017/audio-vault/internal/common"
	"github.com/sbilibin2017/audio-vault/internal/models"
)

// ProfileGetter looks up a user by name.
type ProfileGetter interface {
	GetProfile(ctx context.Context, requester models.Identity, username string) (*models.User, error)
}

// NewGetUserHandler returns an HTTP handler for a user's public profile.
// @Summary Get user
// @Description Returns id, username and role. Users may read their own profile, admins any profile.
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} handlers.UserResponse "User"
// @Failure 403 {object} handlers.ErrorResponse "Forbidden: Access denied"
// @Failure 404 {object} handlers.ErrorResponse "User not found"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /user/{username} [get]
// @Security BearerAuth
func NewGetUserHandler(svc ProfileGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := requester(w, r)
		if !ok {
			return
		}

		user, err := svc.GetProfile(r.Context(), identity, chi.URLParam(r, "username"))
		if err != nil {
			switch {
			case writeForbidden(w, err):
			case errors.Is(err, common.ErrNotFound):
				writeError(w, http.StatusNotFound, "User not found")
			default:
				writeInternalError(w, "Internal server error", err)
			}
			return
		}

		writeJSON(w, http.StatusOK, toUserResponse(*user))
	}
}
