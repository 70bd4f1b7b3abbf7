package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/sbilibin2017/audio-vault/internal/common"
	"github.com/sbilibin2017/audio-vault/internal/models"
)

// UserDeleter removes an account.
type UserDeleter interface {
	Delete(ctx context.Context, requester models.Identity, targetID int64) error
}

// NewDeleteUserHandler returns an HTTP handler for account deletion.
// @Summary Delete user
// @Description Users may delete their own account, admins any account.
// @Tags users
// @Produce json
// @Param id path int true "User id"
// @Success 204 "Deleted"
// @Failure 400 {object} handlers.ErrorResponse "Invalid user id"
// @Failure 403 {object} handlers.ErrorResponse "Forbidden: You can only delete your own account"
// @Failure 404 {object} handlers.ErrorResponse "User not found"
// @Failure 500 {object} handlers.ErrorResponse "Failed to delete user"
// @Router /user/{id} [delete]
// @Security BearerAuth
func NewDeleteUserHandler(svc UserDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := requester(w, r)
		if !ok {
			return
		}

		id, ok := parseUserID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "Invalid user id")
			return
		}

		if err := svc.Delete(r.Context(), identity, id); err != nil {
			switch {
			case writeForbidden(w, err):
			case errors.Is(err, common.ErrNotFound):
				writeError(w, http.StatusNotFound, "User not found")
			default:
				writeInternalError(w, "Failed to delete user", err)
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
