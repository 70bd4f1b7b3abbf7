package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sbilibin2017/audio-vault/internal/common"
	"github.com/sbilibin2017/audio-vault/internal/models"
	"github.com/sbilibin2017/audio-vault/internal/services"
)

// PasswordUpdater changes a user's password.
type PasswordUpdater interface {
	UpdatePassword(ctx context.Context, requester models.Identity, targetID int64, password string) error
}

// UpdatePasswordRequest is the body of a password change.
// swagger:model UpdatePasswordRequest
type UpdatePasswordRequest struct {
	// New password
	// required: true
	// default: secret2
	Password string `json:"password"`
}

// NewUpdatePasswordHandler returns an HTTP handler for password changes.
// @Summary Update password
// @Description Users may change their own password, admins anyone's.
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User id"
// @Param updatePasswordRequest body handlers.UpdatePasswordRequest true "New password"
// @Success 200 {object} handlers.MessageResponse "Password updated"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request"
// @Failure 403 {object} handlers.ErrorResponse "Forbidden: Access denied"
// @Failure 404 {object} handlers.ErrorResponse "User not found"
// @Failure 500 {object} handlers.ErrorResponse "Failed to update user"
// @Router /user/{id} [put]
// @Security BearerAuth
func NewUpdatePasswordHandler(svc PasswordUpdater) http.HandlerFunc {
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

		var req UpdatePasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if err := svc.UpdatePassword(r.Context(), identity, id, req.Password); err != nil {
			switch {
			case writeForbidden(w, err):
			case errors.Is(err, services.ErrPasswordRequired):
				writeError(w, http.StatusBadRequest, "Password is required")
			case errors.Is(err, common.ErrNotFound):
				writeError(w, http.StatusNotFound, "User not found")
			default:
				writeInternalError(w, "Failed to update user", err)
			}
			return
		}

		writeJSON(w, http.StatusOK, MessageResponse{Message: "Password updated"})
	}
}
