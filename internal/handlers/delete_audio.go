package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sbilibin2017/audio-vault/internal/common"
	"github.com/sbilibin2017/audio-vault/internal/models"
)

// AudioDeleter removes a stored file.
type AudioDeleter interface {
	Delete(ctx context.Context, requester models.Identity, ownerID int64, name string) error
}

// NewDeleteAudioHandler returns an HTTP handler deleting an audio file.
// @Summary Delete audio
// @Description Deletes one of the requester's files. Admins may pass owner to delete another user's file.
// @Tags audio
// @Produce json
// @Param fileName path string true "File name"
// @Param owner query int false "Owner user id"
// @Success 204 "Deleted"
// @Failure 400 {object} handlers.ErrorResponse "Invalid owner id"
// @Failure 403 {object} handlers.ErrorResponse "Forbidden: you may only delete your own files"
// @Failure 404 {object} handlers.ErrorResponse "File not found"
// @Failure 500 {object} handlers.ErrorResponse "Failed to delete file"
// @Router /audio/{fileName} [delete]
// @Security BearerAuth
func NewDeleteAudioHandler(svc AudioDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := requester(w, r)
		if !ok {
			return
		}

		owner, ok := parseOwner(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "Invalid owner id")
			return
		}

		if err := svc.Delete(r.Context(), identity, owner, chi.URLParam(r, "fileName")); err != nil {
			switch {
			case writeForbidden(w, err):
			case errors.Is(err, common.ErrNotFound):
				writeError(w, http.StatusNotFound, "File not found")
			default:
				writeInternalError(w, "Failed to delete file", err)
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
