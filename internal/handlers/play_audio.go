package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sbilibin2017/audio-vault/internal/common"
	"github.com/sbilibin2017/audio-vault/internal/logger"
	"github.com/sbilibin2017/audio-vault/internal/models"
)

// AudioOpener opens a stored file for streaming.
type AudioOpener interface {
	Open(ctx context.Context, requester models.Identity, ownerID int64, name string) (*models.AudioStream, error)
}

// NewPlayAudioHandler returns an HTTP handler streaming an audio file.
// @Summary Play audio
// @Description Streams the file bytes. Admins may pass owner to play another user's file.
// @Tags audio
// @Produce octet-stream
// @Param fileName path string true "File name"
// @Param owner query int false "Owner user id (admin only)"
// @Success 200 {file} binary "Audio bytes"
// @Failure 400 {object} handlers.ErrorResponse "Invalid owner id"
// @Failure 403 {object} handlers.ErrorResponse "Forbidden: Access denied"
// @Failure 404 {object} handlers.ErrorResponse "File not found"
// @Failure 500 {object} handlers.ErrorResponse "Failed to open file"
// @Router /audio/play/{fileName} [get]
// @Security BearerAuth
func NewPlayAudioHandler(svc AudioOpener) http.HandlerFunc {
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

		stream, err := svc.Open(r.Context(), identity, owner, chi.URLParam(r, "fileName"))
		if err != nil {
			switch {
			case writeForbidden(w, err):
			case errors.Is(err, common.ErrNotFound):
				writeError(w, http.StatusNotFound, "File not found")
			default:
				writeInternalError(w, "Failed to open file", err)
			}
			return
		}
		defer stream.Body.Close()

		w.Header().Set("Content-Type", stream.ContentType)
		if stream.Size > 0 {
			w.Header().Set("Content-Length", strconv.FormatInt(stream.Size, 10))
		}
		w.WriteHeader(http.StatusOK)

		if _, err := io.Copy(w, stream.Body); err != nil {
			logger.Log.Infow("audio stream interrupted", "user_id", identity.ID, "err", err)
		}
	}
}
