package handlers

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/audio-vault/internal/models"
)

// AudioLister lists stored files.
type AudioLister interface {
	List(ctx context.Context, requester models.Identity, ownerID int64) ([]models.AudioFile, error)
}

// ListAudioResponse wraps the file list.
// swagger:model ListAudioResponse
type ListAudioResponse struct {
	Files []AudioFileResponse `json:"files"`
}

// NewListAudioHandler returns an HTTP handler listing audio files.
// @Summary List audio
// @Description Lists the requester's files. Admins may pass owner to list another user's files.
// @Tags audio
// @Produce json
// @Param owner query int false "Owner user id (admin only)"
// @Success 200 {object} handlers.ListAudioResponse "Files"
// @Failure 400 {object} handlers.ErrorResponse "Invalid owner id"
// @Failure 403 {object} handlers.ErrorResponse "Forbidden: Access denied"
// @Failure 500 {object} handlers.ErrorResponse "Failed to list files"
// @Router /audio [get]
// @Security BearerAuth
func NewListAudioHandler(svc AudioLister) http.HandlerFunc {
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

		files, err := svc.List(r.Context(), identity, owner)
		if err != nil {
			if !writeForbidden(w, err) {
				writeInternalError(w, "Failed to list files", err)
			}
			return
		}

		resp := ListAudioResponse{Files: make([]AudioFileResponse, 0, len(files))}
		for _, f := range files {
			resp.Files = append(resp.Files, toAudioFileResponse(f))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
