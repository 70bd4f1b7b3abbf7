package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/sbilibin2017/audio-vault/internal/logger"
	"github.com/sbilibin2017/audio-vault/internal/models"
	"github.com/sbilibin2017/audio-vault/internal/storage"
)

// AudioFormField is the multipart field carrying the upload.
const AudioFormField = "audio"

// multipartOverhead is the room left for boundaries and part headers on
// top of the file size limit.
const multipartOverhead = 512 << 10

// AudioUploader stores an uploaded file.
type AudioUploader interface {
	Upload(ctx context.Context, requester models.Identity, name, contentType string, body io.Reader) (*models.AudioFile, error)
}

// AudioFileResponse describes a stored file.
// swagger:model AudioFileResponse
type AudioFileResponse struct {
	// default: song.mp3
	Name string `json:"name"`
	// Size in bytes
	// default: 1048576
	Size int64 `json:"size"`
	// Filesystem path or object URL
	// default: audio/1/song.mp3
	Location string `json:"location"`
}

// UploadAudioResponse is returned after a successful upload.
// swagger:model UploadAudioResponse
type UploadAudioResponse struct {
	// default: File uploaded locally
	Message  string            `json:"message"`
	Metadata AudioFileResponse `json:"metadata"`
}

func toAudioFileResponse(f models.AudioFile) AudioFileResponse {
	return AudioFileResponse{Name: f.Name, Size: f.Size, Location: f.Location}
}

// NewUploadAudioHandler returns an HTTP handler for audio uploads. The file
// is streamed from the multipart body into the store. successMessage names
// the backend, e.g. "File uploaded locally".
// @Summary Upload audio
// @Description Uploads an audio/* file of at most 2 MiB into the requester's storage.
// @Tags audio
// @Accept multipart/form-data
// @Produce json
// @Param audio formData file true "Audio file"
// @Success 201 {object} handlers.UploadAudioResponse "Stored file"
// @Failure 400 {object} handlers.ErrorResponse "No file uploaded / Only audio files are allowed"
// @Failure 403 {object} handlers.ErrorResponse "Missing or invalid token"
// @Failure 413 {object} handlers.ErrorResponse "File too large"
// @Failure 500 {object} handlers.ErrorResponse "Failed to upload file"
// @Router /audio/upload [post]
// @Security BearerAuth
func NewUploadAudioHandler(svc AudioUploader, maxBytes int64, successMessage string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := requester(w, r)
		if !ok {
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
		tooLarge := tooLargeMessage(maxBytes)

		part, err := nextAudioPart(r)
		if err != nil {
			if isTooLarge(err) {
				writeError(w, http.StatusRequestEntityTooLarge, tooLarge)
				return
			}
			logger.Log.Infow("no file in upload", "user_id", identity.ID, "err", err)
			writeError(w, http.StatusBadRequest, "No file uploaded")
			return
		}
		defer part.Close()

		contentType := part.Header.Get("Content-Type")
		if contentType == "" || contentType == "application/octet-stream" {
			contentType = storage.ContentTypeByName(part.FileName())
		}

		file, err := svc.Upload(r.Context(), identity, part.FileName(), contentType, part)
		if err != nil {
			switch {
			case writeForbidden(w, err):
			case isTooLarge(err):
				writeError(w, http.StatusRequestEntityTooLarge, tooLarge)
			case errors.Is(err, storage.ErrUnsupportedMediaType):
				writeError(w, http.StatusBadRequest, "Only audio files are allowed")
			case errors.Is(err, storage.ErrInvalidFileName):
				writeError(w, http.StatusBadRequest, "Invalid file name")
			default:
				writeInternalError(w, "Failed to upload file", err)
			}
			return
		}

		writeJSON(w, http.StatusCreated, UploadAudioResponse{
			Message:  successMessage,
			Metadata: toAudioFileResponse(*file),
		})
	}
}

// nextAudioPart skips ahead to the first file part named AudioFormField.
func nextAudioPart(r *http.Request) (*multipart.Part, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, err
	}
	for {
		part, err := mr.NextPart()
		if err != nil {
			return nil, err
		}
		if part.FormName() == AudioFormField && part.FileName() != "" {
			return part, nil
		}
		if _, err := io.Copy(io.Discard, part); err != nil {
			return nil, err
		}
		part.Close()
	}
}

// tooLargeMessage names the limit in whole megabytes or kilobytes when it
// divides evenly, in bytes otherwise.
func tooLargeMessage(maxBytes int64) string {
	var size string
	switch {
	case maxBytes > 0 && maxBytes%(1<<20) == 0:
		size = fmt.Sprintf("%dMB", maxBytes>>20)
	case maxBytes > 0 && maxBytes%(1<<10) == 0:
		size = fmt.Sprintf("%dKB", maxBytes>>10)
	default:
		size = fmt.Sprintf("%d bytes", maxBytes)
	}
	return "File too large. The maximum allowed size is " + size + "."
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || errors.Is(err, storage.ErrPayloadTooLarge)
}
