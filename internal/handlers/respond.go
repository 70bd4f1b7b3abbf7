package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sbilibin2017/audio-vault/internal/access"
	"github.com/sbilibin2017/audio-vault/internal/logger"
	"github.com/sbilibin2017/audio-vault/internal/middlewares"
	"github.com/sbilibin2017/audio-vault/internal/models"
)

// ErrorResponse is the body of every failed request.
// swagger:model ErrorResponse
type ErrorResponse struct {
	// Error message
	// default: Forbidden: Access denied
	Error string `json:"error"`
}

// MessageResponse is a plain confirmation.
// swagger:model MessageResponse
type MessageResponse struct {
	// default: Password updated
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Errorw("failed to encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func writeInternalError(w http.ResponseWriter, msg string, err error) {
	logger.Log.Errorw("internal server error", "err", err)
	writeError(w, http.StatusInternalServerError, msg)
}

// writeForbidden answers 403 with the deny reason when err is an access
// denial and reports whether it did.
func writeForbidden(w http.ResponseWriter, err error) bool {
	var denied *access.DeniedError
	if !errors.As(err, &denied) {
		return false
	}
	writeError(w, http.StatusForbidden, denied.Reason)
	return true
}

// requester returns the authenticated identity or answers 403.
func requester(w http.ResponseWriter, r *http.Request) (models.Identity, bool) {
	identity, ok := middlewares.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusForbidden, "Access token required")
	}
	return identity, ok
}

func parseUserID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// parseOwner reads the optional ?owner= override. Zero means the requester.
func parseOwner(r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get("owner")
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	return id, err == nil && id > 0
}
