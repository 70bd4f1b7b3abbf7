// Package storage keeps per-user audio files either on the local
// filesystem or in an S3-compatible object store. Both backends scope every
// file by its owner id and enforce the same validation rules.
package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sbilibin2017/audio-vault/internal/common"
)

// DefaultMaxSize is the upload ceiling (2 MiB).
const DefaultMaxSize int64 = 2 << 20

var (
	ErrFileNotFound         = fmt.Errorf("%w: file not found", common.ErrNotFound)
	ErrPayloadTooLarge      = fmt.Errorf("%w: file too large", common.ErrValidation)
	ErrUnsupportedMediaType = fmt.Errorf("%w: only audio files are allowed", common.ErrValidation)
	ErrInvalidFileName      = fmt.Errorf("%w: invalid file name", common.ErrValidation)
)

// ValidateName rejects names that could escape the owner scope or clash
// with in-progress uploads.
func ValidateName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return ErrInvalidFileName
	case strings.HasPrefix(name, "."):
		return ErrInvalidFileName
	case strings.ContainsAny(name, `/\`), strings.ContainsRune(name, 0):
		return ErrInvalidFileName
	case filepath.Base(name) != name:
		return ErrInvalidFileName
	}
	return nil
}

// ValidateContentType accepts audio/* media types only.
func ValidateContentType(contentType string) error {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "audio/") {
		return ErrUnsupportedMediaType
	}
	return nil
}

// ContentTypeByName guesses the media type from the file extension.
func ContentTypeByName(name string) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".ogg":
		return "audio/ogg"
	case ".flac":
		return "audio/flac"
	case ".m4a":
		return "audio/mp4"
	}
	return "application/octet-stream"
}

func ownerKey(ownerID int64) string {
	return strconv.FormatInt(ownerID, 10)
}

// contextReader stops reading once ctx is cancelled, so an aborted request
// stops the copy of an in-flight stream.
type contextReader struct {
	ctx context.Context
	rc  io.ReadCloser
}

func newContextReader(ctx context.Context, rc io.ReadCloser) io.ReadCloser {
	return &contextReader{ctx: ctx, rc: rc}
}

func (r *contextReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.rc.Read(p)
}

func (r *contextReader) Close() error {
	return r.rc.Close()
}
