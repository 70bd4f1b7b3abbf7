package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbilibin2017/audio-vault/internal/access"
	"github.com/sbilibin2017/audio-vault/internal/models"
	"github.com/sbilibin2017/audio-vault/internal/storage"
)

func multipartBody(t *testing.T, field, fileName, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	require.NoError(t, mw.WriteField("note", "ignored"))

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, fileName))
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func uploadRequest(t *testing.T, field, fileName, contentType string, data []byte) *http.Request {
	body, ct := multipartBody(t, field, fileName, contentType, data)
	req := httptest.NewRequest(http.MethodPost, "/audio/upload", body)
	req.Header.Set("Content-Type", ct)
	return authed(req, &alice, nil)
}

func TestUploadAudioHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := NewMockAudioUploader(gomock.NewController(t))
		svc.EXPECT().
			Upload(gomock.Any(), alice, "x.mp3", "audio/mpeg", gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ models.Identity, name, _ string, body io.Reader) (*models.AudioFile, error) {
				data, err := io.ReadAll(body)
				require.NoError(t, err)
				assert.Equal(t, "id3", string(data))
				return &models.AudioFile{OwnerID: 1, Name: name, Size: 3, Location: "audio/1/x.mp3"}, nil
			})

		rr := httptest.NewRecorder()
		NewUploadAudioHandler(svc, storage.DefaultMaxSize, "File uploaded locally")(rr, uploadRequest(t, "audio", "x.mp3", "audio/mpeg", []byte("id3")))

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.JSONEq(t, `{"message":"File uploaded locally","metadata":{"name":"x.mp3","size":3,"location":"audio/1/x.mp3"}}`, rr.Body.String())
	})

	t.Run("content type guessed from extension", func(t *testing.T) {
		svc := NewMockAudioUploader(gomock.NewController(t))
		svc.EXPECT().
			Upload(gomock.Any(), alice, "x.mp3", gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ models.Identity, name, contentType string, body io.Reader) (*models.AudioFile, error) {
				assert.True(t, strings.HasPrefix(contentType, "audio/"))
				return &models.AudioFile{Name: name}, nil
			})

		rr := httptest.NewRecorder()
		NewUploadAudioHandler(svc, storage.DefaultMaxSize, "ok")(rr, uploadRequest(t, "audio", "x.mp3", "", []byte("id3")))

		assert.Equal(t, http.StatusCreated, rr.Code)
	})

	t.Run("wrong field", func(t *testing.T) {
		svc := NewMockAudioUploader(gomock.NewController(t))

		rr := httptest.NewRecorder()
		NewUploadAudioHandler(svc, storage.DefaultMaxSize, "ok")(rr, uploadRequest(t, "file", "x.mp3", "audio/mpeg", []byte("id3")))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "No file uploaded", decodeError(t, rr))
	})

	t.Run("not multipart", func(t *testing.T) {
		svc := NewMockAudioUploader(gomock.NewController(t))
		req := authed(httptest.NewRequest(http.MethodPost, "/audio/upload", strings.NewReader("{}")), &alice, nil)
		req.Header.Set("Content-Type", "application/json")

		rr := httptest.NewRecorder()
		NewUploadAudioHandler(svc, storage.DefaultMaxSize, "ok")(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "No file uploaded", decodeError(t, rr))
	})

	t.Run("not audio", func(t *testing.T) {
		svc := NewMockAudioUploader(gomock.NewController(t))
		svc.EXPECT().Upload(gomock.Any(), alice, "x.png", "image/png", gomock.Any()).Return(nil, storage.ErrUnsupportedMediaType)

		rr := httptest.NewRecorder()
		NewUploadAudioHandler(svc, storage.DefaultMaxSize, "ok")(rr, uploadRequest(t, "audio", "x.png", "image/png", []byte("png")))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Only audio files are allowed", decodeError(t, rr))
	})

	t.Run("too large in store", func(t *testing.T) {
		svc := NewMockAudioUploader(gomock.NewController(t))
		svc.EXPECT().Upload(gomock.Any(), alice, "big.mp3", "audio/mpeg", gomock.Any()).Return(nil, storage.ErrPayloadTooLarge)

		rr := httptest.NewRecorder()
		NewUploadAudioHandler(svc, storage.DefaultMaxSize, "ok")(rr, uploadRequest(t, "audio", "big.mp3", "audio/mpeg", []byte("x")))

		assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
		assert.Equal(t, "File too large. The maximum allowed size is 2MB.", decodeError(t, rr))
	})

	t.Run("too large names configured limit", func(t *testing.T) {
		svc := NewMockAudioUploader(gomock.NewController(t))
		svc.EXPECT().Upload(gomock.Any(), alice, "big.mp3", "audio/mpeg", gomock.Any()).Return(nil, storage.ErrPayloadTooLarge)

		rr := httptest.NewRecorder()
		NewUploadAudioHandler(svc, 5<<20, "ok")(rr, uploadRequest(t, "audio", "big.mp3", "audio/mpeg", []byte("x")))

		assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
		assert.Equal(t, "File too large. The maximum allowed size is 5MB.", decodeError(t, rr))
	})

	t.Run("body over the request limit", func(t *testing.T) {
		svc := NewMockAudioUploader(gomock.NewController(t))
		svc.EXPECT().
			Upload(gomock.Any(), alice, "big.mp3", "audio/mpeg", gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ models.Identity, _, _ string, body io.Reader) (*models.AudioFile, error) {
				_, err := io.Copy(io.Discard, body)
				return nil, err
			})

		data := bytes.Repeat([]byte{1}, 2*multipartOverhead)
		rr := httptest.NewRecorder()
		NewUploadAudioHandler(svc, 16, "ok")(rr, uploadRequest(t, "audio", "big.mp3", "audio/mpeg", data))

		assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	})

	t.Run("bad name", func(t *testing.T) {
		svc := NewMockAudioUploader(gomock.NewController(t))
		svc.EXPECT().Upload(gomock.Any(), alice, gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, storage.ErrInvalidFileName)

		rr := httptest.NewRecorder()
		NewUploadAudioHandler(svc, storage.DefaultMaxSize, "ok")(rr, uploadRequest(t, "audio", ".hidden.mp3", "audio/mpeg", []byte("x")))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		svc := NewMockAudioUploader(gomock.NewController(t))
		svc.EXPECT().Upload(gomock.Any(), alice, "x.mp3", "audio/mpeg", gomock.Any()).Return(nil, errors.New("s3 down"))

		rr := httptest.NewRecorder()
		NewUploadAudioHandler(svc, storage.DefaultMaxSize, "ok")(rr, uploadRequest(t, "audio", "x.mp3", "audio/mpeg", []byte("x")))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, "Failed to upload file", decodeError(t, rr))
	})
}

func TestTooLargeMessage(t *testing.T) {
	tests := []struct {
		maxBytes int64
		want     string
	}{
		{2 << 20, "File too large. The maximum allowed size is 2MB."},
		{512 << 10, "File too large. The maximum allowed size is 512KB."},
		{1000, "File too large. The maximum allowed size is 1000 bytes."},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tooLargeMessage(tt.maxBytes))
	}
}

func TestListAudioHandler(t *testing.T) {
	tests := []struct {
		name         string
		identity     models.Identity
		query        string
		owner        int64
		files        []models.AudioFile
		err          error
		noCall       bool
		expectedCode int
		expectedBody string
	}{
		{
			name:         "own files",
			identity:     alice,
			files:        []models.AudioFile{{OwnerID: 1, Name: "a.mp3", Size: 3, Location: "audio/1/a.mp3"}},
			expectedCode: http.StatusOK,
			expectedBody: `{"files":[{"name":"a.mp3","size":3,"location":"audio/1/a.mp3"}]}`,
		},
		{
			name:         "empty",
			identity:     alice,
			files:        nil,
			expectedCode: http.StatusOK,
			expectedBody: `{"files":[]}`,
		},
		{
			name:         "admin override",
			identity:     admin,
			query:        "?owner=1",
			owner:        1,
			files:        []models.AudioFile{},
			expectedCode: http.StatusOK,
			expectedBody: `{"files":[]}`,
		},
		{
			name:         "override denied",
			identity:     bob,
			query:        "?owner=1",
			owner:        1,
			err:          denied(access.ReasonAccessDenied),
			expectedCode: http.StatusForbidden,
			expectedBody: `{"error":"Forbidden: Access denied"}`,
		},
		{
			name:         "bad owner",
			identity:     admin,
			query:        "?owner=x",
			noCall:       true,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Invalid owner id"}`,
		},
		{
			name:         "failure",
			identity:     alice,
			err:          errors.New("s3 down"),
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"Failed to list files"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewMockAudioLister(gomock.NewController(t))
			if !tt.noCall {
				svc.EXPECT().List(gomock.Any(), tt.identity, tt.owner).Return(tt.files, tt.err)
			}

			rr := httptest.NewRecorder()
			NewListAudioHandler(svc)(rr, authed(httptest.NewRequest(http.MethodGet, "/audio"+tt.query, nil), &tt.identity, nil))

			assert.Equal(t, tt.expectedCode, rr.Code)
			assert.JSONEq(t, tt.expectedBody, rr.Body.String())
		})
	}
}

func TestPlayAudioHandler(t *testing.T) {
	t.Run("streams bytes", func(t *testing.T) {
		svc := NewMockAudioOpener(gomock.NewController(t))
		svc.EXPECT().Open(gomock.Any(), alice, int64(0), "x.mp3").Return(&models.AudioStream{
			Body:        io.NopCloser(strings.NewReader("audio-bytes")),
			Size:        11,
			ContentType: "audio/mpeg",
		}, nil)

		req := authed(httptest.NewRequest(http.MethodGet, "/audio/play/x.mp3", nil), &alice, map[string]string{"fileName": "x.mp3"})
		rr := httptest.NewRecorder()
		NewPlayAudioHandler(svc)(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "audio-bytes", rr.Body.String())
		assert.Equal(t, "audio/mpeg", rr.Header().Get("Content-Type"))
		assert.Equal(t, "11", rr.Header().Get("Content-Length"))
	})

	t.Run("missing", func(t *testing.T) {
		svc := NewMockAudioOpener(gomock.NewController(t))
		svc.EXPECT().Open(gomock.Any(), alice, int64(0), "x.mp3").Return(nil, storage.ErrFileNotFound)

		req := authed(httptest.NewRequest(http.MethodGet, "/audio/play/x.mp3", nil), &alice, map[string]string{"fileName": "x.mp3"})
		rr := httptest.NewRecorder()
		NewPlayAudioHandler(svc)(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "File not found", decodeError(t, rr))
	})

	t.Run("other owner denied", func(t *testing.T) {
		svc := NewMockAudioOpener(gomock.NewController(t))
		svc.EXPECT().Open(gomock.Any(), bob, int64(1), "x.mp3").Return(nil, denied(access.ReasonAccessDenied))

		req := authed(httptest.NewRequest(http.MethodGet, "/audio/play/x.mp3?owner=1", nil), &bob, map[string]string{"fileName": "x.mp3"})
		rr := httptest.NewRecorder()
		NewPlayAudioHandler(svc)(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestDeleteAudioHandler(t *testing.T) {
	tests := []struct {
		name         string
		identity     models.Identity
		query        string
		owner        int64
		err          error
		expectedCode int
		expectedBody string
	}{
		{name: "own file", identity: alice, expectedCode: http.StatusNoContent},
		{name: "admin override", identity: admin, query: "?owner=1", owner: 1, expectedCode: http.StatusNoContent},
		{
			name: "another user's file", identity: bob, query: "?owner=1", owner: 1,
			err:          denied(access.ReasonOwnFilesOnly),
			expectedCode: http.StatusForbidden,
			expectedBody: `{"error":"Forbidden: you may only delete your own files"}`,
		},
		{
			name: "missing", identity: alice,
			err:          storage.ErrFileNotFound,
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"File not found"}`,
		},
		{
			name: "failure", identity: alice,
			err:          errors.New("disk error"),
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"Failed to delete file"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewMockAudioDeleter(gomock.NewController(t))
			svc.EXPECT().Delete(gomock.Any(), tt.identity, tt.owner, "x.mp3").Return(tt.err)

			req := authed(httptest.NewRequest(http.MethodDelete, "/audio/x.mp3"+tt.query, nil), &tt.identity, map[string]string{"fileName": "x.mp3"})
			rr := httptest.NewRecorder()
			NewDeleteAudioHandler(svc)(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedBody == "" {
				assert.Empty(t, rr.Body.String())
			} else {
				assert.JSONEq(t, tt.expectedBody, rr.Body.String())
			}
		})
	}
}
