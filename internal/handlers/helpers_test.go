package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/sbilibin2017/audio-vault/internal/access"
	"github.com/sbilibin2017/audio-vault/internal/middlewares"
	"github.com/sbilibin2017/audio-vault/internal/models"
)

var (
	alice = models.Identity{ID: 1, Username: "alice", Role: models.RoleUser}
	bob   = models.Identity{ID: 2, Username: "bob", Role: models.RoleUser}
	admin = models.Identity{ID: 99, Username: "root", Role: models.RoleAdmin}
)

// authed attaches identity and chi URL params to req.
func authed(req *http.Request, identity *models.Identity, params map[string]string) *http.Request {
	ctx := req.Context()
	if identity != nil {
		ctx = middlewares.WithIdentity(ctx, *identity)
	}
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body.Error
}

func denied(reason string) error {
	return &access.DeniedError{Reason: reason}
}
