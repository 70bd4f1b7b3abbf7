package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/sbilibin2017/audio-vault/internal/logger"
)

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	Check(ctx context.Context) error
}

// HealthCheckFunc adapts a function to HealthChecker.
type HealthCheckFunc func(ctx context.Context) error

// Check calls f(ctx).
func (f HealthCheckFunc) Check(ctx context.Context) error {
	return f(ctx)
}

// HealthResponse reports service status.
// swagger:model HealthResponse
type HealthResponse struct {
	// default: ok
	Status string `json:"status"`
	// Failing dependencies and their errors
	Checks map[string]string `json:"checks,omitempty"`
}

const healthTimeout = 2 * time.Second

// NewHealthHandler returns an HTTP handler running every check.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} handlers.HealthResponse "ok"
// @Failure 503 {object} handlers.HealthResponse "unavailable"
// @Router /health [get]
func NewHealthHandler(checks map[string]HealthChecker) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		failed := map[string]string{}
		for _, name := range names {
			if err := checks[name].Check(ctx); err != nil {
				logger.Log.Warnw("health check failed", "dependency", name, "err", err)
				failed[name] = err.Error()
			}
		}

		if len(failed) > 0 {
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Checks: failed})
			return
		}
		writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
	}
}
