// Package http holds the middleware, health and metrics handlers shared by the
// API server and the worker's health server.
package http

import (
	"context"
	"net/http"
	"sort"
	"time"

	"notioner/internal/handler/http/respond"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"

	defaultHealthTimeout = 5 * time.Second
	defaultReadyTimeout  = 2 * time.Second
)

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string                 `json:"status"`    // "healthy" or "unhealthy"
	Timestamp string                 `json:"timestamp"` // ISO 8601 format
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus represents the status of a single health check.
type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// Checker probes a dependency. A non-nil error marks it unhealthy.
type Checker func(ctx context.Context) error

// Reporter returns informational status that never fails the health check,
// e.g. circuit breaker state or rate limiter size.
type Reporter func() CheckStatus

// HealthHandler reports the status of every registered check.
type HealthHandler struct {
	Version   string
	Checks    map[string]Checker
	Reporters map[string]Reporter
	Timeout   time.Duration
}

// ServeHTTP godoc
// @Summary      Health check
// @Description  Checks upstream dependencies (Notion) and reports breaker and limiter state
// @Tags         health
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Failure      503  {object}  HealthResponse
// @Router       /health [get]
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = defaultHealthTimeout
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	checks := make(map[string]CheckStatus, len(h.Checks)+len(h.Reporters))
	allHealthy := true
	for name, check := range h.Checks {
		if err := check(ctx); err != nil {
			checks[name] = CheckStatus{Status: statusUnhealthy, Message: respond.SanitizeError(err)}
			allHealthy = false
			continue
		}
		checks[name] = CheckStatus{Status: statusHealthy}
	}
	for name, report := range h.Reporters {
		checks[name] = report()
	}

	resp := HealthResponse{
		Status:    statusHealthy,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	}
	code := http.StatusOK
	if !allHealthy {
		resp.Status = statusUnhealthy
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, code, resp)
}

// ReadyHandler handles readiness probes. It is ready when every check passes.
type ReadyHandler struct {
	Checks map[string]Checker
}

// ServeHTTP godoc
// @Summary      Readiness probe
// @Tags         health
// @Produce      plain
// @Success      200  {string}  string  "ready"
// @Failure      503  {string}  string
// @Router       /ready [get]
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), defaultReadyTimeout)
	defer cancel()

	names := make([]string, 0, len(h.Checks))
	for name := range h.Checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := h.Checks[name](ctx); err != nil {
			http.Error(w, name+" not ready", http.StatusServiceUnavailable)
			return
		}
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// LiveHandler handles liveness probes and always answers 200.
type LiveHandler struct{}

// ServeHTTP godoc
// @Summary      Liveness probe
// @Tags         health
// @Produce      plain
// @Success      200  {string}  string  "alive"
// @Router       /live [get]
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("alive"))
}
