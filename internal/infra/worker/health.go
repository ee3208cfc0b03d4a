package worker

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	hhttp "notioner/internal/handler/http"
)

var errNotReady = errors.New("not ready")

// HealthConfig configures the worker health server.
type HealthConfig struct {
	Addr    string
	Version string
	// Checks run on /health, e.g. a Notion reachability probe.
	Checks map[string]hhttp.Checker
	// Reporters add informational entries such as the last poll.
	Reporters map[string]hhttp.Reporter
}

// HealthServer serves /health, /ready and /live for the worker.
// /ready answers 503 until SetReady(true) is called.
type HealthServer struct {
	cfg     HealthConfig
	logger  *slog.Logger
	isReady atomic.Bool
	server  *http.Server
}

// NewHealthServer creates a health server; call Start to serve.
func NewHealthServer(cfg HealthConfig, logger *slog.Logger) *HealthServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthServer{cfg: cfg, logger: logger}
}

// Handler returns the routes of the health server.
func (h *HealthServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /health", &hhttp.HealthHandler{
		Version:   h.cfg.Version,
		Checks:    h.cfg.Checks,
		Reporters: h.cfg.Reporters,
	})
	mux.Handle("GET /ready", &hhttp.ReadyHandler{
		Checks: map[string]hhttp.Checker{"scheduler": h.readyCheck},
	})
	mux.Handle("GET /live", &hhttp.LiveHandler{})
	return mux
}

// Start serves until ctx is cancelled, then shuts down within 5 seconds.
// It returns http.ErrServerClosed after a graceful shutdown.
func (h *HealthServer) Start(ctx context.Context) error {
	h.server = &http.Server{
		Addr:              h.cfg.Addr,
		Handler:           h.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		h.logger.Info("health server starting", slog.String("addr", h.cfg.Addr))
		errChan <- h.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			h.logger.Error("health server shutdown failed", slog.Any("error", err))
			return err
		}
		h.logger.Info("health server stopped")
		return http.ErrServerClosed
	case err := <-errChan:
		if !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error("health server failed", slog.Any("error", err))
		}
		return err
	}
}

// SetReady flips the /ready state.
func (h *HealthServer) SetReady(ready bool) {
	h.isReady.Store(ready)
	h.logger.Info("health server readiness changed", slog.Bool("ready", ready))
}

func (h *HealthServer) readyCheck(context.Context) error {
	if !h.isReady.Load() {
		return errNotReady
	}
	return nil
}
