package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker"

	hhttp "notioner/internal/handler/http"
	"notioner/internal/handler/http/respond"
	"notioner/internal/usecase/notify"
)

// ChannelHealthResponse represents the health status of all notification channels.
type ChannelHealthResponse struct {
	Healthy  bool                         `json:"healthy"`
	Channels []notify.ChannelHealthStatus `json:"channels"`
}

// metricsMux serves /metrics and /health/channels.
func metricsMux(notifyService notify.Service) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /health/channels", channelHealthHandler(notifyService))
	return mux
}

// startMetricsServer starts the Prometheus metrics server and shuts it down
// within 5 seconds once ctx is cancelled.
func startMetricsServer(ctx context.Context, logger *slog.Logger, port int, notifyService notify.Service) *http.Server {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           metricsMux(notifyService),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("metrics server starting", slog.Int("port", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", slog.Any("error", err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", slog.Any("error", err))
			return
		}
		logger.Info("metrics server stopped")
	}()

	return server
}

// channelHealthHandler answers 503 when an enabled channel has its breaker open.
func channelHealthHandler(notifyService notify.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if notifyService == nil {
			respond.Message(w, http.StatusServiceUnavailable, "notification service not initialized")
			return
		}

		channels := notifyService.GetChannelHealth()
		healthy := true
		for _, ch := range channels {
			if ch.Enabled && ch.CircuitBreakerOpen {
				healthy = false
			}
		}

		code := http.StatusOK
		if !healthy {
			code = http.StatusServiceUnavailable
		}
		respond.JSON(w, code, ChannelHealthResponse{Healthy: healthy, Channels: channels})
	}
}

type breakerStater interface {
	BreakerState() gobreaker.State
}

// breakerReporter reports an upstream circuit breaker on /health.
func breakerReporter(b breakerStater) hhttp.Reporter {
	return func() hhttp.CheckStatus {
		return hhttp.CheckStatus{
			Status:  "ok",
			Details: map[string]any{"circuit_breaker": b.BreakerState().String()},
		}
	}
}
