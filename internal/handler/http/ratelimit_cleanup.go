package http

import (
	"context"
	"log/slog"
	"time"

	"notioner/internal/handler/http/middleware"
	"notioner/pkg/config"
)

// DefaultCleanupInterval is how often idle rate limit entries are dropped.
const DefaultCleanupInterval = 5 * time.Minute

// CleanupConfig holds configuration for rate limit cleanup.
type CleanupConfig struct {
	// Interval between cleanups.
	Interval time.Duration
	// IdleTimeout is how long a client may stay silent before its bucket is dropped.
	IdleTimeout time.Duration
}

// LoadCleanupConfigFromEnv reads RATELIMIT_CLEANUP_INTERVAL and
// RATELIMIT_IDLE_TIMEOUT. Invalid values fall back to defaults.
func LoadCleanupConfigFromEnv() CleanupConfig {
	return CleanupConfig{
		Interval:    config.GetEnvDuration("RATELIMIT_CLEANUP_INTERVAL", DefaultCleanupInterval),
		IdleTimeout: config.GetEnvDuration("RATELIMIT_IDLE_TIMEOUT", 10*time.Minute),
	}
}

// StartRateLimitCleanup drops idle clients from limiter until ctx is cancelled.
// It blocks; run it in a goroutine.
func StartRateLimitCleanup(ctx context.Context, limiter *middleware.RateLimiter, cfg CleanupConfig, limiterType string) {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultCleanupInterval
	}
	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	slog.Info("rate limit cleanup started",
		slog.String("limiter_type", limiterType),
		slog.Duration("interval", cfg.Interval))

	for {
		select {
		case <-ctx.Done():
			slog.Info("rate limit cleanup stopped", slog.String("limiter_type", limiterType))
			return
		case <-ticker.C:
			removed := limiter.CleanupExpired(cfg.IdleTimeout)
			slog.Debug("rate limit cleanup completed",
				slog.String("limiter_type", limiterType),
				slog.Int("removed", removed),
				slog.Int("active_clients", limiter.ActiveClients()))
		}
	}
}
