// Package retry provides retry logic with exponential backoff and jitter.
// It helps handle transient failures of upstream APIs (OMDB, TMDB, Notion, webhooks).
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"syscall"
	"time"
)

// Config describes an exponential backoff schedule. MaxAttempts counts the
// first call; JitterFraction (0..1) adds up to that share of the delay.
type Config struct {
	MaxAttempts    int
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	Multiplier     float64
	JitterFraction float64
}

// DefaultConfig returns a default retry configuration.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       10 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// MetadataAPIConfig returns configuration for OMDB and TMDB lookups.
// Lookups sit on the request path, so retries stay short.
func MetadataAPIConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialDelay:   300 * time.Millisecond,
		MaxDelay:       3 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// NotionAPIConfig returns configuration for Notion API calls.
// Notion answers 429 with Retry-After under its ~3 req/s limit; the hint wins over the backoff delay.
func NotionAPIConfig() Config {
	return Config{
		MaxAttempts:    4,
		InitialDelay:   400 * time.Millisecond,
		MaxDelay:       8 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.2,
	}
}

// WebhookConfig returns configuration for notification webhooks.
func WebhookConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialDelay:   1 * time.Second,
		MaxDelay:       30 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// WithBackoff calls fn until it succeeds, fails with a non-retryable error
// or MaxAttempts is reached. A Retry-After hint on the error (see
// RetryAfterHint) stretches the wait when it is longer than the backoff.
func WithBackoff(ctx context.Context, cfg Config, fn func() error) error {
	attempts := max(cfg.MaxAttempts, 1)
	delay := cfg.InitialDelay

	for attempt := 1; ; attempt++ {
		err := fn()
		switch {
		case err == nil:
			if attempt > 1 {
				slog.InfoContext(ctx, "operation succeeded after retry", slog.Int("attempt", attempt))
			}
			return nil
		case !IsRetryable(err):
			slog.DebugContext(ctx, "non-retryable error, aborting",
				slog.Int("attempt", attempt),
				slog.Any("error", err))
			return err
		case attempt >= attempts:
			return fmt.Errorf("max retry attempts (%d) exceeded: %w", attempts, err)
		}

		wait := waitFor(delay, err)
		slog.WarnContext(ctx, "operation failed, retrying",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", attempts),
			slog.Duration("delay", wait),
			slog.Any("error", err))

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry aborted: %w", ctx.Err())
		}
		delay = addJitter(nextDelay(cfg, delay), cfg.JitterFraction)
	}
}

// waitFor picks the longer of the backoff delay and the server's hint.
func waitFor(delay time.Duration, err error) time.Duration {
	if hint, ok := RetryAfterHint(err); ok && hint > delay {
		return hint
	}
	return delay
}

func nextDelay(cfg Config, delay time.Duration) time.Duration {
	return min(time.Duration(float64(delay)*cfg.Multiplier), cfg.MaxDelay)
}

// statusCoder is implemented by errors that carry an upstream HTTP status.
type statusCoder interface {
	HTTPStatus() int
}

// retryAfterer is implemented by errors that carry a server-provided wait hint.
type retryAfterer interface {
	RetryAfterDuration() time.Duration
}

// RetryAfterHint returns the server-provided wait hint carried by err, if any.
func RetryAfterHint(err error) (time.Duration, bool) {
	var ra retryAfterer
	if errors.As(err, &ra) {
		if d := ra.RetryAfterDuration(); d > 0 {
			return d, true
		}
	}
	return 0, false
}

// PermanentError stops WithBackoff from retrying the wrapped error.
type PermanentError struct {
	Err error
}

// Permanent wraps err so that IsRetryable reports false for it.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

func (e *PermanentError) Error() string {
	return e.Err.Error()
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// IsRetryable determines if an error is worth retrying.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var perm *PermanentError
	if errors.As(err, &perm) {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ETIMEDOUT) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return true
	}

	var sc statusCoder
	if errors.As(err, &sc) {
		return IsRetryableStatus(sc.HTTPStatus())
	}

	return false
}

// IsRetryableStatus reports whether an HTTP status code indicates a transient failure.
func IsRetryableStatus(code int) bool {
	switch {
	case code >= 500 && code < 600:
		return true
	case code == http.StatusTooManyRequests, code == http.StatusRequestTimeout:
		return true
	default:
		return false
	}
}

// addJitter adds random jitter to a duration to prevent thundering herd.
func addJitter(duration time.Duration, jitterFraction float64) time.Duration {
	if jitterFraction <= 0 {
		return duration
	}
	if jitterFraction > 1.0 {
		jitterFraction = 1.0
	}
	// #nosec G404 -- jitter does not need cryptographic randomness
	jitter := time.Duration(rand.Float64() * float64(duration) * jitterFraction)
	return duration + jitter
}
