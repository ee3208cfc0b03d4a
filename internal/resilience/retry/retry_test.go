package retry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"syscall"
	"testing"
	"time"
)

func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts:    attempts,
		InitialDelay:   5 * time.Millisecond,
		MaxDelay:       20 * time.Millisecond,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// hintedError carries a Retry-After style wait hint.
type hintedError struct {
	status int
	after  time.Duration
}

func (e *hintedError) Error() string                     { return fmt.Sprintf("status %d", e.status) }
func (e *hintedError) HTTPStatus() int                   { return e.status }
func (e *hintedError) RetryAfterDuration() time.Duration { return e.after }

func TestWithBackoff_Success(t *testing.T) {
	attempts := 0
	err := WithBackoff(context.Background(), fastConfig(3), func() error {
		attempts++
		return nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestWithBackoff_SuccessAfterRetry(t *testing.T) {
	attempts := 0
	err := WithBackoff(context.Background(), fastConfig(3), func() error {
		attempts++
		if attempts < 3 {
			return httpStatus(502)
		}
		return nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestWithBackoff_MaxAttemptsExceeded(t *testing.T) {
	attempts := 0
	testErr := httpStatus(500)
	err := WithBackoff(context.Background(), fastConfig(3), func() error {
		attempts++
		return testErr
	})

	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
	if !errors.Is(err, testErr) {
		t.Errorf("expected wrapped error to contain original error")
	}
}

func TestWithBackoff_NonRetryableError(t *testing.T) {
	attempts := 0
	testErr := httpStatus(400)
	err := WithBackoff(context.Background(), fastConfig(3), func() error {
		attempts++
		return testErr
	})

	if attempts != 1 {
		t.Errorf("expected 1 attempt (non-retryable), got %d", attempts)
	}
	if err != testErr {
		t.Errorf("expected same error, got %v", err)
	}
}

func TestWithBackoff_PermanentErrorStops(t *testing.T) {
	attempts := 0
	cause := httpStatus(503)
	err := WithBackoff(context.Background(), fastConfig(3), func() error {
		attempts++
		return Permanent(cause)
	})

	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected wrapped cause, got %v", err)
	}
	if Permanent(nil) != nil {
		t.Error("Permanent(nil) should be nil")
	}
}

func TestWithBackoff_ZeroAttemptsRunsOnce(t *testing.T) {
	attempts := 0
	_ = WithBackoff(context.Background(), Config{}, func() error {
		attempts++
		return httpStatus(503)
	})

	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestWithBackoff_HonorsRetryAfterHint(t *testing.T) {
	cfg := fastConfig(2)
	hint := 60 * time.Millisecond

	attempts := 0
	start := time.Now()
	err := WithBackoff(context.Background(), cfg, func() error {
		attempts++
		if attempts == 1 {
			return &hintedError{status: 429, after: hint}
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < hint {
		t.Errorf("expected to wait at least %v, waited %v", hint, elapsed)
	}
}

func TestWithBackoff_ContextCanceled(t *testing.T) {
	cfg := Config{
		MaxAttempts:    5,
		InitialDelay:   50 * time.Millisecond,
		MaxDelay:       200 * time.Millisecond,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	err := WithBackoff(ctx, cfg, func() error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return httpStatus(500)
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled error, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{name: "nil error", err: nil, retryable: false},
		{name: "context canceled", err: context.Canceled, retryable: false},
		{name: "context deadline exceeded", err: context.DeadlineExceeded, retryable: false},
		{name: "HTTP 500", err: httpStatus(500), retryable: true},
		{name: "HTTP 503", err: httpStatus(503), retryable: true},
		{name: "HTTP 429", err: httpStatus(429), retryable: true},
		{name: "HTTP 408", err: httpStatus(408), retryable: true},
		{name: "HTTP 400", err: httpStatus(400), retryable: false},
		{name: "HTTP 401", err: httpStatus(401), retryable: false},
		{name: "HTTP 404", err: httpStatus(404), retryable: false},
		{name: "wrapped 502", err: fmt.Errorf("notion: %w", httpStatus(502)), retryable: true},
		{name: "custom status coder", err: &hintedError{status: 429}, retryable: true},
		{name: "ECONNREFUSED", err: syscall.ECONNREFUSED, retryable: true},
		{name: "ECONNRESET", err: syscall.ECONNRESET, retryable: true},
		{name: "ETIMEDOUT", err: syscall.ETIMEDOUT, retryable: true},
		{name: "ENETUNREACH", err: syscall.ENETUNREACH, retryable: true},
		{name: "generic error", err: errors.New("some error"), retryable: false},
		{name: "permanent 502", err: Permanent(httpStatus(502)), retryable: false},
		{name: "wrapped permanent", err: fmt.Errorf("notion: %w", Permanent(syscall.ECONNRESET)), retryable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.retryable {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.retryable)
			}
		})
	}
}

func TestRetryAfterHint(t *testing.T) {
	d, ok := RetryAfterHint(fmt.Errorf("wrapped: %w", &hintedError{status: 429, after: 2 * time.Second}))
	if !ok || d != 2*time.Second {
		t.Errorf("expected 2s hint, got %v (ok=%v)", d, ok)
	}

	if _, ok := RetryAfterHint(&hintedError{status: 429}); ok {
		t.Error("expected zero hint to be ignored")
	}
	if _, ok := RetryAfterHint(errors.New("plain")); ok {
		t.Error("expected no hint for plain error")
	}
}

func TestPresetConfigs(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"default", DefaultConfig()},
		{"metadata", MetadataAPIConfig()},
		{"notion", NotionAPIConfig()},
		{"webhook", WebhookConfig()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.cfg.MaxAttempts < 1 {
				t.Errorf("expected MaxAttempts >= 1, got %d", tt.cfg.MaxAttempts)
			}
			if tt.cfg.InitialDelay > tt.cfg.MaxDelay {
				t.Errorf("InitialDelay %v exceeds MaxDelay %v", tt.cfg.InitialDelay, tt.cfg.MaxDelay)
			}
			if tt.cfg.Multiplier < 1 {
				t.Errorf("expected Multiplier >= 1, got %f", tt.cfg.Multiplier)
			}
		})
	}

	if NotionAPIConfig().MaxAttempts != 4 {
		t.Errorf("expected Notion MaxAttempts=4, got %d", NotionAPIConfig().MaxAttempts)
	}
}

func TestAddJitter(t *testing.T) {
	duration := 100 * time.Millisecond
	results := make(map[time.Duration]bool)
	for i := 0; i < 10; i++ {
		result := addJitter(duration, 0.2)
		if result < duration || result > time.Duration(float64(duration)*1.2) {
			t.Errorf("jitter out of range: %v", result)
		}
		results[result] = true
	}
	if len(results) < 2 {
		t.Error("expected jitter to produce varied results")
	}
}

func TestAddJitter_ZeroFraction(t *testing.T) {
	if got := addJitter(100*time.Millisecond, 0.0); got != 100*time.Millisecond {
		t.Errorf("expected no jitter, got %v", got)
	}
}

// httpStatus is an upstream error carrying only a status code.
type httpStatus int

func (h httpStatus) Error() string   { return fmt.Sprintf("HTTP %d", int(h)) }
func (h httpStatus) HTTPStatus() int { return int(h) }

func TestNextDelay(t *testing.T) {
	cfg := Config{InitialDelay: time.Second, MaxDelay: 3 * time.Second, Multiplier: 2}

	if got := nextDelay(cfg, time.Second); got != 2*time.Second {
		t.Errorf("expected 2s, got %v", got)
	}
	if got := nextDelay(cfg, 2*time.Second); got != 3*time.Second {
		t.Errorf("expected cap at 3s, got %v", got)
	}
}

func TestWaitFor_RetryAfterHintWins(t *testing.T) {
	if got := waitFor(100*time.Millisecond, &hintedError{status: http.StatusTooManyRequests, after: 2 * time.Second}); got != 2*time.Second {
		t.Errorf("expected Retry-After 2s, got %v", got)
	}
	if got := waitFor(3*time.Second, &hintedError{status: http.StatusTooManyRequests, after: time.Second}); got != 3*time.Second {
		t.Errorf("expected backoff 3s, got %v", got)
	}
	if got := waitFor(time.Second, httpStatus(503)); got != time.Second {
		t.Errorf("expected backoff 1s, got %v", got)
	}
}
