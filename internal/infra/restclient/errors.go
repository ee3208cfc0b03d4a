package restclient

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// maxErrorBody caps how much of an upstream error body is kept on StatusError.
const maxErrorBody = 2048

// StatusError is a non-2xx upstream response.
type StatusError struct {
	Upstream   string
	Operation  string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(string(e.Body))
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	if body == "" {
		return fmt.Sprintf("%s %s: HTTP %d", e.Upstream, e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Upstream, e.Operation, e.StatusCode, body)
}

// HTTPStatus returns the upstream status code.
func (e *StatusError) HTTPStatus() int {
	return e.StatusCode
}

// IsClientError reports whether the upstream rejected the request itself (4xx other than 408/429).
func (e *StatusError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500 &&
		e.StatusCode != http.StatusTooManyRequests &&
		e.StatusCode != http.StatusRequestTimeout
}

// RateLimitError is a 429 response. RetryAfter is the server-provided wait, if any.
type RateLimitError struct {
	*StatusError
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s %s: rate limit exceeded (retry after %v)", e.Upstream, e.Operation, e.RetryAfter)
}

// RetryAfterDuration exposes the wait hint to the retry loop.
func (e *RateLimitError) RetryAfterDuration() time.Duration {
	return e.RetryAfter
}

// Unwrap returns the underlying StatusError.
func (e *RateLimitError) Unwrap() error {
	return e.StatusError
}

// parseRetryAfter reads a Retry-After header in delta-seconds or HTTP-date form.
func parseRetryAfter(h string, now time.Time) time.Duration {
	h = strings.TrimSpace(h)
	if h == "" {
		return 0
	}
	if secs, err := strconv.ParseFloat(h, 64); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs * float64(time.Second))
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := t.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
