// Package restclient provides the shared HTTP plumbing for upstream JSON APIs
// (OMDB, TMDB, Notion): token-bucket rate limiting, a circuit breaker,
// retries with exponential backoff, request IDs and Prometheus metrics.
package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"notioner/internal/handler/http/requestid"
	"notioner/internal/observability/metrics"
	"notioner/internal/resilience/circuitbreaker"
	"notioner/internal/resilience/retry"
)

// maxResponseBody caps upstream response bodies (10MB).
const maxResponseBody = 10 << 20

// ErrCircuitOpen is returned while the upstream circuit breaker is open.
var ErrCircuitOpen = errors.New("upstream unavailable: circuit breaker open")

// Config configures a Client for one upstream.
type Config struct {
	// Name labels logs and metrics (e.g. "notion")
	Name string

	// BaseURL is prefixed to every request path
	BaseURL string

	// Timeout bounds a single HTTP attempt
	Timeout time.Duration

	// RequestsPerSecond and Burst configure the token bucket; zero disables limiting
	RequestsPerSecond float64
	Burst             int

	// Header is sent with every request (auth, API version, ...)
	Header http.Header

	Retry   retry.Config
	Breaker circuitbreaker.Config
}

// Client performs JSON requests against a single upstream.
type Client struct {
	name       string
	baseURL    string
	header     http.Header
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *circuitbreaker.CircuitBreaker
	retry      retry.Config
	now        func() time.Time
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a Client. Client errors (4xx except 408/429) do not trip the breaker.
func New(cfg Config, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	breakerCfg := cfg.Breaker
	if breakerCfg.Name == "" {
		breakerCfg = circuitbreaker.DefaultConfig(cfg.Name)
	}
	if breakerCfg.IsSuccessful == nil {
		breakerCfg.IsSuccessful = isBreakerSuccess
	}
	userHook := breakerCfg.OnStateChange
	breakerCfg.OnStateChange = func(name string, from, to gobreaker.State) {
		metrics.SetCircuitState(cfg.Name, int(to))
		if userHook != nil {
			userHook(name, from, to)
		}
	}

	c := &Client{
		name:       cfg.Name,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		header:     cfg.Header.Clone(),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    circuitbreaker.New(breakerCfg),
		retry:      cfg.Retry,
		now:        time.Now,
	}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the upstream name.
func (c *Client) Name() string {
	return c.name
}

// BreakerState returns the current circuit breaker state.
func (c *Client) BreakerState() gobreaker.State {
	return c.breaker.State()
}

// Request describes one upstream call.
type Request struct {
	// Operation labels metrics and errors (e.g. "create_page")
	Operation string
	Method    string
	// Path is appended to the base URL; it may be empty
	Path   string
	Query  url.Values
	Body   any
	Header http.Header
	// Idempotent marks a request that may be repeated even if the upstream
	// already applied it. GET, HEAD, PUT, DELETE and OPTIONS always are.
	Idempotent bool
}

func (r Request) idempotent() bool {
	if r.Idempotent {
		return true
	}
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete, http.MethodOptions:
		return true
	default:
		return false
	}
}

// Do sends req and decodes a 2xx JSON response into out (when non-nil).
// Transient failures are retried; a Retry-After hint on 429 is honored.
// Non-idempotent requests are only retried when the upstream cannot have
// applied them (429 or a refused connection).
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	var payload []byte
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("%s %s: marshal request: %w", c.name, req.Operation, err)
		}
		payload = b
	}

	return retry.WithBackoff(ctx, c.retry, func() error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("%s rate limiter: %w", c.name, err)
			}
		}

		_, err := c.breaker.Execute(func() (interface{}, error) {
			return nil, c.send(ctx, req, payload, out)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			slog.WarnContext(ctx, "upstream circuit breaker open, request rejected",
				slog.String("upstream", c.name),
				slog.String("operation", req.Operation),
				slog.String("state", c.breaker.State().String()))
			return fmt.Errorf("%s: %w", c.name, ErrCircuitOpen)
		}
		if err != nil && !req.idempotent() && !notApplied(err) {
			// 5xx やタイムアウトでは作成済みかもしれないので再送しない
			return retry.Permanent(err)
		}
		return err
	})
}

// notApplied reports whether err shows the upstream never processed the request.
func notApplied(err error) bool {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

// send performs a single HTTP attempt.
func (c *Client) send(ctx context.Context, req Request, payload []byte, out any) error {
	endpoint := c.baseURL + req.Path
	if len(req.Query) > 0 {
		endpoint += "?" + req.Query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, endpoint, body)
	if err != nil {
		return fmt.Errorf("%s %s: create request: %w", c.name, req.Operation, err)
	}

	for k, vs := range c.header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	for k, vs := range req.Header {
		httpReq.Header.Del(k)
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	// 受信リクエストの ID を引き継ぐ
	reqID := requestid.FromContext(ctx)
	if reqID == "" {
		reqID = uuid.New().String()
	}
	httpReq.Header.Set(requestid.RequestIDHeader, reqID)

	start := c.now()
	resp, err := c.httpClient.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		// query strings and webhook paths carry credentials
		var ue *url.Error
		if errors.As(err, &ue) {
			ue.URL = c.name + req.Path
		}
		metrics.RecordUpstreamRequest(c.name, req.Operation, 0, duration)
		slog.WarnContext(ctx, "upstream request failed",
			slog.String("request_id", reqID),
			slog.String("upstream", c.name),
			slog.String("operation", req.Operation),
			slog.Duration("duration", duration),
			slog.Any("error", err))
		return fmt.Errorf("%s %s: %w", c.name, req.Operation, err)
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.RecordUpstreamRequest(c.name, req.Operation, resp.StatusCode, duration)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("%s %s: read response: %w", c.name, req.Operation, err)
	}

	slog.DebugContext(ctx, "upstream request completed",
		slog.String("request_id", reqID),
		slog.String("upstream", c.name),
		slog.String("operation", req.Operation),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", duration))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(data) > maxErrorBody {
			data = data[:maxErrorBody]
		}
		statusErr := &StatusError{
			Upstream:   c.name,
			Operation:  req.Operation,
			StatusCode: resp.StatusCode,
			Body:       data,
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			return &RateLimitError{
				StatusError: statusErr,
				RetryAfter:  parseRetryAfter(resp.Header.Get("Retry-After"), c.now()),
			}
		}
		return statusErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", c.name, req.Operation, err)
	}
	return nil
}

// isBreakerSuccess keeps caller mistakes (404, 400, ...) from opening the circuit.
func isBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.IsClientError()
	}
	return false
}
