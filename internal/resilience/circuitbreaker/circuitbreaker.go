// Package circuitbreaker wraps github.com/sony/gobreaker with ratio based
// tripping and per-upstream presets (OMDB, TMDB, Notion, webhooks).
package circuitbreaker

import (
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// Config tunes a breaker. The circuit trips once at least MinRequests calls
// were seen in the current Interval and the failure ratio reaches
// FailureThreshold; it stays open for Timeout and then lets MaxRequests
// probes through.
type Config struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32

	// IsSuccessful lets callers count expected errors (an upstream 404, say)
	// as successes. nil means only a nil error succeeds.
	IsSuccessful func(err error) bool

	// OnStateChange runs after the transition is logged.
	OnStateChange func(name string, from, to gobreaker.State)
}

// DefaultConfig returns a default configuration for circuit breakers.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// OMDBAPIConfig returns configuration for OMDB lookups.
func OMDBAPIConfig() Config {
	cfg := DefaultConfig("omdb-api")
	cfg.Timeout = 30 * time.Second
	return cfg
}

// TMDBAPIConfig returns configuration for TMDB lookups.
func TMDBAPIConfig() Config {
	cfg := DefaultConfig("tmdb-api")
	cfg.Timeout = 30 * time.Second
	return cfg
}

// NotionAPIConfig returns configuration for Notion API calls.
// Notion rate limiting shows up as 429s, so the threshold is more tolerant.
func NotionAPIConfig() Config {
	return Config{
		Name:             "notion-api",
		MaxRequests:      3,
		Interval:         60 * time.Second,
		Timeout:          45 * time.Second,
		FailureThreshold: 0.7,
		MinRequests:      8,
	}
}

// WebhookConfig returns configuration for notification webhooks.
func WebhookConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      1,
		Interval:         5 * time.Minute,
		Timeout:          5 * time.Minute,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// CircuitBreaker is a named gobreaker.CircuitBreaker.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	name    string
}

// New creates a new circuit breaker with the given configuration.
func New(cfg Config) *CircuitBreaker {
	settings := gobreaker.Settings{
		Name:         cfg.Name,
		MaxRequests:  cfg.MaxRequests,
		Interval:     cfg.Interval,
		Timeout:      cfg.Timeout,
		IsSuccessful: cfg.IsSuccessful,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
			if cfg.OnStateChange != nil {
				cfg.OnStateChange(name, from, to)
			}
		},
	}

	return &CircuitBreaker{
		breaker: gobreaker.NewCircuitBreaker(settings),
		name:    cfg.Name,
	}
}

// Execute runs fn unless the circuit is open, in which case it fails fast
// with gobreaker.ErrOpenState (or ErrTooManyRequests while half-open).
func (cb *CircuitBreaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	return cb.breaker.Execute(fn)
}

func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}

func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// IsOpen reports whether calls are currently rejected.
func (cb *CircuitBreaker) IsOpen() bool {
	return cb.breaker.State() == gobreaker.StateOpen
}
