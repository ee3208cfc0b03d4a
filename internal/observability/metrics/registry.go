// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Upstream metrics track calls to OMDB, TMDB, Notion and webhooks
var (
	// UpstreamRequestsTotal counts upstream calls by upstream, operation and status
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Total number of upstream API requests",
		},
		[]string{"upstream", "operation", "status"},
	)

	// UpstreamRequestDuration measures upstream call latency in seconds
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Upstream API request duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"upstream", "operation"},
	)

	// UpstreamCircuitState exposes the breaker state per upstream (0=closed, 1=half-open, 2=open)
	UpstreamCircuitState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "upstream_circuit_state",
			Help: "Circuit breaker state per upstream (0=closed, 1=half-open, 2=open)",
		},
		[]string{"upstream"},
	)
)

// Business metrics track movie sync operations
var (
	// MoviesWrittenTotal counts Notion movie writes by entry point and result
	MoviesWrittenTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movies_written_total",
			Help: "Total number of movie pages written to Notion",
		},
		[]string{"source", "result"},
	)

	// CollectionsResolvedTotal counts collection relation lookups by outcome
	CollectionsResolvedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collections_resolved_total",
			Help: "Total number of collection pages resolved",
		},
		[]string{"result"}, // result: found, created, failed
	)

	// NewMoviesFetchedTotal counts movie pages returned by new-movie fetches
	NewMoviesFetchedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "new_movies_fetched_total",
			Help: "Total number of newly created movie pages found by fetches",
		},
	)

	// FetchDuration measures time to fetch new movies
	FetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "new_movies_fetch_duration_seconds",
			Help:    "Time taken to fetch new movies from Notion",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)

	// WebsocketClients tracks connected status stream clients
	WebsocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_clients",
			Help: "Number of connected websocket clients",
		},
	)
)
