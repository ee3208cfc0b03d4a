package worker

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"notioner/internal/pkg/config"
)

// Job outcomes recorded in worker_poll_runs_total.
const (
	RunSuccess = "success"
	RunFailure = "failure"
)

// WorkerMetrics are the poller metrics plus the worker_config_* metrics.
type WorkerMetrics struct {
	*config.ConfigMetrics

	PollRunsTotal        *prometheus.CounterVec
	PollDurationSeconds  prometheus.Histogram
	NewMoviesTotal       prometheus.Counter
	LastSuccessTimestamp prometheus.Gauge
}

// NewWorkerMetrics registers the metrics with reg (nil: default registerer).
func NewWorkerMetrics(reg prometheus.Registerer) *WorkerMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker", reg),

		PollRunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_poll_runs_total",
			Help: "Total number of new-movie polls by status (success/failure)",
		}, []string{"status"}),

		PollDurationSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_poll_duration_seconds",
			Help:    "Duration of a new-movie poll in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),

		NewMoviesTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "worker_new_movies_total",
			Help: "Total number of new movies found by the poller",
		}),

		LastSuccessTimestamp: f.NewGauge(prometheus.GaugeOpts{
			Name: "worker_poll_last_success_timestamp",
			Help: "Unix timestamp of the last successful poll",
		}),
	}
}

// RecordRun records one poll. found is ignored for failed runs.
func (m *WorkerMetrics) RecordRun(status string, duration time.Duration, found int) {
	m.PollRunsTotal.WithLabelValues(status).Inc()
	m.PollDurationSeconds.Observe(duration.Seconds())
	if status != RunSuccess {
		return
	}
	m.NewMoviesTotal.Add(float64(found))
	m.LastSuccessTimestamp.SetToCurrentTime()
}
