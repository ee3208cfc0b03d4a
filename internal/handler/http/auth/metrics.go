package auth

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Auth outcomes used as the result label.
const (
	resultSuccess       = "success"
	resultTrusted       = "trusted"
	resultMissing       = "missing"
	resultInvalidFormat = "invalid_format"
	resultInvalid       = "invalid"
)

var (
	authRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_requests_total",
			Help: "Authentication outcomes for protected endpoints",
		},
		[]string{"result"},
	)

	authzCheckDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "authz_check_duration_seconds",
			Help:    "Authorization check duration",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01},
		},
	)
)

func recordAuth(result string, start time.Time) {
	authRequestsTotal.WithLabelValues(result).Inc()
	authzCheckDuration.Observe(time.Since(start).Seconds())
}
