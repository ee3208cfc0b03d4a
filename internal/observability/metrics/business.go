package metrics

import (
	"strconv"
	"time"
)

// RecordUpstreamRequest records one upstream call.
// status is the HTTP status code, or 0 when no response was received.
func RecordUpstreamRequest(upstream, operation string, status int, duration time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	UpstreamRequestsTotal.WithLabelValues(upstream, operation, label).Inc()
	UpstreamRequestDuration.WithLabelValues(upstream, operation).Observe(duration.Seconds())
}

// SetCircuitState records the breaker state of an upstream.
func SetCircuitState(upstream string, state int) {
	UpstreamCircuitState.WithLabelValues(upstream).Set(float64(state))
}

// RecordMovieWritten records the result of a movie write.
// source is the entry point ("form" or "record").
func RecordMovieWritten(source string, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	MoviesWrittenTotal.WithLabelValues(source, result).Inc()
}

// RecordCollectionResolved records a collection lookup outcome ("found", "created", "failed").
func RecordCollectionResolved(result string) {
	CollectionsResolvedTotal.WithLabelValues(result).Inc()
}

// RecordNewMoviesFetch records a fetch of newly created movie pages.
func RecordNewMoviesFetch(count int, duration time.Duration) {
	if count > 0 {
		NewMoviesFetchedTotal.Add(float64(count))
	}
	FetchDuration.Observe(duration.Seconds())
}

// SetWebsocketClients updates the connected websocket client gauge.
func SetWebsocketClients(n int) {
	WebsocketClients.Set(float64(n))
}
