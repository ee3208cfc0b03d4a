// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes the domain metrics of the service:
//   - Upstream API metrics (OMDB, TMDB, Notion, webhooks)
//   - Circuit breaker state per upstream
//   - Movie write, collection and new-movie fetch counters
//   - Websocket client gauge
//
// HTTP server metrics live with the HTTP middleware. All metrics are
// registered with the Prometheus default registry and exposed via /metrics.
//
// Example usage:
//
//	start := time.Now()
//	movies, err := svc.FetchNewMovies(ctx, now)
//	if err == nil {
//	    metrics.RecordNewMoviesFetch(len(movies), time.Since(start))
//	}
package metrics
