// Package resilience provides reliability and fault tolerance patterns for the application.
// It includes implementations of circuit breakers and retry logic used by the
// upstream API clients (OMDB, TMDB, Notion) and the webhook notifier.
//
// The package supports:
//   - Circuit breakers per upstream, where client errors (4xx) do not trip the breaker
//   - Retry logic with exponential backoff, jitter and Retry-After hints
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.NotionAPIConfig())
//	result, err := cb.Execute(func() (interface{}, error) {
//	    return callNotion()
//	})
//
//	err := retry.WithBackoff(ctx, retry.NotionAPIConfig(), func() error {
//	    return performOperation()
//	})
package resilience
