// Package tracing provides OpenTelemetry tracing integration.
//
// The HTTP middleware starts a server span per request and returns the trace
// ID in X-Trace-Id. StartSpan and EndSpan wrap movie sync operations and
// upstream calls in internal spans.
//
// Example usage:
//
//	func (s *Service) GatherMovieData(ctx context.Context, title, year string) (err error) {
//	    ctx, span := tracing.StartSpan(ctx, "movie.gather")
//	    defer func() { tracing.EndSpan(span, err) }()
//	    // ...
//	}
package tracing
