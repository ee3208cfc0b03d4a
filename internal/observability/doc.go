// Package observability provides the logging, metrics and tracing infrastructure
// shared by the API server and the worker.
//
// Subpackages:
//   - logging: Structured logging utilities with slog
//   - metrics: Prometheus metrics registry and recorders
//   - tracing: OpenTelemetry tracer setup and HTTP middleware
//
// Example usage:
//
//	import (
//	    "notioner/internal/observability/logging"
//	    "notioner/internal/observability/metrics"
//	)
//
//	func main() {
//	    logger := logging.NewLogger()
//	    logger.Info("application started")
//
//	    metrics.RecordMovieWritten("form", true)
//	}
package observability
