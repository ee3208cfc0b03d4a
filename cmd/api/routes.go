package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	hhttp "notioner/internal/handler/http"
	hauth "notioner/internal/handler/http/auth"
	"notioner/internal/handler/http/middleware"
	hmovie "notioner/internal/handler/http/movie"
	"notioner/internal/handler/http/requestid"
	"notioner/internal/handler/http/websocket"
	"notioner/internal/observability/tracing"
	"notioner/pkg/config"
	"notioner/pkg/security/csp"
)

// routeDeps is everything buildHandler wires together.
type routeDeps struct {
	Logger  *slog.Logger
	Version string

	Svc     hmovie.MovieService
	Status  hmovie.StatusTracker
	Hub     *websocket.Hub
	Origins []string

	Auth         *hauth.Authenticator
	WriteLimiter *middleware.RateLimiter // nil disables write rate limiting
	WriteTimeout time.Duration
	CSP          config.CSPConfig

	Checks    map[string]hhttp.Checker
	Reporters map[string]hhttp.Reporter
}

// buildHandler registers every route and wraps the mux in the middleware chain:
// request ID → recover → logging → tracing → input limits (1MB body) → CSP → metrics → auth → routes.
func buildHandler(d routeDeps) http.Handler {
	mux := http.NewServeMux()

	// ヘルスチェック・メトリクス・Swagger（認証不要）
	mux.Handle("GET /health", &hhttp.HealthHandler{Version: d.Version, Checks: d.Checks, Reporters: d.Reporters})
	mux.Handle("GET /ready", &hhttp.ReadyHandler{Checks: d.Checks})
	mux.Handle("GET /live", &hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	var ws http.Handler
	if d.Hub != nil {
		ws = websocket.NewHandler(d.Hub, d.Origins)
	}
	hmovie.Register(mux, hmovie.Deps{
		Svc:        d.Svc,
		Status:     d.Status,
		Logger:     d.Logger,
		WriteLimit: writeLimit(d.WriteLimiter, d.WriteTimeout),
		Websocket:  ws,
	})

	var routes http.Handler = mux
	if d.Auth != nil {
		routes = d.Auth.Middleware(routes)
	}

	return hhttp.Chain(routes,
		requestid.Middleware,
		hhttp.Recover(d.Logger),
		hhttp.Logging(d.Logger),
		tracing.Middleware,
		hhttp.InputValidation(hhttp.DefaultMaxBodyBytes),
		cspMiddleware(d.CSP),
		hhttp.MetricsMiddleware,
	)
}

// writeLimit applies the per-IP limiter and then the request timeout to write routes.
func writeLimit(limiter *middleware.RateLimiter, timeout time.Duration) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		h = hhttp.Timeout(timeout)(h)
		if limiter != nil {
			h = limiter.Middleware(h)
		}
		return h
	}
}

func cspMiddleware(cfg config.CSPConfig) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.NewCSPMiddleware(middleware.CSPMiddlewareConfig{
		Enabled:       true,
		DefaultPolicy: csp.AppPolicy(),
		PathPolicies: map[string]*csp.CSPBuilder{
			"/swagger/": csp.SwaggerUIPolicy(),
		},
		ReportOnly: cfg.ReportOnly,
	}).Middleware()
}

type breakerStater interface {
	BreakerState() gobreaker.State
}

// breakerReporter reports an upstream circuit breaker on /health without failing it.
func breakerReporter(b breakerStater) hhttp.Reporter {
	return func() hhttp.CheckStatus {
		return hhttp.CheckStatus{
			Status:  "ok",
			Details: map[string]any{"circuit_breaker": b.BreakerState().String()},
		}
	}
}
