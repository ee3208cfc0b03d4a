package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	appconfig "notioner/internal/config"
	hhttp "notioner/internal/handler/http"
	hauth "notioner/internal/handler/http/auth"
	"notioner/internal/handler/http/middleware"
	"notioner/internal/handler/http/websocket"
	"notioner/internal/infra/notion"
	"notioner/internal/infra/omdb"
	"notioner/internal/infra/statusfile"
	"notioner/internal/infra/tmdb"
	"notioner/internal/observability/logging"
	"notioner/internal/usecase/movie"
	"notioner/internal/usecase/status"
	"notioner/pkg/config"

	_ "notioner/docs" // swagger docs
)

// @title           Notioner API
// @version         1.0
// @description     OMDB / TMDB の映画メタデータを Notion の映画データベースへ書き込む API
// @description     新着映画の取得、取得ステータスの配信 (WebSocket) も提供します。

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT トークンによる認証。ヘッダーに "Bearer {token}" 形式で指定してください。cookie / ?token= も利用できます。

func main() {
	logger := initLogger()
	cfg := loadConfig(logger)

	// Create a context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	components := setupServer(ctx, logger, cfg)
	runServer(ctx, cancel, logger, cfg, components)
}

// initLogger initializes and returns a structured logger based on environment configuration.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// loadConfig loads the API configuration and refuses to start on missing or weak secrets.
func loadConfig(logger *slog.Logger) *appconfig.APIConfig {
	cfg, err := appconfig.LoadAPIConfig()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if err := hauth.ValidateSecret(cfg.JWTSecret); err != nil {
		logger.Error("JWT secret validation failed", slog.Any("error", err))
		os.Exit(1)
	}
	for _, w := range cfg.Warnings {
		logger.Warn("Configuration fallback applied", slog.String("warning", w))
	}
	return cfg
}

// ServerComponents holds components needed for server operation and cleanup.
type ServerComponents struct {
	Handler      http.Handler
	Hub          *websocket.Hub
	WriteLimiter *middleware.RateLimiter
}

// setupServer builds the upstream clients, the movie service and the HTTP handler.
func setupServer(ctx context.Context, logger *slog.Logger, cfg *appconfig.APIConfig) *ServerComponents {
	notionClient := notion.NewClient(notion.Config{Token: cfg.Notion.Token})
	omdbClient := omdb.NewClient(omdb.Config{APIKey: cfg.OMDBAPIKey, BaseURL: cfg.OMDBBaseURL})
	tmdbClient := tmdb.NewClient(tmdb.Config{AccessToken: cfg.TMDBAccessToken, BaseURL: cfg.TMDBBaseURL})

	var schema *movie.Schema
	if cfg.SchemaPath != "" {
		s, err := movie.LoadSchema(cfg.SchemaPath)
		if err != nil {
			logger.Error("failed to load movie schema", slog.String("path", cfg.SchemaPath), slog.Any("error", err))
			os.Exit(1)
		}
		schema = s
		logger.Info("movie schema loaded", slog.String("path", cfg.SchemaPath))
	}

	svc, err := movie.NewService(notionClient, omdbClient, tmdbClient, schema, cfg.Notion.MovieConfig())
	if err != nil {
		logger.Error("failed to create movie service", slog.Any("error", err))
		os.Exit(1)
	}

	hub := websocket.NewHub(logger)
	tracker := status.NewTracker(
		statusfile.New(cfg.Status.File),
		cfg.Status.Interval,
		status.WithBroadcaster(hub),
		status.WithLogger(logger),
	)

	// Load trusted proxy configuration for IP extraction
	proxyConfig, err := middleware.LoadTrustedProxyConfig()
	if err != nil {
		logger.Error("failed to load trusted proxy configuration", slog.Any("error", err))
		os.Exit(1)
	}
	ipExtractor := middleware.NewIPExtractor(proxyConfig)
	if proxyConfig.Enabled {
		logger.Info("trusted proxy mode enabled", slog.Int("trusted_proxies_count", len(proxyConfig.AllowedCIDRs)))
	}

	authenticator := hauth.New(hauth.Config{
		Secret:       []byte(cfg.JWTSecret),
		AllowedHosts: cfg.AllowedHosts,
		AllowedIPs:   cfg.AllowedIPs,
		IPExtractor:  ipExtractor,
		Logger:       logger,
	})
	if len(cfg.AllowedIPs) == 0 {
		logger.Info("trusted host bypass disabled (ALLOWED_IPS empty)")
	}

	writeCfg := config.LoadWriteLimitConfig()
	var writeLimiter *middleware.RateLimiter
	if writeCfg.Enabled {
		// レート制限: Notion 書き込みは IP ごとに制限
		writeLimiter = middleware.NewRateLimiter(writeCfg.Limit, writeCfg.Window, ipExtractor)
		logger.Info("write rate limiting enabled",
			slog.Int("limit", writeCfg.Limit),
			slog.Duration("window", writeCfg.Window))
	} else {
		logger.Warn("write rate limiting is DISABLED - not recommended for production")
	}

	cspCfg := config.LoadCSPConfig()
	if !cspCfg.Enabled {
		logger.Warn("CSP is disabled")
	}

	handler := buildHandler(routeDeps{
		Logger:       logger,
		Version:      cfg.Version,
		Svc:          svc,
		Status:       tracker,
		Hub:          hub,
		Origins:      cfg.AllowedOrigins,
		Auth:         authenticator,
		WriteLimiter: writeLimiter,
		WriteTimeout: writeCfg.Timeout,
		CSP:          cspCfg,
		Checks: map[string]hhttp.Checker{
			"notion": func(ctx context.Context) error {
				_, err := notionClient.Me(ctx)
				return err
			},
		},
		Reporters: map[string]hhttp.Reporter{
			"notion_breaker": breakerReporter(notionClient),
			"omdb_breaker":   breakerReporter(omdbClient),
			"tmdb_breaker":   breakerReporter(tmdbClient),
			"websocket": func() hhttp.CheckStatus {
				return hhttp.CheckStatus{Status: "ok", Details: map[string]any{"clients": hub.ClientCount()}}
			},
		},
	})

	return &ServerComponents{Handler: handler, Hub: hub, WriteLimiter: writeLimiter}
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(ctx context.Context, cancel context.CancelFunc, logger *slog.Logger, cfg *appconfig.APIConfig, components *ServerComponents) {
	go components.Hub.RunWithContext(ctx)

	if components.WriteLimiter != nil {
		go hhttp.StartRateLimitCleanup(ctx, components.WriteLimiter, hhttp.LoadCleanupConfigFromEnv(), "write")
	}

	addr := ":" + strconv.Itoa(cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           components.Handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", cfg.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}

	// Hub を止めて WebSocket クライアントへ close を送る
	cancel()
	logger.Info("server stopped")
}
