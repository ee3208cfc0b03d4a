package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appconfig "notioner/internal/config"
	hhttp "notioner/internal/handler/http"
	"notioner/internal/infra/notion"
	"notioner/internal/infra/statusfile"
	workerPkg "notioner/internal/infra/worker"
	"notioner/internal/observability/logging"
	"notioner/internal/usecase/movie"
	"notioner/internal/usecase/notify"
	"notioner/internal/usecase/status"
	envcfg "notioner/pkg/config"
)

func main() {
	logger := initLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewWorkerMetrics(nil)
	workerConfig := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Int("notify_max_concurrent", workerConfig.NotifyMaxConcurrent),
		slog.Duration("job_timeout", workerConfig.JobTimeout),
		slog.Int("health_port", workerConfig.HealthPort),
		slog.Int("metrics_port", workerConfig.MetricsPort))

	notionCfg, err := appconfig.LoadNotionConfig()
	if err != nil {
		logger.Error("failed to load Notion configuration", slog.Any("error", err))
		os.Exit(1)
	}
	statusCfg, warnings := appconfig.LoadStatusConfig()
	for _, w := range warnings {
		logger.Warn("Configuration fallback applied", slog.String("warning", w))
	}

	notifyService := setupNotifyService(logger, workerConfig)
	notionClient := notion.NewClient(notion.Config{Token: notionCfg.Token})

	// 新着取得だけなので OMDB/TMDB クライアントは不要
	svc, err := movie.NewService(notionClient, nil, nil, nil, notionCfg.MovieConfig())
	if err != nil {
		logger.Error("failed to create movie service", slog.Any("error", err))
		os.Exit(1)
	}

	tracker := status.NewTracker(statusfile.New(statusCfg.File), statusCfg.Interval, status.WithLogger(logger))
	poller := &workerPkg.Poller{
		Fetcher:  svc,
		Status:   tracker,
		Notifier: notifyService,
		Metrics:  workerMetrics,
		Logger:   logger,
		Timeout:  workerConfig.JobTimeout,
	}

	startMetricsServer(ctx, logger, workerConfig.MetricsPort, notifyService)

	healthServer := workerPkg.NewHealthServer(workerPkg.HealthConfig{
		Addr:    fmt.Sprintf(":%d", workerConfig.HealthPort),
		Version: envcfg.GetEnvString("VERSION", "dev"),
		Checks: map[string]hhttp.Checker{
			"notion": func(ctx context.Context) error {
				_, err := notionClient.Me(ctx)
				return err
			},
		},
		Reporters: map[string]hhttp.Reporter{
			"poller":         poller.Reporter,
			"notion_breaker": breakerReporter(notionClient),
		},
	}, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	runScheduler(ctx, logger, workerConfig, poller, healthServer)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := notifyService.Shutdown(shutdownCtx); err != nil {
		logger.Warn("notification shutdown incomplete", slog.Any("error", err))
	}
	logger.Info("worker stopped")
}

// initLogger initializes and returns a structured logger based on environment configuration.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// setupNotifyService wires the Discord channel when a webhook is configured.
// Without one the service has no enabled channels and notifications are no-ops.
func setupNotifyService(logger *slog.Logger, cfg *workerPkg.WorkerConfig) notify.Service {
	discordConfig := workerPkg.LoadDiscordConfig(logger)
	var channels []notify.Channel
	if discordConfig.Enabled {
		channels = append(channels, notify.NewDiscordChannel(discordConfig))
		logger.Info("Discord channel initialized", slog.String("status", "enabled"))
	} else {
		logger.Info("Discord channel disabled")
	}

	svc := notify.NewService(channels, cfg.NotifyMaxConcurrent)
	logger.Info("Notification service initialized",
		slog.Int("channels", len(channels)),
		slog.Int("max_concurrent", cfg.NotifyMaxConcurrent))
	return svc
}

// runScheduler blocks until ctx is cancelled, then waits for a running poll to finish.
func runScheduler(ctx context.Context, logger *slog.Logger, cfg *workerPkg.WorkerConfig, poller *workerPkg.Poller, healthServer *workerPkg.HealthServer) {
	c, err := workerPkg.NewScheduler(ctx, cfg, poller, logger)
	if err != nil {
		logger.Error("failed to create scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	// Mark as ready after cron is set up
	healthServer.SetReady(true)
	logger.Info("worker started", slog.String("schedule", cfg.CronSchedule), slog.String("timezone", cfg.Timezone))

	<-ctx.Done()
	logger.Info("shutting down worker...")
	healthServer.SetReady(false)

	select {
	case <-c.Stop().Done():
	case <-time.After(cfg.JobTimeout):
		logger.Warn("running poll did not finish before shutdown")
	}
}
