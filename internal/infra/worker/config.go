package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"notioner/internal/infra/notifier"
	"notioner/internal/pkg/config"
	envcfg "notioner/pkg/config"
)

// Discord webhook URLs must look like https://discord.com/api/webhooks/<id>/<token>.
const (
	discordWebhookHost   = "discord.com"
	discordWebhookPrefix = "/api/webhooks/"
)

// WorkerConfig controls the new-movie poller.
type WorkerConfig struct {
	// CronSchedule is a five field cron expression. Default "*/5 * * * *".
	CronSchedule string

	// Timezone the schedule is evaluated in. Default "Asia/Kolkata".
	Timezone string

	// NotifyMaxConcurrent bounds concurrent notification sends (1-50). Default 5.
	NotifyMaxConcurrent int

	// JobTimeout bounds one poll including the Notion queries (10s-30m). Default 2m.
	JobTimeout time.Duration

	// HealthPort serves /health, /ready and /live (1024-65535). Default 9091.
	HealthPort int

	// MetricsPort serves /metrics and /health/channels (1024-65535). Default 9090.
	MetricsPort int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule:        "*/5 * * * *",
		Timezone:            "Asia/Kolkata",
		NotifyMaxConcurrent: 5,
		JobTimeout:          2 * time.Minute,
		HealthPort:          9091,
		MetricsPort:         9090,
	}
}

// Validate reports every invalid field at once.
func (c *WorkerConfig) Validate() error {
	var errs []error
	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateIntRange(c.NotifyMaxConcurrent, 1, 50); err != nil {
		errs = append(errs, fmt.Errorf("notify max concurrent: %w", err))
	}
	if err := config.ValidateDuration(c.JobTimeout, 10*time.Second, 30*time.Minute); err != nil {
		errs = append(errs, fmt.Errorf("job timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	if err := config.ValidateIntRange(c.MetricsPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("metrics port: %w", err))
	}
	if c.HealthPort == c.MetricsPort {
		errs = append(errs, errors.New("health port and metrics port must differ"))
	}
	return errors.Join(errs...)
}

// LoadConfigFromEnv reads CRON_SCHEDULE, WORKER_TIMEZONE, NOTIFY_MAX_CONCURRENT,
// WORKER_JOB_TIMEOUT, WORKER_HEALTH_PORT and WORKER_METRICS_PORT.
//
// Invalid values fall back to their defaults with a warning and a
// worker_config_fallbacks_total increment; the returned config is always usable.
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) *WorkerConfig {
	cfg := DefaultConfig()
	fallback := false

	note := func(field string, warning string) {
		fallback = true
		metrics.RecordFallback(field)
		logger.Warn("Configuration fallback applied",
			slog.String("field", field),
			slog.String("warning", warning))
	}

	schedule := config.LoadString("CRON_SCHEDULE", cfg.CronSchedule, config.ValidateCronSchedule)
	cfg.CronSchedule = schedule.Value
	if schedule.FallbackApplied {
		note("cron_schedule", schedule.Warning)
	}

	tz := config.LoadString("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = tz.Value
	if tz.FallbackApplied {
		note("timezone", tz.Warning)
	}

	concurrent := config.LoadInt("NOTIFY_MAX_CONCURRENT", cfg.NotifyMaxConcurrent, func(v int) error {
		return config.ValidateIntRange(v, 1, 50)
	})
	cfg.NotifyMaxConcurrent = concurrent.Value
	if concurrent.FallbackApplied {
		note("notify_max_concurrent", concurrent.Warning)
	}

	timeout := config.LoadDuration("WORKER_JOB_TIMEOUT", cfg.JobTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, 10*time.Second, 30*time.Minute)
	})
	cfg.JobTimeout = timeout.Value
	if timeout.FallbackApplied {
		note("job_timeout", timeout.Warning)
	}

	portRange := func(v int) error { return config.ValidateIntRange(v, 1024, 65535) }
	health := config.LoadInt("WORKER_HEALTH_PORT", cfg.HealthPort, portRange)
	cfg.HealthPort = health.Value
	if health.FallbackApplied {
		note("health_port", health.Warning)
	}
	metricsPort := config.LoadInt("WORKER_METRICS_PORT", cfg.MetricsPort, portRange)
	cfg.MetricsPort = metricsPort.Value
	if metricsPort.FallbackApplied {
		note("metrics_port", metricsPort.Warning)
	}

	metrics.SetFallbackActive(fallback)
	metrics.RecordLoadTimestamp()
	return &cfg
}

// LoadDiscordConfig enables Discord notifications when DISCORD_WEBHOOK_URL
// holds a valid webhook URL. DISCORD_ENABLED=false turns them off explicitly.
func LoadDiscordConfig(logger *slog.Logger) notifier.DiscordConfig {
	webhookURL := envcfg.GetEnvString("DISCORD_WEBHOOK_URL", "")
	if webhookURL == "" || !envcfg.GetEnvBool("DISCORD_ENABLED", true) {
		return notifier.DiscordConfig{Enabled: false}
	}
	if err := config.ValidateWebhookURL(webhookURL, discordWebhookHost, discordWebhookPrefix); err != nil {
		logger.Warn("Discord webhook URL rejected, disabling notifications", slog.Any("error", err))
		return notifier.DiscordConfig{Enabled: false}
	}
	return notifier.DiscordConfig{
		Enabled:    true,
		WebhookURL: webhookURL,
		Timeout:    envcfg.GetEnvDuration("DISCORD_TIMEOUT", 30*time.Second),
	}
}
