// Package notify dispatches "new movies" notifications to the configured channels.
// Sends run in the background with a bounded worker pool and a per-channel
// failure breaker, so a slow webhook never delays the fetch that found the movies.
package notify

import (
	"context"

	"notioner/internal/domain/entity"
	"notioner/internal/infra/notifier"
)

// Channel is a notification delivery channel.
// Implementations must be safe for concurrent use and respect context cancellation.
type Channel interface {
	// Name returns the channel identifier used in logs and metrics.
	Name() string

	// IsEnabled reports whether the channel should receive notifications.
	IsEnabled() bool

	// Send announces movies on this channel.
	Send(ctx context.Context, movies []entity.NewMovie) error
}

// DiscordChannel adapts the Discord webhook notifier to Channel.
type DiscordChannel struct {
	notifier notifier.Notifier
	enabled  bool
}

// NewDiscordChannel creates a Discord channel. A disabled config gets a no-op notifier.
func NewDiscordChannel(config notifier.DiscordConfig) *DiscordChannel {
	var n notifier.Notifier = notifier.NewNoOpNotifier()
	if config.Enabled {
		n = notifier.NewDiscordNotifier(config)
	}
	return &DiscordChannel{notifier: n, enabled: config.Enabled}
}

// Name returns "discord".
func (c *DiscordChannel) Name() string {
	return "discord"
}

// IsEnabled reports whether a webhook is configured.
func (c *DiscordChannel) IsEnabled() bool {
	return c.enabled
}

// Send posts the movies to Discord.
func (c *DiscordChannel) Send(ctx context.Context, movies []entity.NewMovie) error {
	if !c.enabled {
		return ErrChannelDisabled
	}
	if len(movies) == 0 {
		return ErrNoMovies
	}
	return c.notifier.NotifyNewMovies(ctx, movies)
}
