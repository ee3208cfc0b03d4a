package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"notioner/internal/domain/entity"
	"notioner/internal/infra/restclient"
	"notioner/internal/resilience/circuitbreaker"
	"notioner/internal/resilience/retry"
)

// DiscordConfig contains configuration for Discord webhook notifications.
type DiscordConfig struct {
	// Enabled indicates whether Discord notifications are enabled
	Enabled bool

	// WebhookURL is the Discord webhook URL (includes authentication token)
	WebhookURL string

	// Timeout is the HTTP request timeout for Discord API calls
	Timeout time.Duration
}

const (
	// Discord limits
	maxEmbedsPerMessage = 10
	maxTitleLength      = 256

	// Discord blue color (#5865F2)
	discordBlueColor = 5793266

	notionPageBaseURL = "https://www.notion.so/"
)

// DiscordWebhookPayload represents the JSON payload sent to Discord webhook.
type DiscordWebhookPayload struct {
	Content string         `json:"content,omitempty"`
	Embeds  []DiscordEmbed `json:"embeds"`
}

// DiscordEmbed represents a Discord embed message.
type DiscordEmbed struct {
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	URL         string             `json:"url"`
	Color       int                `json:"color"`
	Footer      DiscordEmbedFooter `json:"footer"`
	Timestamp   string             `json:"timestamp"`
}

// DiscordEmbedFooter represents the footer of a Discord embed.
type DiscordEmbedFooter struct {
	Text string `json:"text"`
}

// DiscordNotifier posts new movies to a Discord webhook.
type DiscordNotifier struct {
	client *restclient.Client
	now    func() time.Time
}

// NewDiscordNotifier creates a DiscordNotifier. Requests are limited to
// 0.5 req/s with a burst of 3 (Discord allows 30 webhook calls per minute).
func NewDiscordNotifier(config DiscordConfig, opts ...restclient.Option) *DiscordNotifier {
	return &DiscordNotifier{
		client: restclient.New(restclient.Config{
			Name:              "discord",
			BaseURL:           config.WebhookURL,
			Timeout:           config.Timeout,
			RequestsPerSecond: 0.5,
			Burst:             3,
			Retry:             retry.WebhookConfig(),
			Breaker:           circuitbreaker.WebhookConfig("discord-webhook"),
		}, opts...),
		now: time.Now,
	}
}

// NotionPageURL returns the browser URL of a Notion page.
func NotionPageURL(pageID string) string {
	return notionPageBaseURL + strings.ReplaceAll(pageID, "-", "")
}

// buildPayloads splits movies into webhook messages of at most ten embeds.
func (d *DiscordNotifier) buildPayloads(movies []entity.NewMovie) []DiscordWebhookPayload {
	ts := d.now().UTC().Format(time.RFC3339)

	var payloads []DiscordWebhookPayload
	for start := 0; start < len(movies); start += maxEmbedsPerMessage {
		end := min(start+maxEmbedsPerMessage, len(movies))

		embeds := make([]DiscordEmbed, 0, end-start)
		for _, m := range movies[start:end] {
			embeds = append(embeds, DiscordEmbed{
				Title:     embedTitle(m),
				URL:       NotionPageURL(m.ID),
				Color:     discordBlueColor,
				Footer:    DiscordEmbedFooter{Text: "Added to Notion"},
				Timestamp: ts,
			})
		}
		payloads = append(payloads, DiscordWebhookPayload{
			Content: newMoviesContent(len(movies)),
			Embeds:  embeds,
		})
	}
	return payloads
}

func embedTitle(m entity.NewMovie) string {
	title := m.Title
	if title == "" {
		title = "Untitled"
	}
	if m.Year != nil {
		title += " (" + strconv.Itoa(*m.Year) + ")"
	}
	if len(title) > maxTitleLength {
		title = title[:maxTitleLength]
	}
	return title
}

func newMoviesContent(n int) string {
	if n == 1 {
		return "1 new movie"
	}
	return strconv.Itoa(n) + " new movies"
}

// NotifyNewMovies posts one message per ten movies. Empty input sends nothing.
func (d *DiscordNotifier) NotifyNewMovies(ctx context.Context, movies []entity.NewMovie) error {
	for i, payload := range d.buildPayloads(movies) {
		err := d.client.Do(ctx, restclient.Request{
			Operation: "notify_new_movies",
			Method:    http.MethodPost,
			Body:      payload,
		}, nil)
		if err != nil {
			slog.ErrorContext(ctx, "Discord notification failed",
				slog.Int("message", i+1),
				slog.Int("embeds", len(payload.Embeds)),
				slog.Any("error", err))
			return fmt.Errorf("discord notification: %w", err)
		}
	}
	if len(movies) > 0 {
		slog.InfoContext(ctx, "Discord notification sent", slog.Int("movies", len(movies)))
	}
	return nil
}
