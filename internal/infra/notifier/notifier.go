// Package notifier delivers "new movies" announcements to chat webhooks.
package notifier

import (
	"context"

	"notioner/internal/domain/entity"
)

// Notifier announces movies that were added to Notion.
// Implementations handle rate limiting and retries internally.
type Notifier interface {
	NotifyNewMovies(ctx context.Context, movies []entity.NewMovie) error
}
