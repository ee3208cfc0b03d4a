package notifier

import (
	"context"

	"notioner/internal/domain/entity"
)

// NoOpNotifier is used when no webhook is configured.
type NoOpNotifier struct{}

// NewNoOpNotifier creates a NoOpNotifier.
func NewNoOpNotifier() *NoOpNotifier {
	return &NoOpNotifier{}
}

// NotifyNewMovies does nothing.
func (n *NoOpNotifier) NotifyNewMovies(context.Context, []entity.NewMovie) error {
	return nil
}
