package notifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"notioner/internal/domain/entity"
)

func TestNoOpNotifier_NotifyNewMovies(t *testing.T) {
	var n Notifier = NewNoOpNotifier()

	assert.NoError(t, n.NotifyNewMovies(context.Background(), []entity.NewMovie{{ID: "p1", Title: "Heat"}}))
	assert.NoError(t, n.NotifyNewMovies(context.Background(), nil))
}
