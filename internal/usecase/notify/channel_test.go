package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notioner/internal/domain/entity"
	"notioner/internal/infra/notifier"
)

// mockChannel records sends and can fail, stall or panic on demand.
type mockChannel struct {
	name        string
	enabled     bool
	sendError   error
	sendDelay   time.Duration
	panicOnSend bool

	mu         sync.Mutex
	sendCalled int
	received   [][]entity.NewMovie
}

func (m *mockChannel) Name() string    { return m.name }
func (m *mockChannel) IsEnabled() bool { return m.enabled }

func (m *mockChannel) Send(ctx context.Context, movies []entity.NewMovie) error {
	m.mu.Lock()
	m.sendCalled++
	m.received = append(m.received, movies)
	sendErr := m.sendError
	m.mu.Unlock()

	if m.panicOnSend {
		panic("mock panic")
	}
	if m.sendDelay > 0 {
		select {
		case <-time.After(m.sendDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return sendErr
}

func (m *mockChannel) getSendCalledCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sendCalled
}

func TestDiscordChannel_Disabled(t *testing.T) {
	// Arrange
	ch := NewDiscordChannel(notifier.DiscordConfig{Enabled: false})

	// Act
	err := ch.Send(context.Background(), []entity.NewMovie{{ID: "p1", Title: "Heat"}})

	// Assert
	assert.Equal(t, "discord", ch.Name())
	assert.False(t, ch.IsEnabled())
	assert.ErrorIs(t, err, ErrChannelDisabled)
}

func TestDiscordChannel_NoMovies(t *testing.T) {
	ch := NewDiscordChannel(notifier.DiscordConfig{Enabled: true, WebhookURL: "http://127.0.0.1:1/hook"})

	err := ch.Send(context.Background(), nil)

	assert.ErrorIs(t, err, ErrNoMovies)
}

func TestDiscordChannel_Send(t *testing.T) {
	// Arrange
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()
	ch := NewDiscordChannel(notifier.DiscordConfig{Enabled: true, WebhookURL: srv.URL, Timeout: time.Second})

	// Act
	err := ch.Send(context.Background(), []entity.NewMovie{{ID: "p1", Title: "Heat"}})

	// Assert
	require.NoError(t, err)
	assert.True(t, ch.IsEnabled())
	assert.Equal(t, int32(1), calls.Load())
}
