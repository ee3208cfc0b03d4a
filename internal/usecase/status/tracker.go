// Package status tracks when new movies were last fetched and when the next fetch is due.
package status

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"notioner/internal/domain/entity"
)

// DefaultInterval is the gap between scheduled fetches.
const DefaultInterval = 5 * time.Minute

// Store persists the fetch status.
type Store interface {
	Load(ctx context.Context) (entity.FetchStatus, error)
	Save(ctx context.Context, status entity.FetchStatus) error
}

// Broadcaster pushes status updates to connected clients.
type Broadcaster interface {
	BroadcastStatus(status entity.FetchStatus)
}

// Tracker records fetches and serves the current status.
type Tracker struct {
	store       Store
	broadcaster Broadcaster
	interval    time.Duration
	now         func() time.Time
	logger      *slog.Logger

	mu   sync.RWMutex
	last *entity.FetchStatus
}

// Option customizes a Tracker.
type Option func(*Tracker)

// WithBroadcaster sets where status updates are pushed.
func WithBroadcaster(b Broadcaster) Option {
	return func(t *Tracker) { t.broadcaster = b }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

// NewTracker creates a tracker. A nil store keeps the status in memory only.
func NewTracker(store Store, interval time.Duration, opts ...Option) *Tracker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	t := &Tracker{
		store:    store,
		interval: interval,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Interval returns the configured fetch interval.
func (t *Tracker) Interval() time.Duration {
	return t.interval
}

// Record marks a fetch at at and schedules the next one.
func (t *Tracker) Record(ctx context.Context, at time.Time) (entity.FetchStatus, error) {
	st := entity.FetchStatus{LastFetched: at, NextFetch: at.Add(t.interval)}

	t.mu.Lock()
	t.last = &st
	t.mu.Unlock()

	var saveErr error
	if t.store != nil {
		if err := t.store.Save(ctx, st); err != nil {
			saveErr = fmt.Errorf("save fetch status: %w", err)
			t.logger.Warn("failed to persist fetch status", slog.Any("error", err))
		}
	}
	if t.broadcaster != nil {
		t.broadcaster.BroadcastStatus(st)
	}
	return st, saveErr
}

// Current returns the stored status. The store is read on every call, since
// the worker and the API share it. Without a store, or before anything was
// stored, the last status recorded here is used, and failing that now with
// the next fetch one interval away.
func (t *Tracker) Current(ctx context.Context) (entity.FetchStatus, error) {
	if t.store != nil {
		st, err := t.store.Load(ctx)
		switch {
		case err == nil:
			t.mu.Lock()
			t.last = &st
			t.mu.Unlock()
			return st, nil
		case !errors.Is(err, entity.ErrNotFound):
			return entity.FetchStatus{}, fmt.Errorf("load fetch status: %w", err)
		}
	}

	t.mu.RLock()
	last := t.last
	t.mu.RUnlock()
	if last != nil {
		return *last, nil
	}

	now := t.now()
	return entity.FetchStatus{LastFetched: now, NextFetch: now.Add(t.interval)}, nil
}
