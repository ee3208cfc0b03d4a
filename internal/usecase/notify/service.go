package notify

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"notioner/internal/domain/entity"
	"notioner/internal/handler/http/requestid"
)

const (
	workerPoolTimeout   = 5 * time.Second  // worker slot 取得の待ち時間
	notificationTimeout = 30 * time.Second // 1 チャンネルあたりの送信タイムアウト
)

// Service dispatches new-movie notifications to every enabled channel.
type Service interface {
	// NotifyNewMovies announces movies on all enabled channels.
	//
	// It returns immediately; sends happen in background goroutines and
	// their failures are logged, never returned. An empty slice is a no-op.
	NotifyNewMovies(ctx context.Context, movies []entity.NewMovie) error

	// GetChannelHealth reports the breaker state of each channel.
	GetChannelHealth() []ChannelHealthStatus

	// Shutdown cancels in-flight sends and waits for them until ctx expires.
	Shutdown(ctx context.Context) error
}

// ChannelHealthStatus is the health of one notification channel.
type ChannelHealthStatus struct {
	Name               string     `json:"name"`
	Enabled            bool       `json:"enabled"`
	CircuitBreakerOpen bool       `json:"circuitBreakerOpen"`
	DisabledUntil      *time.Time `json:"disabledUntil,omitempty"`
}

type service struct {
	channels []Channel
	health   map[string]*channelHealth // channels と同時に作られ、以降は読み取りのみ
	slots    chan struct{}
	wg       sync.WaitGroup
	stopCtx  context.Context
	stop     context.CancelFunc
	now      func() time.Time
}

// NewService creates a notification service. maxConcurrent bounds the number
// of sends in flight across all channels.
func NewService(channels []Channel, maxConcurrent int) Service {
	stopCtx, stop := context.WithCancel(context.Background())
	s := &service{
		channels: channels,
		health:   make(map[string]*channelHealth, len(channels)),
		slots:    make(chan struct{}, max(maxConcurrent, 1)),
		stopCtx:  stopCtx,
		stop:     stop,
		now:      time.Now,
	}
	for _, ch := range channels {
		s.health[ch.Name()] = &channelHealth{}
	}
	return s
}

func (s *service) enabledChannels() []Channel {
	out := make([]Channel, 0, len(s.channels))
	for _, ch := range s.channels {
		if ch.IsEnabled() {
			out = append(out, ch)
		}
	}
	return out
}

func (s *service) NotifyNewMovies(ctx context.Context, movies []entity.NewMovie) error {
	if len(movies) == 0 {
		return nil
	}

	requestID := requestid.FromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	logger := slog.With(slog.String("request_id", requestID))

	targets := s.enabledChannels()
	channelsEnabled.Set(float64(len(targets)))
	if len(targets) == 0 {
		logger.Debug("No notification channels enabled", slog.Int("movies", len(movies)))
		return nil
	}

	logger.Info("Dispatching new movie notification",
		slog.Int("movies", len(movies)),
		slog.Int("enabled_channels", len(targets)))

	// 呼び出し側が後で slice を再利用しても影響しないようにコピー
	batch := append([]entity.NewMovie(nil), movies...)
	for _, ch := range targets {
		s.wg.Add(1)
		go s.dispatch(logger.With(slog.String("channel", ch.Name())), requestID, ch, batch)
	}
	return nil
}

// acquire waits for a worker slot. It gives up on shutdown or after
// workerPoolTimeout and returns the drop reason.
func (s *service) acquire() (release func(), reason string) {
	select {
	case s.slots <- struct{}{}:
		return func() { <-s.slots }, ""
	case <-s.stopCtx.Done():
		return nil, "shutdown"
	case <-time.After(workerPoolTimeout):
		return nil, "pool_full"
	}
}

func (s *service) dispatch(logger *slog.Logger, requestID string, ch Channel, movies []entity.NewMovie) {
	defer s.wg.Done()
	activeNotifications.Inc()
	defer activeNotifications.Dec()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic in notification channel",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	release, reason := s.acquire()
	if release == nil {
		if reason == "pool_full" {
			logger.Warn("Notification dropped: worker pool full")
		}
		recordDropped(ch.Name(), reason)
		return
	}
	defer release()

	health := s.health[ch.Name()]
	if until, blocked := health.blockedUntil(s.now()); blocked {
		logger.Warn("Channel temporarily disabled", slog.Time("disabled_until", until))
		recordDropped(ch.Name(), "circuit_open")
		return
	}

	ctx, cancel := context.WithTimeout(s.stopCtx, notificationTimeout)
	defer cancel()

	recordDispatch(ch.Name())
	start := time.Now()
	err := ch.Send(requestid.WithRequestID(ctx, requestID), movies)
	elapsed := time.Since(start)
	recordResult(ch.Name(), err, elapsed)

	if failures, opened := health.record(err, s.now()); opened {
		logger.Error("Circuit breaker opened for channel", slog.Int("consecutive_failures", failures))
		recordCircuitBreakerOpen(ch.Name())
	}

	attrs := []any{slog.Int("movies", len(movies)), slog.Duration("send_duration", elapsed)}
	if err != nil {
		logger.Warn("Channel notification failed", append(attrs, slog.Any("error", err))...)
		return
	}
	logger.Info("Channel notification sent", attrs...)
}

// getChannelHealth returns the counter for a channel, nil when unknown.
func (s *service) getChannelHealth(name string) *channelHealth {
	return s.health[name]
}

func (s *service) GetChannelHealth() []ChannelHealthStatus {
	now := s.now()
	out := make([]ChannelHealthStatus, 0, len(s.channels))
	for _, ch := range s.channels {
		out = append(out, s.health[ch.Name()].status(ch.Name(), ch.IsEnabled(), now))
	}
	return out
}

func (s *service) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down notification service")
	s.stop()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("Notification service shutdown complete")
		return nil
	case <-ctx.Done():
		slog.Warn("Notification service shutdown timeout")
		return ctx.Err()
	}
}
