package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"notioner/internal/domain/entity"
	hhttp "notioner/internal/handler/http"
	"notioner/internal/handler/http/requestid"
	"notioner/internal/handler/http/respond"
)

// MovieFetcher lists movies created in the Notion movies database shortly before at.
type MovieFetcher interface {
	FetchNewMovies(ctx context.Context, at time.Time) ([]entity.NewMovie, error)
}

// StatusRecorder stores when the last fetch happened.
type StatusRecorder interface {
	Record(ctx context.Context, at time.Time) (entity.FetchStatus, error)
}

// Notifier announces new movies.
type Notifier interface {
	NotifyNewMovies(ctx context.Context, movies []entity.NewMovie) error
}

// RunResult describes one poll.
type RunResult struct {
	At       time.Time     `json:"at"`
	Found    int           `json:"found"`
	Duration time.Duration `json:"-"`
	Err      error         `json:"-"`
}

// Poller runs one new-movie poll per cron tick: fetch, record status, notify.
type Poller struct {
	Fetcher  MovieFetcher
	Status   StatusRecorder
	Notifier Notifier
	Metrics  *WorkerMetrics
	Logger   *slog.Logger
	Timeout  time.Duration
	Now      func() time.Time

	mu   sync.Mutex
	last *RunResult
}

// Run performs a poll. The context carries a fresh poll id as request id so
// the notification logs can be correlated.
func (p *Poller) Run(ctx context.Context) RunResult {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx = requestid.WithRequestID(ctx, "poll-"+uuid.NewString())
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	at := now()
	res := RunResult{At: at}
	movies, err := p.poll(ctx, at)
	res.Duration = now().Sub(at)
	res.Err = err
	res.Found = len(movies)

	status := RunSuccess
	if err != nil {
		status = RunFailure
		// 機密情報をマスクしてログ出力
		logger.ErrorContext(ctx, "poll failed",
			slog.String("request_id", requestid.FromContext(ctx)),
			slog.String("error", respond.SanitizeError(err)))
	} else {
		logger.InfoContext(ctx, "poll completed",
			slog.String("request_id", requestid.FromContext(ctx)),
			slog.Int("new_movies", res.Found),
			slog.Duration("duration", res.Duration))
	}
	if p.Metrics != nil {
		p.Metrics.RecordRun(status, res.Duration, res.Found)
	}

	p.mu.Lock()
	p.last = &res
	p.mu.Unlock()
	return res
}

func (p *Poller) poll(ctx context.Context, at time.Time) ([]entity.NewMovie, error) {
	movies, err := p.Fetcher.FetchNewMovies(ctx, at)
	if err != nil {
		return nil, fmt.Errorf("fetch new movies: %w", err)
	}

	var errs []error
	if p.Status != nil {
		if _, err := p.Status.Record(ctx, at); err != nil {
			errs = append(errs, fmt.Errorf("record status: %w", err))
		}
	}
	if len(movies) > 0 && p.Notifier != nil {
		if err := p.Notifier.NotifyNewMovies(ctx, movies); err != nil {
			errs = append(errs, fmt.Errorf("notify: %w", err))
		}
	}
	return movies, errors.Join(errs...)
}

// LastRun returns the most recent poll, or false before the first one.
func (p *Poller) LastRun() (RunResult, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		return RunResult{}, false
	}
	return *p.last, true
}

// Reporter exposes the last poll on /health. It never fails the check.
func (p *Poller) Reporter() hhttp.CheckStatus {
	last, ok := p.LastRun()
	if !ok {
		return hhttp.CheckStatus{Status: "pending"}
	}
	st := hhttp.CheckStatus{
		Status: "ok",
		Details: map[string]any{
			"at":          last.At.UTC().Format(time.RFC3339),
			"new_movies":  last.Found,
			"duration_ms": last.Duration.Milliseconds(),
		},
	}
	if last.Err != nil {
		st.Status = "failed"
		st.Message = respond.SanitizeError(last.Err)
	}
	return st
}
