// Package movie exposes the movie write, fetch and status endpoints.
package movie

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"notioner/internal/domain/entity"
	"notioner/internal/infra/notion"
	movieUC "notioner/internal/usecase/movie"
)

// MovieService is the part of the movie usecase the handlers call.
type MovieService interface {
	GatherMovieData(ctx context.Context, title, year string) (entity.MovieData, error)
	WriteMovie(ctx context.Context, req movieUC.WriteRequest) (entity.MovieData, error)
	WriteRecord(ctx context.Context, record entity.MovieRecord) (*notion.Page, error)
	FetchNewMovies(ctx context.Context, at time.Time) ([]entity.NewMovie, error)
	RetrievePage(ctx context.Context, pageID string) (*notion.Page, error)
}

// StatusTracker records fetches and reports the current fetch status.
type StatusTracker interface {
	Record(ctx context.Context, at time.Time) (entity.FetchStatus, error)
	Current(ctx context.Context) (entity.FetchStatus, error)
}

// Deps bundles what the movie routes need.
type Deps struct {
	Svc    MovieService
	Status StatusTracker
	Logger *slog.Logger
	// WriteLimit wraps the write endpoints, typically with a per-IP rate limiter.
	WriteLimit func(http.Handler) http.Handler
	// Websocket serves GET /ws. The route is skipped when nil.
	Websocket http.Handler
}

// Register registers the movie routes with mux. Unmatched paths get a JSON 404.
func Register(mux *http.ServeMux, d Deps) {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	limit := d.WriteLimit
	if limit == nil {
		limit = func(h http.Handler) http.Handler { return h }
	}

	writeRecord := WriteRecordHandler{Svc: d.Svc}
	mux.Handle("POST /writeToNotion", limit(writeRecord))
	mux.Handle("POST /writeNewMovie", limit(writeRecord))

	fetch := FetchNewMoviesHandler{Svc: d.Svc, Status: d.Status, Logger: d.Logger, Now: time.Now}
	mux.Handle("POST /fetchNewMovies", fetch)
	mux.Handle("POST /listenNewMovies", fetch)

	mux.Handle("POST /api/movie/write", limit(WriteMovieHandler{Svc: d.Svc}))
	mux.Handle("POST /api/test/movie", GatherHandler{Svc: d.Svc})
	mux.Handle("POST /api/test/notion", PageHandler{Svc: d.Svc})

	mux.Handle("GET /{$}", IndexHandler{Status: d.Status, Logger: d.Logger})
	mux.Handle("GET /status", StatusHandler{Status: d.Status})
	mux.Handle("GET /favicon.ico", http.HandlerFunc(Favicon))
	if d.Websocket != nil {
		mux.Handle("GET /ws", d.Websocket)
	}

	mux.Handle("/", http.HandlerFunc(NotFound))
}
