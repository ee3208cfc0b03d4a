// Package movie maps OMDB and TMDB metadata onto the Notion movies database.
package movie

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"notioner/internal/domain/entity"
	"notioner/internal/infra/notion"
	"notioner/internal/infra/omdb"
	"notioner/internal/infra/tmdb"
	"notioner/internal/observability/logging"
	"notioner/internal/observability/metrics"
	"notioner/internal/observability/tracing"
)

// Production database and relation page ids.
const (
	DefaultMoviesDatabaseID     = "53999533-c639-467e-b0cb-bec31b241407"
	DefaultCollectionDatabaseID = "b206d07b-0728-4b4f-a51c-1afa08bfbb84"
	DefaultMoviesRelationID     = "58acc6ff1d8d4154a95d26219a2a1777"
	DefaultSeriesRelationID     = "d3982225de604015975d11fe0862e716"
)

const (
	// DefaultFetchWindow is how far back FetchNewMovies looks.
	DefaultFetchWindow = 8 * time.Minute
	// WatchedDateLayout is the DD/MM/YYYY layout used for "Watched On".
	WatchedDateLayout = "02/01/2006"

	defaultFetchParallelism = 4
	defaultTimeZone         = "Asia/Kolkata"
)

// Write sources reported in metrics.
const (
	SourceForm   = "form"
	SourceRecord = "record"
)

// NotionAPI is the subset of the Notion client the service uses.
type NotionAPI interface {
	CreatePage(ctx context.Context, req notion.PageRequest) (*notion.Page, error)
	UpdatePage(ctx context.Context, pageID string, req notion.PageRequest) (*notion.Page, error)
	RetrievePage(ctx context.Context, pageID string) (*notion.Page, error)
	QueryDatabase(ctx context.Context, databaseID string, req notion.QueryRequest) (*notion.QueryResponse, error)
	RetrievePageProperty(ctx context.Context, pageID, propertyID string) (*notion.PropertyItem, error)
}

// TitleSearcher looks movies up by title on OMDB.
type TitleSearcher interface {
	ByTitle(ctx context.Context, title, year string) (*omdb.Response, error)
}

// DetailsFinder resolves IMDb ids to TMDB movie details.
type DetailsFinder interface {
	MovieByIMDbID(ctx context.Context, imdbID string) (*tmdb.MovieDetails, error)
}

// Config holds the Notion ids and tuning of the service.
type Config struct {
	MoviesDatabaseID     string
	CollectionDatabaseID string
	MoviesRelationID     string
	SeriesRelationID     string
	FetchWindow          time.Duration
	FetchParallelism     int
	Location             *time.Location
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	loc, err := time.LoadLocation(defaultTimeZone)
	if err != nil {
		loc = time.FixedZone("IST", 5*60*60+30*60)
	}
	return Config{
		MoviesDatabaseID:     DefaultMoviesDatabaseID,
		CollectionDatabaseID: DefaultCollectionDatabaseID,
		MoviesRelationID:     DefaultMoviesRelationID,
		SeriesRelationID:     DefaultSeriesRelationID,
		FetchWindow:          DefaultFetchWindow,
		FetchParallelism:     defaultFetchParallelism,
		Location:             loc,
	}
}

// WriteRequest is a movie submitted through the web form.
type WriteRequest struct {
	Title   string
	Year    string
	ItemID  string
	Watched bool
}

// Service gathers movie metadata and writes it to Notion.
// It holds no per-request state; every write builds its own resolver.
type Service struct {
	notion NotionAPI
	omdb   TitleSearcher
	tmdb   DetailsFinder
	schema *Schema
	cfg    Config
	now    func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a movie service. A nil schema selects the embedded one.
func NewService(notionAPI NotionAPI, omdbAPI TitleSearcher, tmdbAPI DetailsFinder, schema *Schema, cfg Config, opts ...Option) (*Service, error) {
	if schema == nil {
		s, err := DefaultSchema()
		if err != nil {
			return nil, err
		}
		schema = s
	}

	defaults := DefaultConfig()
	if cfg.MoviesDatabaseID == "" {
		cfg.MoviesDatabaseID = defaults.MoviesDatabaseID
	}
	if cfg.CollectionDatabaseID == "" {
		cfg.CollectionDatabaseID = defaults.CollectionDatabaseID
	}
	if cfg.MoviesRelationID == "" {
		cfg.MoviesRelationID = defaults.MoviesRelationID
	}
	if cfg.SeriesRelationID == "" {
		cfg.SeriesRelationID = defaults.SeriesRelationID
	}
	if cfg.FetchWindow <= 0 {
		cfg.FetchWindow = defaults.FetchWindow
	}
	if cfg.FetchParallelism <= 0 {
		cfg.FetchParallelism = defaults.FetchParallelism
	}
	if cfg.Location == nil {
		cfg.Location = defaults.Location
	}

	s := &Service{
		notion: notionAPI,
		omdb:   omdbAPI,
		tmdb:   tmdbAPI,
		schema: schema,
		cfg:    cfg,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// GatherMovieData looks the movie up on OMDB, enriches it from TMDB and merges both.
// A TMDB miss or failure is logged and the OMDB data is returned alone.
func (s *Service) GatherMovieData(ctx context.Context, title, year string) (_ entity.MovieData, err error) {
	ctx, span := tracing.StartSpan(ctx, "movie.GatherMovieData",
		attribute.String("movie.title", title), attribute.String("movie.year", year))
	defer func() { tracing.EndSpan(span, err) }()

	logger := logging.WithRequestID(ctx, logging.FromContext(ctx))

	resp, err := s.omdb.ByTitle(ctx, title, year)
	if err != nil {
		return entity.MovieData{}, fmt.Errorf("gather %q: %w", title, err)
	}

	var details *tmdb.MovieDetails
	if resp.IMDbID != "" {
		details, err = s.tmdb.MovieByIMDbID(ctx, resp.IMDbID)
		if err != nil {
			level := slog.LevelWarn
			if errors.Is(err, entity.ErrNotFound) {
				level = slog.LevelInfo
			}
			logger.Log(ctx, level, "tmdb lookup failed, continuing with omdb data",
				slog.String("imdb_id", resp.IMDbID),
				slog.Any("error", err))
			details, err = nil, nil
		}
	}

	m := PrepareMovieData(resp, details)
	span.SetAttributes(attribute.String("movie.imdb_id", m.IMDbID), attribute.Int("movie.tmdb_id", m.TMDBID))
	return m, nil
}

// UpdateNotionPage writes a gathered movie. With an itemID the page is patched,
// otherwise a page is created in the movies database.
func (s *Service) UpdateNotionPage(ctx context.Context, m entity.MovieData, itemID string) (*notion.Page, error) {
	record := m.Record()
	if itemID != "" {
		record[entity.KeyItemID] = itemID
	}
	return s.writeRecord(ctx, record)
}

// WriteMovie gathers a movie and writes it to Notion. Watched movies get
// today's date (in the service time zone) as "Watched On".
func (s *Service) WriteMovie(ctx context.Context, req WriteRequest) (entity.MovieData, error) {
	m, err := s.GatherMovieData(ctx, req.Title, req.Year)
	if err != nil {
		metrics.RecordMovieWritten(SourceForm, false)
		return entity.MovieData{}, err
	}
	if req.Watched {
		m.WatchedOn = s.now().In(s.cfg.Location).Format(WatchedDateLayout)
	}

	_, err = s.UpdateNotionPage(ctx, m, entity.NormalizeNotionID(req.ItemID))
	metrics.RecordMovieWritten(SourceForm, err == nil)
	if err != nil {
		return entity.MovieData{}, err
	}
	return m, nil
}

// WriteRecord writes a flat movie record. The page id, when present, comes from "Item ID".
func (s *Service) WriteRecord(ctx context.Context, record entity.MovieRecord) (*notion.Page, error) {
	page, err := s.writeRecord(ctx, record)
	metrics.RecordMovieWritten(SourceRecord, err == nil)
	return page, err
}

func (s *Service) writeRecord(ctx context.Context, record entity.MovieRecord) (_ *notion.Page, err error) {
	itemID := strings.TrimSpace(record.ItemID())
	ctx, span := tracing.StartSpan(ctx, "movie.WriteRecord",
		attribute.String("notion.page_id", itemID),
		attribute.String("movie.title", record.Get(entity.PropTitle)))
	defer func() { tracing.EndSpan(span, err) }()

	logger := logging.WithRequestID(ctx, logging.FromContext(ctx))

	resolver := &relationRouter{
		moviesRelationID: s.cfg.MoviesRelationID,
		seriesRelationID: s.cfg.SeriesRelationID,
		collections:      newCollectionUpsert(s.notion, s.cfg.CollectionDatabaseID, record, logger),
	}
	props, err := s.schema.BuildProperties(ctx, record, resolver)
	if err != nil {
		return nil, err
	}

	req := notion.PageRequest{Properties: props}
	if v := record.Get(entity.KeyBackDrop); v != "" {
		req.Cover = notion.External(v)
	}
	if v := record.Get(entity.KeyIcon); v != "" {
		req.Icon = notion.External(v)
	}

	var page *notion.Page
	if itemID != "" {
		page, err = s.notion.UpdatePage(ctx, itemID, req)
		if err != nil {
			return nil, fmt.Errorf("update page %s: %w", itemID, err)
		}
		logger.Info("movie page updated", slog.String("page_id", itemID), slog.Int("properties", len(props)))
		return page, nil
	}

	req.Parent = notion.DatabaseParent(s.cfg.MoviesDatabaseID)
	page, err = s.notion.CreatePage(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create movie page: %w", err)
	}
	logger.Info("movie page created", slog.String("page_id", page.ID), slog.Int("properties", len(props)))
	return page, nil
}

// FetchNewMovies lists movies created in the window ending at at.
// Titles and years are read concurrently; the result keeps query order.
func (s *Service) FetchNewMovies(ctx context.Context, at time.Time) (_ []entity.NewMovie, err error) {
	ctx, span := tracing.StartSpan(ctx, "movie.FetchNewMovies", attribute.String("fetch.at", at.UTC().Format(time.RFC3339)))
	defer func() { tracing.EndSpan(span, err) }()
	start := time.Now()

	filter := notion.CreatedBetween(at.Add(-s.cfg.FetchWindow), at)
	pages, err := s.queryAll(ctx, notion.QueryRequest{Filter: &filter})
	if err != nil {
		return nil, fmt.Errorf("query new movies: %w", err)
	}

	movies := make([]entity.NewMovie, len(pages))
	if len(movies) == 0 {
		metrics.RecordNewMoviesFetch(0, time.Since(start))
		return movies, nil
	}

	yearProp, _ := s.schema.Lookup(entity.PropYear)
	titleProp, ok := s.schema.Lookup(entity.PropTitle)
	if !ok {
		titleProp = Property{Name: entity.PropTitle, ID: "title"}
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.cfg.FetchParallelism)
	for i, page := range pages {
		movies[i].ID = page.ID
		eg.Go(func() error {
			title, err := s.notion.RetrievePageProperty(egCtx, page.ID, titleProp.ID)
			if err != nil {
				return fmt.Errorf("page %s title: %w", page.ID, err)
			}
			movies[i].Title = title.FirstPlainText()

			if yearProp.ID == "" {
				return nil
			}
			year, err := s.notion.RetrievePageProperty(egCtx, page.ID, yearProp.ID)
			if err != nil {
				return fmt.Errorf("page %s year: %w", page.ID, err)
			}
			if v, ok := year.NumberValue(); ok {
				y := int(v)
				movies[i].Year = &y
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("fetch.count", len(movies)))
	metrics.RecordNewMoviesFetch(len(movies), time.Since(start))
	return movies, nil
}

// queryAll follows next_cursor until Notion reports no more results.
func (s *Service) queryAll(ctx context.Context, req notion.QueryRequest) ([]notion.Page, error) {
	var pages []notion.Page
	for {
		resp, err := s.notion.QueryDatabase(ctx, s.cfg.MoviesDatabaseID, req)
		if err != nil {
			return nil, err
		}
		pages = append(pages, resp.Results...)
		if !resp.HasMore || resp.NextCursor == nil || *resp.NextCursor == "" {
			return pages, nil
		}
		req.StartCursor = *resp.NextCursor
	}
}

// RetrievePage returns a Notion page.
func (s *Service) RetrievePage(ctx context.Context, pageID string) (*notion.Page, error) {
	page, err := s.notion.RetrievePage(ctx, entity.NormalizeNotionID(pageID))
	if err != nil {
		return nil, fmt.Errorf("retrieve page %s: %w", pageID, err)
	}
	return page, nil
}
