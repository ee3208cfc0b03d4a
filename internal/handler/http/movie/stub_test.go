package movie_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"notioner/internal/domain/entity"
	"notioner/internal/infra/notion"
	movieUC "notioner/internal/usecase/movie"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubService struct {
	mu sync.Mutex

	gathered   entity.MovieData
	gatherErr  error
	writeReq   movieUC.WriteRequest
	writeErr   error
	record     entity.MovieRecord
	page       *notion.Page
	recordErr  error
	fetchAt    time.Time
	newMovies  []entity.NewMovie
	fetchErr   error
	retrieveID string
	retrieved  *notion.Page
	pageErr    error
}

func (s *stubService) GatherMovieData(_ context.Context, title, year string) (entity.MovieData, error) {
	if s.gatherErr != nil {
		return entity.MovieData{}, s.gatherErr
	}
	m := s.gathered
	if m.Title == "" {
		m.Title = title
	}
	return m, nil
}

func (s *stubService) WriteMovie(_ context.Context, req movieUC.WriteRequest) (entity.MovieData, error) {
	s.mu.Lock()
	s.writeReq = req
	s.mu.Unlock()
	if s.writeErr != nil {
		return entity.MovieData{}, s.writeErr
	}
	return entity.MovieData{Title: req.Title, IMDbID: "tt0113277"}, nil
}

func (s *stubService) WriteRecord(_ context.Context, record entity.MovieRecord) (*notion.Page, error) {
	s.mu.Lock()
	s.record = record
	s.mu.Unlock()
	if s.recordErr != nil {
		return nil, s.recordErr
	}
	return s.page, nil
}

func (s *stubService) FetchNewMovies(_ context.Context, at time.Time) ([]entity.NewMovie, error) {
	s.mu.Lock()
	s.fetchAt = at
	s.mu.Unlock()
	return s.newMovies, s.fetchErr
}

func (s *stubService) RetrievePage(_ context.Context, pageID string) (*notion.Page, error) {
	s.retrieveID = pageID
	return s.retrieved, s.pageErr
}

type stubTracker struct {
	recorded []time.Time
	current  entity.FetchStatus
	err      error
}

func (s *stubTracker) Record(_ context.Context, at time.Time) (entity.FetchStatus, error) {
	s.recorded = append(s.recorded, at)
	return entity.FetchStatus{LastFetched: at, NextFetch: at.Add(5 * time.Minute)}, nil
}

func (s *stubTracker) Current(context.Context) (entity.FetchStatus, error) {
	return s.current, s.err
}
