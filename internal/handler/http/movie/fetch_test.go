package movie_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notioner/internal/domain/entity"
	"notioner/internal/handler/http/movie"
)

func TestParseFetchTime(t *testing.T) {
	want := time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   string
	}{
		{"rfc3339", "2024-05-01T11:00:00Z"},
		{"rfc3339 nano", "2024-05-01T11:00:00.000Z"},
		{"rfc3339 offset", "2024-05-01T16:30:00+05:30"},
		{"js date string", "Wed May 01 2024 16:30:00 GMT+0530 (India Standard Time)"},
		{"js date without zone name", "Wed May 01 2024 11:00:00 GMT+0000"},
		{"utc string", "Wed, 01 May 2024 11:00:00 GMT"},
		{"epoch millis", "1714561200000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := movie.ParseFetchTime(tt.in)
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "got %v", got)
		})
	}

	for _, bad := range []string{"", "yesterday", "2024-13-01T00:00:00Z"} {
		_, err := movie.ParseFetchTime(bad)
		assert.Error(t, err, bad)
	}
}

func newFetchHandler(svc *stubService, tracker *stubTracker, now time.Time) movie.FetchNewMoviesHandler {
	return movie.FetchNewMoviesHandler{
		Svc:    svc,
		Status: tracker,
		Logger: discardLogger(),
		Now:    func() time.Time { return now },
	}
}

func TestFetchNewMoviesHandler(t *testing.T) {
	year := 1995
	at := time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC)

	t.Run("returns new movies and records the fetch", func(t *testing.T) {
		svc := &stubService{newMovies: []entity.NewMovie{{ID: "p1", Title: "Heat", Year: &year}, {ID: "p2", Title: "Ronin"}}}
		tracker := &stubTracker{}
		h := newFetchHandler(svc, tracker, time.Now())

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/listenNewMovies",
			strings.NewReader(`{"time":"2024-05-01T11:00:00.000Z"}`)))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[{"id":"p1","title":"Heat","year":1995},{"id":"p2","title":"Ronin","year":null}]`, rr.Body.String())
		assert.True(t, at.Equal(svc.fetchAt))
		require.Len(t, tracker.recorded, 1)
		assert.True(t, at.Equal(tracker.recorded[0]))
	})

	t.Run("empty window", func(t *testing.T) {
		tracker := &stubTracker{}
		h := newFetchHandler(&stubService{}, tracker, time.Now())

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/fetchNewMovies",
			strings.NewReader(`{"time":1714561200000}`)))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `"No New Movies"`, rr.Body.String())
		assert.Len(t, tracker.recorded, 1)
	})

	t.Run("missing time uses now", func(t *testing.T) {
		svc := &stubService{}
		h := newFetchHandler(svc, &stubTracker{}, at)

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/fetchNewMovies", http.NoBody))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, at.Equal(svc.fetchAt))
	})

	t.Run("invalid time", func(t *testing.T) {
		svc := &stubService{}
		h := newFetchHandler(svc, &stubTracker{}, at)

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/fetchNewMovies", strings.NewReader(`{"time":"soon"}`)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"error":"time is invalid"}`, rr.Body.String())
		assert.True(t, svc.fetchAt.IsZero())
	})

	t.Run("query fails", func(t *testing.T) {
		tracker := &stubTracker{}
		h := newFetchHandler(&stubService{fetchErr: errors.New("notion: 502")}, tracker, at)

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/fetchNewMovies", strings.NewReader(`{}`)))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.JSONEq(t, `{"error":"Failed to fetch new movies"}`, rr.Body.String())
		assert.Empty(t, tracker.recorded)
	})
}
