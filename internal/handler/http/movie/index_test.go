package movie_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notioner/internal/domain/entity"
	"notioner/internal/handler/http/movie"
)

func renderIndex(t *testing.T, h movie.IndexHandler, target string) *goquery.Document {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	doc, err := goquery.NewDocumentFromReader(rr.Body)
	require.NoError(t, err)
	return doc
}

func TestIndexHandler_Form(t *testing.T) {
	doc := renderIndex(t, movie.IndexHandler{Logger: discardLogger()}, "/?token=abc.def%2Bghi")

	form := doc.Find("form#movieForm")
	require.Equal(t, 1, form.Length())
	assert.Equal(t, "post", form.AttrOr("method", ""))
	assert.Equal(t, "/api/movie/write?token=abc.def%2Bghi", form.AttrOr("action", ""))

	for _, name := range []string{"title", "year", "itemId", "watched"} {
		assert.Equal(t, 1, form.Find(`input[name="`+name+`"]`).Length(), name)
	}
	assert.Equal(t, "checkbox", form.Find(`input[name="watched"]`).AttrOr("type", ""))
	assert.Zero(t, doc.Find("script").Length(), "page must work under the CSP without scripts")
}

func TestIndexHandler_NoToken(t *testing.T) {
	doc := renderIndex(t, movie.IndexHandler{Logger: discardLogger()}, "/")

	assert.Equal(t, "/api/movie/write", doc.Find("form").AttrOr("action", ""))
	assert.Equal(t, "N/A", doc.Find("#lastFetch").Text())
}

func TestIndexHandler_Status(t *testing.T) {
	last := time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC)
	tracker := &stubTracker{current: entity.FetchStatus{LastFetched: last, NextFetch: last.Add(5 * time.Minute)}}

	doc := renderIndex(t, movie.IndexHandler{Status: tracker, Logger: discardLogger()}, "/")

	assert.Equal(t, "01 May 2024 11:00:00 UTC", doc.Find("#lastFetch").Text())
	assert.Equal(t, "2024-05-01T11:05:00Z", doc.Find("#nextFetch").AttrOr("datetime", ""))
}

func TestIndexHandler_StatusErrorStillRenders(t *testing.T) {
	doc := renderIndex(t, movie.IndexHandler{Status: &stubTracker{err: errors.New("disk")}, Logger: discardLogger()}, "/")

	assert.Equal(t, "N/A", doc.Find("#nextFetch").Text())
}
