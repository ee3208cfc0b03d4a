package movie

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"notioner/internal/handler/http/respond"
	"notioner/internal/observability/logging"
)

// NoNewMovies is the response body when the fetch window is empty.
const NoNewMovies = "No New Movies"

// jsDateLayout is the format of JavaScript's Date.prototype.toString without
// the trailing zone name, e.g. "Wed May 01 2024 16:30:00 GMT+0530".
const jsDateLayout = "Mon Jan 02 2006 15:04:05 GMT-0700"

var (
	errTimeFormat = errors.New("time is invalid")
	zoneNameRE    = regexp.MustCompile(`\s*\([^)]*\)\s*$`)
)

// FetchNewMoviesHandler lists movies created in the window ending at the
// requested time and records the fetch.
type FetchNewMoviesHandler struct {
	Svc    MovieService
	Status StatusTracker
	Logger *slog.Logger
	Now    func() time.Time
}

// ServeHTTP godoc
// @Summary      New movies
// @Description  Lists movies created in the eight minutes before "time". An empty window returns the string "No New Movies".
// @Tags         movies
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      object  false  "{\"time\": RFC3339 string, JavaScript date string or epoch milliseconds}"
// @Success      200   {array}   entity.NewMovie
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /fetchNewMovies [post]
// @Router       /listenNewMovies [post]
func (h FetchNewMoviesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	at, err := h.requestTime(r)
	if err != nil {
		respond.Message(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	logger := logging.WithRequestID(ctx, h.Logger)

	movies, err := h.Svc.FetchNewMovies(ctx, at)
	if err != nil {
		respond.Fail(w, r, http.StatusInternalServerError,
			respond.NewAppError(http.StatusInternalServerError, "Failed to fetch new movies", err))
		return
	}

	// 保存に失敗しても一覧は返す
	if h.Status != nil {
		if _, err := h.Status.Record(ctx, at); err != nil {
			logger.Warn("record fetch status failed", slog.Any("error", err))
		}
	}

	if len(movies) == 0 {
		respond.JSON(w, http.StatusOK, NoNewMovies)
		return
	}
	logger.Info("new movies fetched", slog.Int("count", len(movies)))
	respond.JSON(w, http.StatusOK, movies)
}

// requestTime reads {"time": ...}. A missing body or time means now.
func (h FetchNewMoviesHandler) requestTime(r *http.Request) (time.Time, error) {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}

	var body struct {
		Time json.RawMessage `json:"time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		return time.Time{}, errors.New("invalid request body")
	}
	raw := bytes.TrimSpace(body.Time)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return now(), nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return time.Time{}, errTimeFormat
		}
		return ParseFetchTime(s)
	}
	ms, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return time.Time{}, errTimeFormat
	}
	return time.UnixMilli(ms), nil
}

// ParseFetchTime accepts RFC 3339 (with or without fractional seconds),
// JavaScript Date strings, RFC 1123 and epoch milliseconds.
func ParseFetchTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errTimeFormat
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(jsDateLayout, zoneNameRE.ReplaceAllString(s, "")); err == nil {
		return t, nil
	}
	for _, layout := range []string{time.RFC1123, time.RFC1123Z} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errTimeFormat
}
