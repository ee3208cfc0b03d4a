package movie

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"notioner/internal/domain/entity"
	"notioner/internal/handler/http/respond"
	movieUC "notioner/internal/usecase/movie"
)

// WriteRecordHandler writes a flat movie record, as sent by the Notion
// automation, to the page named by its "Item ID".
type WriteRecordHandler struct{ Svc MovieService }

// ServeHTTP godoc
// @Summary      Write a movie record
// @Description  Writes a flat record of movie properties to Notion. The page is updated when "Item ID" is set, created otherwise.
// @Tags         movies
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        record  body      object  true  "Flat property name to value map"
// @Success      200     {object}  map[string]string
// @Failure      400     {object}  map[string]string
// @Failure      401     {object}  map[string]string
// @Failure      429     {object}  map[string]string
// @Failure      500     {object}  map[string]string
// @Router       /writeToNotion [post]
// @Router       /writeNewMovie [post]
func (h WriteRecordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		respond.Message(w, http.StatusBadRequest, "invalid request body")
		return
	}
	record, err := entity.ParseMovieRecord(raw)
	if err != nil {
		respond.Message(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.Svc.WriteRecord(r.Context(), record)
	if err != nil {
		respond.Fail(w, r, http.StatusInternalServerError,
			respond.NewAppError(http.StatusInternalServerError, "Failed to write movie", err))
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "Movie written", "id": page.ID})
}

// yearField accepts the year as a JSON string or number.
type yearField string

func (y *yearField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*y = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*y = yearField(strings.TrimSpace(s))
	default:
		n, err := strconv.Atoi(string(b))
		if err != nil {
			return fmt.Errorf("year must be a string or integer")
		}
		*y = yearField(strconv.Itoa(n))
	}
	return nil
}

type writeMovieRequest struct {
	Title   string    `json:"title" validate:"required,movietitle"`
	Year    yearField `json:"year" validate:"omitempty,year"`
	ItemID  string    `json:"itemId" validate:"omitempty,notionid"`
	Watched bool      `json:"watched"`
}

// WriteMovieHandler looks a movie up by title and writes it to Notion.
type WriteMovieHandler struct{ Svc MovieService }

// ServeHTTP godoc
// @Summary      Add a movie
// @Description  Gathers OMDB and TMDB data for the title and writes it to the movies database. Accepts JSON or form bodies.
// @Tags         movies
// @Security     BearerAuth
// @Accept       json
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        title    formData  string  true   "Movie title (at least 3 characters)"
// @Param        year     formData  string  false  "Release year"
// @Param        itemId   formData  string  false  "Existing Notion page id"
// @Param        watched  formData  bool    false  "Set Watched On to today"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      429  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/movie/write [post]
func (h WriteMovieHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := decodeWriteMovie(r)
	if err != nil {
		respond.Message(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.ItemID = strings.TrimSpace(req.ItemID)
	if err := validateRequest(req); err != nil {
		var ve *entity.ValidationError
		if errors.As(err, &ve) {
			respond.Message(w, http.StatusBadRequest, ve.Message)
			return
		}
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	m, err := h.Svc.WriteMovie(r.Context(), movieUC.WriteRequest{
		Title:   req.Title,
		Year:    string(req.Year),
		ItemID:  req.ItemID,
		Watched: req.Watched,
	})
	if err != nil {
		code, msg := http.StatusInternalServerError, "Failed to add movie"
		if errors.Is(err, entity.ErrMovieNotFound) {
			code, msg = http.StatusNotFound, "Movie not found"
		}
		respond.Fail(w, r, code, respond.NewAppError(code, msg, err))
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"status": "New movie added", "movie": m})
}

// decodeWriteMovie reads a JSON body, or a form body as posted by the index page.
func decodeWriteMovie(r *http.Request) (*writeMovieRequest, error) {
	var req writeMovieRequest

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch ct {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseMultipartForm(1 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return nil, err
		}
		req.Title = r.PostFormValue("title")
		req.Year = yearField(strings.TrimSpace(r.PostFormValue("year")))
		req.ItemID = r.PostFormValue("itemId")
		req.Watched = formBool(r.PostFormValue("watched"))
	default:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, err
		}
	}
	return &req, nil
}

// formBool treats a checked checkbox ("on") and "true"/"1" as set.
func formBool(v string) bool {
	if v == "on" {
		return true
	}
	b, _ := strconv.ParseBool(v)
	return b
}
