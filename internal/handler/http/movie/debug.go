package movie

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"notioner/internal/domain/entity"
	"notioner/internal/handler/http/respond"
)

// GatherHandler returns the merged OMDB/TMDB data for a title without writing it.
type GatherHandler struct{ Svc MovieService }

// ServeHTTP godoc
// @Summary      Preview movie data
// @Description  Gathers OMDB and TMDB data for a title without touching Notion
// @Tags         debug
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      object  true  "{\"title\": string, \"year\": string}"
// @Success      200   {object}  entity.MovieData
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/test/movie [post]
func (h GatherHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string    `json:"title"`
		Year  yearField `json:"year"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Message(w, http.StatusBadRequest, "invalid request body")
		return
	}

	m, err := h.Svc.GatherMovieData(r.Context(), strings.TrimSpace(req.Title), string(req.Year))
	if err != nil {
		respond.Fail(w, r, http.StatusInternalServerError,
			respond.NewAppError(http.StatusInternalServerError, "Failed to retrieve movie data", err))
		return
	}
	respond.JSON(w, http.StatusOK, m)
}

// PageHandler returns a raw Notion page.
type PageHandler struct{ Svc MovieService }

// ServeHTTP godoc
// @Summary      Retrieve a Notion page
// @Tags         debug
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      object  true  "{\"pageId\": string}"
// @Success      200   {object}  notion.Page
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/test/notion [post]
func (h PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PageID string `json:"pageId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Message(w, http.StatusBadRequest, "invalid request body")
		return
	}
	pageID := strings.TrimSpace(req.PageID)
	if err := entity.ValidateNotionID(pageID); err != nil {
		respond.Message(w, http.StatusBadRequest, "pageId must be a Notion page id")
		return
	}

	page, err := h.Svc.RetrievePage(r.Context(), pageID)
	switch {
	case errors.Is(err, entity.ErrNotFound):
		respond.Message(w, http.StatusNotFound, "Page not found")
	case err != nil:
		respond.Fail(w, r, http.StatusInternalServerError,
			respond.NewAppError(http.StatusInternalServerError, "Failed to retrieve page", err))
	case page == nil:
		respond.Message(w, http.StatusNotFound, "Page not found")
	default:
		respond.JSON(w, http.StatusOK, page)
	}
}
