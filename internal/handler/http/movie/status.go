package movie

import (
	"net/http"

	"notioner/internal/handler/http/respond"
)

// StatusHandler serves the last and next fetch times.
type StatusHandler struct{ Status StatusTracker }

// ServeHTTP godoc
// @Summary      Fetch status
// @Description  Returns when new movies were last fetched and when the next fetch is due
// @Tags         status
// @Produce      json
// @Success      200  {object}  entity.FetchStatus
// @Failure      500  {object}  map[string]string
// @Router       /status [get]
func (h StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	st, err := h.Status.Current(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, st)
}

// Favicon answers browsers with an empty response.
func Favicon(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// NotFound is the catch-all for unknown paths.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	respond.Message(w, http.StatusNotFound, "Not Found")
}
