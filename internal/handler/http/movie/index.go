package movie

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"notioner/internal/handler/http/respond"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

const displayLayout = "02 Jan 2006 15:04:05 MST"

type indexView struct {
	Action          string
	LastFetched     string
	LastFetchedText string
	NextFetch       string
	NextFetchText   string
}

// IndexHandler renders the add-movie form. The page's ?token= is carried into
// the form action so the submit passes the auth middleware.
type IndexHandler struct {
	Status StatusTracker
	Logger *slog.Logger
}

// ServeHTTP godoc
// @Summary      Add-movie form
// @Tags         ui
// @Produce      html
// @Param        token  query  string  false  "Token forwarded to the form submit"
// @Success      200
// @Router       / [get]
func (h IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	view := indexView{Action: "/api/movie/write"}
	if token := r.URL.Query().Get("token"); token != "" {
		view.Action += "?" + url.Values{"token": {token}}.Encode()
	}

	if h.Status != nil {
		if st, err := h.Status.Current(r.Context()); err == nil {
			view.LastFetched = st.LastFetched.UTC().Format(time.RFC3339)
			view.LastFetchedText = st.LastFetched.UTC().Format(displayLayout)
			view.NextFetch = st.NextFetch.UTC().Format(time.RFC3339)
			view.NextFetchText = st.NextFetch.UTC().Format(displayLayout)
		} else {
			h.logger().Warn("load fetch status for index failed", slog.Any("error", err))
		}
	}
	if view.LastFetchedText == "" {
		view.LastFetchedText, view.NextFetchText = "N/A", "N/A"
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, view); err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h IndexHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}
