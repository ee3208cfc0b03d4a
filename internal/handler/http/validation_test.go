package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInputValidation(t *testing.T) {
	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	handler := InputValidation(1024)(echo)

	tests := []struct {
		name     string
		target   string
		auth     string
		body     io.Reader
		chunked  bool
		wantCode int
	}{
		{name: "ok", target: "/api/movie/write", body: strings.NewReader(`{"title":"Heat"}`), wantCode: http.StatusOK},
		{name: "typical jwt", target: "/status", auth: "Bearer " + strings.Repeat("x", 900), wantCode: http.StatusOK},
		{name: "auth header at limit", target: "/status", auth: strings.Repeat("a", MaxAuthorizationHeaderBytes), wantCode: http.StatusOK},
		{name: "auth header too large", target: "/status", auth: strings.Repeat("a", MaxAuthorizationHeaderBytes+1), wantCode: http.StatusBadRequest},
		{name: "path too long", target: "/" + strings.Repeat("p", MaxPathBytes), wantCode: http.StatusRequestURITooLong},
		{name: "query too long", target: "/?token=" + strings.Repeat("t", MaxQueryBytes), wantCode: http.StatusRequestURITooLong},
		{name: "declared body too large", target: "/writeToNotion", body: strings.NewReader(strings.Repeat("a", 2048)), wantCode: http.StatusRequestEntityTooLarge},
		{name: "streamed body too large", target: "/writeToNotion", body: strings.NewReader(strings.Repeat("a", 2048)), chunked: true, wantCode: http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.target, tt.body)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			if tt.chunked {
				req.ContentLength = -1
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestInputValidation_DefaultLimit(t *testing.T) {
	var limit int64
	handler := InputValidation(0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n, _ := io.Copy(io.Discard, r.Body)
		limit = n
	}))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("a", int(DefaultMaxBodyBytes)+10)))
	req.ContentLength = -1
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, DefaultMaxBodyBytes, limit)
}
