package responsewriter

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseWriter_Records(t *testing.T) {
	tests := []struct {
		name       string
		handler    func(w http.ResponseWriter)
		wantStatus int
		wantBytes  int
		wantBody   string
	}{
		{
			name:       "nothing written",
			handler:    func(http.ResponseWriter) {},
			wantStatus: http.StatusOK,
		},
		{
			name: "implicit 200 on write",
			handler: func(w http.ResponseWriter) {
				_, _ = w.Write([]byte(`{"status":"Movie written"}`))
			},
			wantStatus: http.StatusOK,
			wantBytes:  26,
			wantBody:   `{"status":"Movie written"}`,
		},
		{
			name: "explicit status then several writes",
			handler: func(w http.ResponseWriter) {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte("Movie "))
				_, _ = w.Write([]byte("Not Found"))
			},
			wantStatus: http.StatusNotFound,
			wantBytes:  15,
			wantBody:   "Movie Not Found",
		},
		{
			name: "second WriteHeader ignored",
			handler: func(w http.ResponseWriter) {
				w.WriteHeader(http.StatusTooManyRequests)
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantStatus: http.StatusTooManyRequests,
		},
		{
			name: "WriteHeader after Write ignored",
			handler: func(w http.ResponseWriter) {
				_, _ = w.Write([]byte("ok"))
				w.WriteHeader(http.StatusBadGateway)
			},
			wantStatus: http.StatusOK,
			wantBytes:  2,
			wantBody:   "ok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			rw := Wrap(rec)

			tt.handler(rw)

			assert.Equal(t, tt.wantStatus, rw.StatusCode())
			assert.Equal(t, tt.wantBytes, rw.BytesWritten())
			assert.Equal(t, tt.wantBody, rec.Body.String())
			if tt.wantBytes > 0 || tt.wantStatus != http.StatusOK {
				assert.Equal(t, tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestResponseWriter_ResponseController(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := Wrap(rec)

	assert.Same(t, rec, rw.Unwrap())

	rc := http.NewResponseController(rw)
	require.NoError(t, rc.Flush())
	assert.True(t, rec.Flushed)
	// httptest.ResponseRecorder has no deadlines; the controller must reach it through Unwrap.
	assert.ErrorIs(t, rc.SetWriteDeadline(time.Now().Add(time.Second)), http.ErrNotSupported)
}

func TestResponseWriter_Hijack(t *testing.T) {
	t.Run("unsupported writer", func(t *testing.T) {
		_, _, err := Wrap(httptest.NewRecorder()).Hijack()
		assert.Error(t, err)
	})

	t.Run("through a real server", func(t *testing.T) {
		statuses := make(chan int, 1)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := Wrap(w)
			conn, buf, err := rw.Hijack()
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			defer func() { _ = conn.Close() }()
			statuses <- rw.StatusCode()
			_, _ = buf.WriteString("HTTP/1.1 204 No Content\r\nConnection: close\r\n\r\n")
			_ = buf.Flush()
		}))
		defer srv.Close()

		resp, err := http.Get(srv.URL)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Equal(t, http.StatusSwitchingProtocols, <-statuses)
	})
}
