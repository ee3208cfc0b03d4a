package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notioner/internal/domain/entity"
	"notioner/internal/usecase/notify"
)

type stubNotify struct {
	health []notify.ChannelHealthStatus
}

func (s *stubNotify) NotifyNewMovies(context.Context, []entity.NewMovie) error { return nil }
func (s *stubNotify) GetChannelHealth() []notify.ChannelHealthStatus { return s.health }
func (s *stubNotify) Shutdown(context.Context) error { return nil }

func TestChannelHealthHandler(t *testing.T) {
	tests := []struct {
		name     string
		health   []notify.ChannelHealthStatus
		wantCode int
		healthy  bool
	}{
		{"no channels", nil, http.StatusOK, true},
		{"closed breaker", []notify.ChannelHealthStatus{{Name: "discord", Enabled: true}}, http.StatusOK, true},
		{"open breaker", []notify.ChannelHealthStatus{{Name: "discord", Enabled: true, CircuitBreakerOpen: true}}, http.StatusServiceUnavailable, false},
		{"open but disabled", []notify.ChannelHealthStatus{{Name: "discord", CircuitBreakerOpen: true}}, http.StatusOK, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			metricsMux(&stubNotify{health: tt.health}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/channels", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			var resp ChannelHealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.healthy, resp.Healthy)
			assert.Len(t, resp.Channels, len(tt.health))
		})
	}
}

func TestChannelHealthHandler_NilService(t *testing.T) {
	rec := httptest.NewRecorder()
	channelHealthHandler(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/channels", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsMux_Metrics(t *testing.T) {
	rec := httptest.NewRecorder()
	metricsMux(&stubNotify{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

type fixedBreaker gobreaker.State

func (f fixedBreaker) BreakerState() gobreaker.State { return gobreaker.State(f) }

func TestBreakerReporter(t *testing.T) {
	st := breakerReporter(fixedBreaker(gobreaker.StateOpen))()
	assert.Equal(t, "ok", st.Status)
	assert.Equal(t, "open", st.Details["circuit_breaker"])
}
