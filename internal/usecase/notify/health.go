package notify

import (
	"sync"
	"time"
)

const (
	circuitBreakerThreshold = 5               // 連続失敗回数
	circuitBreakerTimeout   = 5 * time.Minute // open の継続時間
)

// channelHealth is a per-channel failure counter. After
// circuitBreakerThreshold consecutive failures the channel is skipped for
// circuitBreakerTimeout.
type channelHealth struct {
	mu                  sync.Mutex
	consecutiveFailures int
	disabledUntil       time.Time
}

// blockedUntil returns the reopen time while the channel is disabled.
func (h *channelHealth) blockedUntil(now time.Time) (time.Time, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if now.Before(h.disabledUntil) {
		return h.disabledUntil, true
	}
	return time.Time{}, false
}

// record applies a send result and reports whether it tripped the breaker.
func (h *channelHealth) record(err error, now time.Time) (failures int, opened bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err == nil {
		h.consecutiveFailures = 0
		return 0, false
	}
	h.consecutiveFailures++
	if h.consecutiveFailures >= circuitBreakerThreshold {
		h.disabledUntil = now.Add(circuitBreakerTimeout)
		opened = true
	}
	return h.consecutiveFailures, opened
}

func (h *channelHealth) status(name string, enabled bool, now time.Time) ChannelHealthStatus {
	st := ChannelHealthStatus{Name: name, Enabled: enabled}
	if until, blocked := h.blockedUntil(now); blocked {
		st.CircuitBreakerOpen = true
		st.DisabledUntil = &until
	}
	return st
}
