package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"notioner/internal/handler/http/respond"
)

// RateLimiter is a per-client token bucket limiter. Each client IP gets its own
// rate.Limiter; idle entries are dropped by CleanupExpired.
type RateLimiter struct {
	limit       rate.Limit
	burst       int
	ipExtractor IPExtractor
	now         func() time.Time

	mu      sync.Mutex
	clients map[string]*clientLimiter
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows burst requests per client and refills at limit
// requests per window.
//
//	limiter := NewRateLimiter(10, time.Minute, &RemoteAddrExtractor{})
//	mux.Handle("/api/movie/write", limiter.Middleware(handler))
func NewRateLimiter(limit int, window time.Duration, ipExtractor IPExtractor) *RateLimiter {
	if ipExtractor == nil {
		ipExtractor = &RemoteAddrExtractor{}
	}
	return &RateLimiter{
		limit:       rate.Limit(float64(limit) / window.Seconds()),
		burst:       limit,
		ipExtractor: ipExtractor,
		now:         time.Now,
		clients:     make(map[string]*clientLimiter),
	}
}

// Middleware rejects requests over the limit with 429 and a Retry-After header.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, err := rl.ipExtractor.ExtractIP(r)
		if err != nil {
			slog.Warn("rate limiter: IP extraction failed, using RemoteAddr fallback",
				slog.String("error", err.Error()),
				slog.String("remote_addr", r.RemoteAddr))
			ip = r.RemoteAddr
		}

		if wait, ok := rl.allow(ip); !ok {
			slog.Warn("rate limit exceeded",
				slog.String("ip", ip),
				slog.String("path", r.URL.Path),
				slog.Duration("retry_after", wait))
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			respond.JSON(w, http.StatusTooManyRequests, map[string]string{"error": "Too Many Requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// allow consumes a token for ip. When none is available it returns the wait
// until the next token.
func (rl *RateLimiter) allow(ip string) (time.Duration, bool) {
	now := rl.now()

	rl.mu.Lock()
	c, ok := rl.clients[ip]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[ip] = c
	}
	c.lastSeen = now
	rl.mu.Unlock()

	if c.limiter.AllowN(now, 1) {
		return 0, true
	}
	missing := 1 - c.limiter.TokensAt(now)
	return time.Duration(missing / float64(rl.limit) * float64(time.Second)), false
}

// CleanupExpired drops clients not seen within idle.
func (rl *RateLimiter) CleanupExpired(idle time.Duration) int {
	cutoff := rl.now().Add(-idle)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	removed := 0
	for ip, c := range rl.clients {
		if c.lastSeen.Before(cutoff) {
			delete(rl.clients, ip)
			removed++
		}
	}
	slog.Debug("rate limiter: cleanup completed",
		slog.Int("active_ips", len(rl.clients)),
		slog.Int("removed", removed))
	return removed
}

// ActiveClients returns the number of tracked clients.
func (rl *RateLimiter) ActiveClients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}
