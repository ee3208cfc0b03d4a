// Package auth guards the HTTP API with HS256 JWTs and a trusted host/IP bypass.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"notioner/internal/handler/http/middleware"
	"notioner/internal/handler/http/requestid"
	"notioner/internal/handler/http/respond"
)

type ctxKey string

const ctxSubject ctxKey = "auth_subject"

// TrustedSubject is the subject recorded for requests let through by the
// host and IP allow-lists.
const TrustedSubject = "trusted-host"

// TokenCookie and TokenQueryParam name the non-header token sources.
const (
	TokenCookie     = "token"
	TokenQueryParam = "token"
)

// Response messages.
const (
	msgNoToken      = "Access denied. No token provided."
	msgTokenFormat  = "Invalid token format."
	msgInvalidToken = "Invalid token."
)

// DefaultAllowedHosts is used when ALLOWED_HOSTS is unset.
var DefaultAllowedHosts = []string{"localhost", "127.0.0.1"}

// Config configures the Authenticator.
type Config struct {
	Secret []byte

	// AllowedHosts and AllowedIPs together form the trusted bypass: a request
	// skips token checks only when its Host is listed AND its client IP falls
	// in AllowedIPs. An empty AllowedIPs disables the bypass.
	AllowedHosts []string
	AllowedIPs   []netip.Prefix

	IPExtractor middleware.IPExtractor
	Logger      *slog.Logger
}

// Authenticator is the auth middleware.
type Authenticator struct {
	secret       []byte
	allowedHosts map[string]struct{}
	allowedIPs   []netip.Prefix
	ipExtractor  middleware.IPExtractor
	logger       *slog.Logger
	now          func() time.Time
}

// New creates an Authenticator.
func New(cfg Config) *Authenticator {
	hosts := cfg.AllowedHosts
	if hosts == nil {
		hosts = DefaultAllowedHosts
	}
	a := &Authenticator{
		secret:       cfg.Secret,
		allowedHosts: make(map[string]struct{}, len(hosts)),
		allowedIPs:   cfg.AllowedIPs,
		ipExtractor:  cfg.IPExtractor,
		logger:       cfg.Logger,
		now:          time.Now,
	}
	for _, h := range hosts {
		a.allowedHosts[strings.ToLower(strings.TrimSpace(h))] = struct{}{}
	}
	if a.ipExtractor == nil {
		a.ipExtractor = &middleware.RemoteAddrExtractor{}
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// Middleware authenticates every non-public request.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IsPublicEndpoint(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()

		if a.trusted(r) {
			recordAuth(resultTrusted, start)
			next.ServeHTTP(w, r.WithContext(WithSubject(r.Context(), TrustedSubject)))
			return
		}

		token, err := extractToken(r)
		if err != nil {
			if errors.Is(err, ErrTokenFormat) {
				a.reject(w, r, http.StatusUnauthorized, msgTokenFormat, resultInvalidFormat, start)
				return
			}
			a.reject(w, r, http.StatusUnauthorized, msgNoToken, resultMissing, start)
			return
		}

		subject, err := ParseToken(token, a.secret, a.now())
		if err != nil {
			a.logger.Debug("token rejected",
				slog.String("request_id", requestid.FromContext(r.Context())),
				slog.Any("error", err))
			a.reject(w, r, http.StatusForbidden, msgInvalidToken, resultInvalid, start)
			return
		}

		recordAuth(resultSuccess, start)
		next.ServeHTTP(w, r.WithContext(WithSubject(r.Context(), subject)))
	})
}

func (a *Authenticator) reject(w http.ResponseWriter, r *http.Request, code int, msg, result string, start time.Time) {
	recordAuth(result, start)
	a.logger.Warn("authentication failed",
		slog.String("request_id", requestid.FromContext(r.Context())),
		slog.String("path", r.URL.Path),
		slog.String("reason", result))
	respond.JSON(w, code, map[string]string{"error": msg})
}

// trusted reports whether the request comes from an allow-listed host and IP.
func (a *Authenticator) trusted(r *http.Request) bool {
	if len(a.allowedIPs) == 0 {
		return false
	}
	if _, ok := a.allowedHosts[hostname(r.Host)]; !ok {
		return false
	}
	ip, err := a.ipExtractor.ExtractIP(r)
	if err != nil {
		return false
	}
	return middleware.ContainsIP(a.allowedIPs, ip)
}

func hostname(hostport string) string {
	if host, _, err := net.SplitHostPort(hostport); err == nil {
		hostport = host
	}
	return strings.ToLower(strings.Trim(hostport, "[]"))
}

// extractToken looks at the Authorization header, then the token cookie,
// then the token query parameter.
func extractToken(r *http.Request) (string, error) {
	if authz := r.Header.Get("Authorization"); authz != "" {
		const prefix = "Bearer "
		if !strings.HasPrefix(authz, prefix) || strings.TrimSpace(authz[len(prefix):]) == "" {
			return "", ErrTokenFormat
		}
		return strings.TrimSpace(authz[len(prefix):]), nil
	}
	if c, err := r.Cookie(TokenCookie); err == nil && c.Value != "" {
		return c.Value, nil
	}
	if q := strings.TrimSpace(r.URL.Query().Get(TokenQueryParam)); q != "" {
		q = strings.TrimSpace(strings.TrimPrefix(q, "Bearer "))
		if q != "" {
			return q, nil
		}
	}
	return "", ErrNoToken
}

// WithSubject stores the authenticated subject in ctx.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, ctxSubject, subject)
}

// SubjectFromContext returns the authenticated subject.
func SubjectFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(ctxSubject).(string)
	return s, ok && s != ""
}
