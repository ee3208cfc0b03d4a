package middleware

import (
	"net/http"
	"strings"

	"notioner/pkg/security/csp"
)

// CSPMiddlewareConfig holds configuration for CSP middleware.
type CSPMiddlewareConfig struct {
	// Enabled controls whether CSP headers are applied.
	Enabled bool

	// DefaultPolicy applies when no path policy matches.
	DefaultPolicy *csp.CSPBuilder

	// PathPolicies maps path prefixes to policies; the longest prefix wins.
	PathPolicies map[string]*csp.CSPBuilder

	// ReportOnly sends Content-Security-Policy-Report-Only instead of enforcing.
	ReportOnly bool
}

// CSPMiddleware applies Content-Security-Policy headers to HTTP responses.
type CSPMiddleware struct {
	config  CSPMiddlewareConfig
	headers map[string]cspHeader // policy values are rendered once
	def     cspHeader
}

type cspHeader struct {
	name  string
	value string
}

// NewCSPMiddleware creates a CSP middleware.
//
//	mw := NewCSPMiddleware(CSPMiddlewareConfig{
//	    Enabled:       true,
//	    DefaultPolicy: csp.AppPolicy(),
//	    PathPolicies:  map[string]*csp.CSPBuilder{"/swagger/": csp.SwaggerUIPolicy()},
//	})
//	handler = mw.Middleware()(handler)
func NewCSPMiddleware(config CSPMiddlewareConfig) *CSPMiddleware {
	m := &CSPMiddleware{
		config:  config,
		headers: make(map[string]cspHeader, len(config.PathPolicies)),
	}
	for prefix, policy := range config.PathPolicies {
		m.headers[prefix] = m.render(policy)
	}
	m.def = m.render(config.DefaultPolicy)
	return m
}

func (m *CSPMiddleware) render(policy *csp.CSPBuilder) cspHeader {
	if policy == nil {
		return cspHeader{}
	}
	policy.ReportOnly(m.config.ReportOnly)
	return cspHeader{name: policy.HeaderName(), value: policy.Build()}
}

// Middleware returns the handler wrapper.
func (m *CSPMiddleware) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.config.Enabled {
				if h := m.selectPolicy(r.URL.Path); h.value != "" {
					w.Header().Set(h.name, h.value)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// selectPolicy returns the header for the longest matching path prefix,
// falling back to the default policy.
func (m *CSPMiddleware) selectPolicy(path string) cspHeader {
	longest := ""
	matched, ok := cspHeader{}, false
	for prefix, h := range m.headers {
		if strings.HasPrefix(path, prefix) && len(prefix) > len(longest) {
			longest = prefix
			matched, ok = h, true
		}
	}
	if ok {
		return matched
	}
	return m.def
}
