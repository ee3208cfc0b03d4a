package auth

import "strings"

// PublicEndpoints are served without authentication.
//
//   - /: the movie form page (its own form posts carry ?token=)
//   - /favicon.ico, /status: browser chrome and the fetch status widget
//   - /health, /ready, /live: orchestration probes
//   - /metrics: Prometheus scraping
//   - /swagger/: API documentation
var PublicEndpoints = []string{
	"/",
	"/favicon.ico",
	"/status",
	"/health",
	"/ready",
	"/live",
	"/metrics",
	"/swagger/",
}

// IsPublicEndpoint reports whether path needs no authentication.
//
// Entries ending in "/" (other than the root) match as prefixes; the rest
// match exactly, with an optional trailing slash.
//
//	IsPublicEndpoint("/health")             // true
//	IsPublicEndpoint("/health/")            // true
//	IsPublicEndpoint("/healthcheck")        // false
//	IsPublicEndpoint("/swagger/index.html") // true
//	IsPublicEndpoint("/writeToNotion")      // false
func IsPublicEndpoint(path string) bool {
	for _, endpoint := range PublicEndpoints {
		if endpoint != "/" && strings.HasSuffix(endpoint, "/") {
			if strings.HasPrefix(path, endpoint) {
				return true
			}
			continue
		}
		if path == endpoint || (endpoint != "/" && path == endpoint+"/") {
			return true
		}
	}
	return false
}
