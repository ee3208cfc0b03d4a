package http

import (
	"net/http"

	"notioner/internal/handler/http/respond"
)

// Request limits enforced by InputValidation.
const (
	MaxAuthorizationHeaderBytes = 8 << 10
	MaxPathBytes                = 2 << 10
	MaxQueryBytes               = 8 << 10
	// DefaultMaxBodyBytes is the body limit of the API (1MB).
	DefaultMaxBodyBytes int64 = 1 << 20
)

// InputValidation rejects oversized headers, paths and query strings and
// caps the request body at maxBodyBytes (DefaultMaxBodyBytes when ≤0).
func InputValidation(maxBodyBytes int64) func(http.Handler) http.Handler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// JWT は通常 1KB 未満
			if len(r.Header.Get("Authorization")) > MaxAuthorizationHeaderBytes {
				respond.JSON(w, http.StatusBadRequest, map[string]string{"error": "authorization header too large"})
				return
			}
			if len(r.URL.Path) > MaxPathBytes || len(r.URL.RawQuery) > MaxQueryBytes {
				respond.JSON(w, http.StatusRequestURITooLong, map[string]string{"error": "URI too long"})
				return
			}
			if r.ContentLength > maxBodyBytes {
				respond.JSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request body too large"})
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
			next.ServeHTTP(w, r)
		})
	}
}
