package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPublicEndpoint(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/", true},
		{"/favicon.ico", true},
		{"/status", true},
		{"/status/", true},
		{"/health", true},
		{"/ready", true},
		{"/live", true},
		{"/metrics", true},
		{"/swagger/", true},
		{"/swagger/index.html", true},
		{"/swagger", false},
		{"/healthcheck", false},
		{"/health/detail", false},
		{"/writeToNotion", false},
		{"/api/movie/write", false},
		{"/fetchNewMovies", false},
		{"/ws", false},
		{"//", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPublicEndpoint(tt.path))
		})
	}
}
