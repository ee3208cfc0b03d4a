package csp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCSPBuilder_Build(t *testing.T) {
	tests := []struct {
		name    string
		builder *CSPBuilder
		want    string
	}{
		{
			name:    "empty",
			builder: NewCSPBuilder(),
			want:    "",
		},
		{
			name:    "single directive",
			builder: NewCSPBuilder().DefaultSrc("'self'"),
			want:    "default-src 'self'",
		},
		{
			name: "stable order regardless of call order",
			builder: NewCSPBuilder().
				ObjectSrc("'none'").
				ScriptSrc("'self'", "https://cdn.example.com").
				DefaultSrc("'self'"),
			want: "default-src 'self'; script-src 'self' https://cdn.example.com; object-src 'none'",
		},
		{
			name:    "empty sources omitted",
			builder: NewCSPBuilder().DefaultSrc("'self'").StyleSrc(),
			want:    "default-src 'self'",
		},
		{
			name:    "later call replaces sources",
			builder: NewCSPBuilder().ImgSrc("'self'").ImgSrc("data:"),
			want:    "img-src data:",
		},
		{
			name:    "report uri",
			builder: NewCSPBuilder().DefaultSrc("'self'").ReportUri("/csp-report"),
			want:    "default-src 'self'; report-uri /csp-report",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.builder.Build())
		})
	}
}

func TestCSPBuilder_HeaderName(t *testing.T) {
	b := NewCSPBuilder()
	assert.Equal(t, "Content-Security-Policy", b.HeaderName())

	b.ReportOnly(true)
	assert.Equal(t, "Content-Security-Policy-Report-Only", b.HeaderName())
}

func TestAppPolicy(t *testing.T) {
	assert.Equal(t,
		"default-src 'self' https://vercel.live https:; script-src 'self' https://vercel.live https:; connect-src 'self' https://vercel.live",
		AppPolicy().Build())
}

func TestSwaggerUIPolicy(t *testing.T) {
	policy := SwaggerUIPolicy().Build()

	assert.Contains(t, policy, "script-src 'self' 'unsafe-inline'")
	assert.Contains(t, policy, "frame-ancestors 'none'")
}
