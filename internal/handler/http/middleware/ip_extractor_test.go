package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteAddrExtractor(t *testing.T) {
	tests := []struct {
		remoteAddr string
		want       string
		wantErr    bool
	}{
		{"192.168.1.1:54321", "192.168.1.1", false},
		{"[::1]:8080", "::1", false},
		{"[2001:db8::1]:443", "2001:db8::1", false},
		{"127.0.0.1", "127.0.0.1", false},
		{"[::1]", "::1", false},
		{"not-an-ip", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.remoteAddr, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr

			got, err := (&RemoteAddrExtractor{}).ExtractIP(req)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTrustedProxyExtractor(t *testing.T) {
	cfg := TrustedProxyConfig{
		Enabled:      true,
		AllowedCIDRs: []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")},
	}

	tests := []struct {
		name       string
		cfg        TrustedProxyConfig
		remoteAddr string
		xff        string
		xRealIP    string
		want       string
	}{
		{"trusted uses first XFF", cfg, "10.0.0.1:1234", "203.0.113.7, 10.0.0.2", "", "203.0.113.7"},
		{"trusted falls back to X-Real-IP", cfg, "10.0.0.1:1234", "", "203.0.113.8", "203.0.113.8"},
		{"trusted invalid XFF uses X-Real-IP", cfg, "10.0.0.1:1234", "garbage", "203.0.113.8", "203.0.113.8"},
		{"trusted no headers", cfg, "10.0.0.1:1234", "", "", "10.0.0.1"},
		{"untrusted ignores headers", cfg, "198.51.100.1:1234", "203.0.113.7", "203.0.113.8", "198.51.100.1"},
		{"disabled ignores headers", TrustedProxyConfig{}, "10.0.0.1:1234", "203.0.113.7", "", "10.0.0.1"},
		{"ipv6 client", cfg, "10.0.0.1:1234", "2001:db8::1", "", "2001:db8::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xRealIP != "" {
				req.Header.Set("X-Real-IP", tt.xRealIP)
			}

			got, err := NewTrustedProxyExtractor(tt.cfg).ExtractIP(req)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewIPExtractor(t *testing.T) {
	assert.IsType(t, &RemoteAddrExtractor{}, NewIPExtractor(nil))
	assert.IsType(t, &RemoteAddrExtractor{}, NewIPExtractor(&TrustedProxyConfig{}))
	assert.IsType(t, &TrustedProxyExtractor{}, NewIPExtractor(&TrustedProxyConfig{Enabled: true}))
}

func TestParsePrefixes(t *testing.T) {
	got, err := ParsePrefixes([]string{"192.168.1.1", " 10.0.0.0/8 ", "", "2001:db8::1", "::ffff:1.2.3.4"})

	require.NoError(t, err)
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("192.168.1.1/32"),
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("2001:db8::1/128"),
		netip.MustParsePrefix("1.2.3.4/32"),
	}, got)

	_, err = ParsePrefixes([]string{"300.1.1.1"})
	assert.Error(t, err)
}

func TestContainsIP(t *testing.T) {
	prefixes := []netip.Prefix{netip.MustParsePrefix("127.0.0.1/32"), netip.MustParsePrefix("10.0.0.0/8")}

	assert.True(t, ContainsIP(prefixes, "127.0.0.1"))
	assert.True(t, ContainsIP(prefixes, "10.20.30.40"))
	assert.True(t, ContainsIP(prefixes, "::ffff:127.0.0.1"))
	assert.False(t, ContainsIP(prefixes, "192.168.1.1"))
	assert.False(t, ContainsIP(prefixes, "nope"))
	assert.False(t, ContainsIP(nil, "127.0.0.1"))
}

func TestLoadTrustedProxyConfig(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		t.Setenv("TRUST_PROXY", "")

		cfg, err := LoadTrustedProxyConfig()

		require.NoError(t, err)
		assert.False(t, cfg.Enabled)
	})

	t.Run("enabled", func(t *testing.T) {
		t.Setenv("TRUST_PROXY", "true")
		t.Setenv("TRUSTED_PROXIES", "10.0.0.1, 172.16.0.0/12")

		cfg, err := LoadTrustedProxyConfig()

		require.NoError(t, err)
		assert.True(t, cfg.IsTrusted("10.0.0.1:443"))
		assert.True(t, cfg.IsTrusted("172.20.1.1:443"))
		assert.False(t, cfg.IsTrusted("10.0.0.2:443"))
	})

	t.Run("enabled without proxies", func(t *testing.T) {
		t.Setenv("TRUST_PROXY", "true")
		t.Setenv("TRUSTED_PROXIES", " ")

		_, err := LoadTrustedProxyConfig()

		assert.Error(t, err)
	})

	t.Run("invalid entry", func(t *testing.T) {
		t.Setenv("TRUST_PROXY", "true")
		t.Setenv("TRUSTED_PROXIES", "10.0.0.1,bogus")

		_, err := LoadTrustedProxyConfig()

		assert.ErrorContains(t, err, "bogus")
	})
}
