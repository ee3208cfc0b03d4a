package config

import "time"

// CSPConfig toggles the Content-Security-Policy middleware.
type CSPConfig struct {
	Enabled    bool
	ReportOnly bool
}

// LoadCSPConfig reads CSP_ENABLED (default true) and CSP_REPORT_ONLY (default false).
func LoadCSPConfig() CSPConfig {
	return CSPConfig{
		Enabled:    GetEnvBool("CSP_ENABLED", true),
		ReportOnly: GetEnvBool("CSP_REPORT_ONLY", false),
	}
}

// WriteLimitConfig is the per-IP budget of the Notion write endpoints.
type WriteLimitConfig struct {
	Enabled bool
	Limit   int
	Window  time.Duration
	// Timeout bounds a single write request. Zero disables it.
	Timeout time.Duration
}

// LoadWriteLimitConfig reads WRITE_RATE_LIMIT_ENABLED, WRITE_RATE_LIMIT,
// WRITE_RATE_WINDOW and WRITE_TIMEOUT. Non-positive limits fall back to
// 10 requests per minute.
func LoadWriteLimitConfig() WriteLimitConfig {
	cfg := WriteLimitConfig{
		Enabled: GetEnvBool("WRITE_RATE_LIMIT_ENABLED", true),
		Limit:   GetEnvInt("WRITE_RATE_LIMIT", 10),
		Window:  GetEnvDuration("WRITE_RATE_WINDOW", time.Minute),
		Timeout: GetEnvDuration("WRITE_TIMEOUT", 60*time.Second),
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 10
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Timeout < 0 {
		cfg.Timeout = 0
	}
	return cfg
}
