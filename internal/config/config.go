// Package config loads the process configuration of the API server and the
// worker from environment variables.
//
// Secrets are required and fail startup when missing. Everything else falls
// back to the production defaults.
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"time"

	"notioner/internal/handler/http/middleware"
	pkgcfg "notioner/internal/pkg/config"
	"notioner/internal/usecase/movie"
	"notioner/internal/usecase/status"
	"notioner/pkg/config"
)

// NotionConfig identifies the integration and the databases it writes to.
type NotionConfig struct {
	Token                string
	MoviesDatabaseID     string
	CollectionDatabaseID string
	MoviesRelationID     string
	SeriesRelationID     string
}

// MovieConfig returns the movie service configuration for these ids.
func (n NotionConfig) MovieConfig() movie.Config {
	cfg := movie.DefaultConfig()
	cfg.MoviesDatabaseID = n.MoviesDatabaseID
	cfg.CollectionDatabaseID = n.CollectionDatabaseID
	cfg.MoviesRelationID = n.MoviesRelationID
	cfg.SeriesRelationID = n.SeriesRelationID
	return cfg
}

// LoadNotionConfig reads NOTION_AUTH_TOKEN (required) and the database and
// relation ids.
func LoadNotionConfig() (NotionConfig, error) {
	values, err := config.RequireEnv("NOTION_AUTH_TOKEN")
	if err != nil {
		return NotionConfig{}, err
	}
	return NotionConfig{
		Token:                values[0],
		MoviesDatabaseID:     config.GetEnvString("NOTION_MOVIES_DB_ID", movie.DefaultMoviesDatabaseID),
		CollectionDatabaseID: config.GetEnvString("NOTION_COLLECTION_DB_ID", movie.DefaultCollectionDatabaseID),
		MoviesRelationID:     config.GetEnvString("NOTION_MOVIES_RELATION_ID", movie.DefaultMoviesRelationID),
		SeriesRelationID:     config.GetEnvString("NOTION_SERIES_RELATION_ID", movie.DefaultSeriesRelationID),
	}, nil
}

// StatusConfig locates the fetch status file and the fetch interval.
type StatusConfig struct {
	File     string
	Interval time.Duration
}

// LoadStatusConfig reads STATUS_FILE and FETCH_INTERVAL (1m..24h, default 5m).
func LoadStatusConfig() (StatusConfig, []string) {
	interval := pkgcfg.LoadDuration("FETCH_INTERVAL", status.DefaultInterval, func(d time.Duration) error {
		return pkgcfg.ValidateDuration(d, time.Minute, 24*time.Hour)
	})
	var warnings []string
	if interval.FallbackApplied {
		warnings = append(warnings, interval.Warning)
	}
	return StatusConfig{
		File:     config.GetEnvString("STATUS_FILE", ""),
		Interval: interval.Value,
	}, warnings
}

// APIConfig is the configuration of cmd/api.
type APIConfig struct {
	Port    int
	Version string

	Notion NotionConfig
	Status StatusConfig

	OMDBAPIKey      string
	OMDBBaseURL     string
	TMDBAccessToken string
	TMDBBaseURL     string

	JWTSecret    string
	AllowedIPs   []netip.Prefix
	AllowedHosts []string
	// AllowedOrigins are accepted by the websocket upgrade in addition to same-origin requests.
	AllowedOrigins []string

	SchemaPath      string
	ShutdownTimeout time.Duration

	// Warnings lists invalid optional values that were replaced by defaults.
	Warnings []string
}

// LoadAPIConfig reads and validates the API configuration. Missing secrets,
// malformed ALLOWED_IPS and invalid upstream URLs are errors.
func LoadAPIConfig() (*APIConfig, error) {
	notionCfg, err := LoadNotionConfig()
	if err != nil {
		return nil, err
	}
	secrets, err := config.RequireEnv("OMDB_API_KEY", "TMDB_ACCESS_TOKEN", "JWT_SECRET")
	if err != nil {
		return nil, err
	}

	statusCfg, warnings := LoadStatusConfig()
	port := pkgcfg.LoadInt("PORT", 8080, func(v int) error { return pkgcfg.ValidateIntRange(v, 1, 65535) })
	if port.FallbackApplied {
		warnings = append(warnings, port.Warning)
	}

	allowedIPs, err := middleware.ParsePrefixes(config.GetEnvStringList("ALLOWED_IPS", nil))
	if err != nil {
		return nil, fmt.Errorf("ALLOWED_IPS: %w", err)
	}

	cfg := &APIConfig{
		Port:            port.Value,
		Version:         config.GetEnvString("VERSION", "dev"),
		Notion:          notionCfg,
		Status:          statusCfg,
		OMDBAPIKey:      secrets[0],
		OMDBBaseURL:     config.GetEnvString("OMDB_API_URL", ""),
		TMDBAccessToken: secrets[1],
		TMDBBaseURL:     config.GetEnvString("TMDB_API_URL", ""),
		JWTSecret:       secrets[2],
		AllowedIPs:      allowedIPs,
		AllowedHosts:    config.GetEnvStringList("ALLOWED_HOSTS", nil),
		AllowedOrigins:  config.GetEnvStringList("WS_ALLOWED_ORIGINS", nil),
		SchemaPath:      config.GetEnvString("MOVIE_SCHEMA_PATH", ""),
		ShutdownTimeout: config.GetEnvDuration("SHUTDOWN_TIMEOUT", 5*time.Second),
		Warnings:        warnings,
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *APIConfig) validate() error {
	var errs []error
	if c.OMDBBaseURL != "" {
		if err := pkgcfg.ValidateBaseURL(c.OMDBBaseURL); err != nil {
			errs = append(errs, fmt.Errorf("OMDB_API_URL: %w", err))
		}
	}
	if c.TMDBBaseURL != "" {
		if err := pkgcfg.ValidateBaseURL(c.TMDBBaseURL); err != nil {
			errs = append(errs, fmt.Errorf("TMDB_API_URL: %w", err))
		}
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}
