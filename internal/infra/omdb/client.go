// Package omdb looks up movies on the Open Movie Database API.
package omdb

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"notioner/internal/domain/entity"
	"notioner/internal/infra/restclient"
	"notioner/internal/resilience/circuitbreaker"
	"notioner/internal/resilience/retry"
)

// DefaultBaseURL is the public OMDB endpoint.
const DefaultBaseURL = "https://www.omdbapi.com/"

// Rating is one entry of the OMDB Ratings list.
type Rating struct {
	Source string `json:"Source"`
	Value  string `json:"Value"`
}

// Response mirrors the OMDB movie payload. All values are strings, "N/A" when unknown.
type Response struct {
	Response   string   `json:"Response"`
	Error      string   `json:"Error,omitempty"`
	Title      string   `json:"Title"`
	Year       string   `json:"Year"`
	Rated      string   `json:"Rated"`
	Released   string   `json:"Released"`
	Runtime    string   `json:"Runtime"`
	Genre      string   `json:"Genre"`
	Director   string   `json:"Director"`
	Writer     string   `json:"Writer"`
	Actors     string   `json:"Actors"`
	Plot       string   `json:"Plot"`
	Language   string   `json:"Language"`
	Country    string   `json:"Country"`
	Awards     string   `json:"Awards"`
	Poster     string   `json:"Poster"`
	Ratings    []Rating `json:"Ratings"`
	Metascore  string   `json:"Metascore"`
	IMDbRating string   `json:"imdbRating"`
	IMDbVotes  string   `json:"imdbVotes"`
	IMDbID     string   `json:"imdbID"`
	Type       string   `json:"Type"`
	DVD        string   `json:"DVD"`
	BoxOffice  string   `json:"BoxOffice"`
	Production string   `json:"Production"`
	Website    string   `json:"Website"`
}

// LookupError is an OMDB "Response": "False" answer, e.g. "Movie not found!".
type LookupError struct {
	Message string
}

func (e *LookupError) Error() string {
	return "omdb: " + e.Message
}

// Unwrap lets errors.Is(err, entity.ErrMovieNotFound) match.
func (e *LookupError) Unwrap() error {
	return entity.ErrMovieNotFound
}

// Config configures the OMDB client.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client queries OMDB.
type Client struct {
	rc     *restclient.Client
	apiKey string
}

// NewClient creates an OMDB client.
func NewClient(cfg Config, opts ...restclient.Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		apiKey: cfg.APIKey,
		rc: restclient.New(restclient.Config{
			Name:              "omdb",
			BaseURL:           cfg.BaseURL,
			Timeout:           cfg.Timeout,
			RequestsPerSecond: 5,
			Burst:             5,
			Retry:             retry.MetadataAPIConfig(),
			Breaker:           circuitbreaker.OMDBAPIConfig(),
		}, opts...),
	}
}

// BreakerState returns the circuit breaker state of the OMDB upstream.
func (c *Client) BreakerState() gobreaker.State {
	return c.rc.BreakerState()
}

// ByTitle looks a movie up by title and optional year.
func (c *Client) ByTitle(ctx context.Context, title, year string) (*Response, error) {
	q := url.Values{"t": []string{title}}
	if year != "" {
		q.Set("y", year)
	}
	return c.lookup(ctx, "by_title", q)
}

// ByID looks a movie up by IMDb id.
func (c *Client) ByID(ctx context.Context, imdbID string) (*Response, error) {
	return c.lookup(ctx, "by_id", url.Values{"i": []string{imdbID}})
}

func (c *Client) lookup(ctx context.Context, op string, q url.Values) (*Response, error) {
	q.Set("apikey", c.apiKey)

	var resp Response
	if err := c.rc.Do(ctx, restclient.Request{
		Operation: op,
		Method:    http.MethodGet,
		Query:     q,
	}, &resp); err != nil {
		return nil, fmt.Errorf("omdb %s: %w", op, err)
	}
	if resp.Response == "False" {
		msg := resp.Error
		if msg == "" {
			msg = "unknown error"
		}
		return nil, &LookupError{Message: msg}
	}
	return &resp, nil
}
