// Package tmdb reads movie details from The Movie Database v3 API.
package tmdb

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"notioner/internal/domain/entity"
	"notioner/internal/infra/restclient"
	"notioner/internal/resilience/circuitbreaker"
	"notioner/internal/resilience/retry"
)

// DefaultBaseURL is the public TMDB API endpoint.
const DefaultBaseURL = "https://api.themoviedb.org"

// FindResult is one entry of the find endpoint's movie_results.
type FindResult struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	ReleaseDate  string `json:"release_date"`
	PosterPath   string `json:"poster_path"`
	BackdropPath string `json:"backdrop_path"`
}

// FindResponse is the response of GET /3/find/{external_id}.
type FindResponse struct {
	MovieResults []FindResult `json:"movie_results"`
}

// Collection is the collection a movie belongs to.
type Collection struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	PosterPath   string `json:"poster_path"`
	BackdropPath string `json:"backdrop_path"`
}

// Video is an entry of the appended videos list.
type Video struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Official bool   `json:"official"`
}

// Genre is a TMDB genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// MovieDetails is the response of GET /3/movie/{id}?append_to_response=videos.
type MovieDetails struct {
	ID                  int         `json:"id"`
	IMDbID              string      `json:"imdb_id"`
	Title               string      `json:"title"`
	OriginalTitle       string      `json:"original_title"`
	OriginalLanguage    string      `json:"original_language"`
	Overview            string      `json:"overview"`
	Tagline             string      `json:"tagline"`
	ReleaseDate         string      `json:"release_date"`
	Runtime             int         `json:"runtime"`
	Revenue             int64       `json:"revenue"`
	Budget              int64       `json:"budget"`
	Status              string      `json:"status"`
	PosterPath          string      `json:"poster_path"`
	BackdropPath        string      `json:"backdrop_path"`
	Genres              []Genre     `json:"genres"`
	BelongsToCollection *Collection `json:"belongs_to_collection"`
	Videos              struct {
		Results []Video `json:"results"`
	} `json:"videos"`
}

// TrailerKey picks the YouTube key of the best trailer: an official trailer,
// then any trailer, then any YouTube video. It returns "" when none exist.
func (m *MovieDetails) TrailerKey() string {
	if m == nil {
		return ""
	}
	var trailer, anyVideo string
	for _, v := range m.Videos.Results {
		if v.Site != "YouTube" || v.Key == "" {
			continue
		}
		if v.Type == "Trailer" {
			if v.Official {
				return v.Key
			}
			if trailer == "" {
				trailer = v.Key
			}
		}
		if anyVideo == "" {
			anyVideo = v.Key
		}
	}
	if trailer != "" {
		return trailer
	}
	return anyVideo
}

// Config configures the TMDB client.
type Config struct {
	AccessToken string
	BaseURL     string
	Timeout     time.Duration
}

// Client queries TMDB.
type Client struct {
	rc *restclient.Client
}

// NewClient creates a TMDB client authenticated with a v4 read access token.
func NewClient(cfg Config, opts ...restclient.Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		rc: restclient.New(restclient.Config{
			Name:              "tmdb",
			BaseURL:           cfg.BaseURL,
			Timeout:           cfg.Timeout,
			RequestsPerSecond: 20,
			Burst:             10,
			Header:            http.Header{"Authorization": []string{"Bearer " + cfg.AccessToken}},
			Retry:             retry.MetadataAPIConfig(),
			Breaker:           circuitbreaker.TMDBAPIConfig(),
		}, opts...),
	}
}

// BreakerState returns the circuit breaker state of the TMDB upstream.
func (c *Client) BreakerState() gobreaker.State {
	return c.rc.BreakerState()
}

// FindByIMDbID returns the first movie matching an IMDb id, or entity.ErrNotFound.
func (c *Client) FindByIMDbID(ctx context.Context, imdbID string) (*FindResult, error) {
	var resp FindResponse
	err := c.rc.Do(ctx, restclient.Request{
		Operation: "find",
		Method:    http.MethodGet,
		Path:      "/3/find/" + url.PathEscape(imdbID),
		Query:     url.Values{"external_source": []string{"imdb_id"}},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("tmdb find %s: %w", imdbID, err)
	}
	if len(resp.MovieResults) == 0 {
		return nil, fmt.Errorf("tmdb find %s: %w", imdbID, entity.ErrNotFound)
	}
	return &resp.MovieResults[0], nil
}

// MovieDetails returns a movie with its videos appended.
func (c *Client) MovieDetails(ctx context.Context, id int) (*MovieDetails, error) {
	var details MovieDetails
	err := c.rc.Do(ctx, restclient.Request{
		Operation: "movie_details",
		Method:    http.MethodGet,
		Path:      "/3/movie/" + strconv.Itoa(id),
		Query:     url.Values{"append_to_response": []string{"videos"}},
	}, &details)
	if err != nil {
		return nil, fmt.Errorf("tmdb movie %d: %w", id, err)
	}
	return &details, nil
}

// MovieByIMDbID resolves an IMDb id and fetches the movie details.
func (c *Client) MovieByIMDbID(ctx context.Context, imdbID string) (*MovieDetails, error) {
	found, err := c.FindByIMDbID(ctx, imdbID)
	if err != nil {
		return nil, err
	}
	return c.MovieDetails(ctx, found.ID)
}
