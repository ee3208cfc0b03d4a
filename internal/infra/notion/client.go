// Package notion is a small client for the Notion REST API covering the page,
// database query and user endpoints the movie sync needs, plus builders for
// page property values.
package notion

import (
	"context"
	"encoding/json"
	"errors"
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

const (
	// DefaultBaseURL is the public Notion API endpoint.
	DefaultBaseURL = "https://api.notion.com"
	// APIVersion is sent as Notion-Version on every request.
	APIVersion = "2022-06-28"
)

// Config configures the Notion client.
type Config struct {
	Token   string
	BaseURL string
	Timeout time.Duration
	// RequestsPerSecond defaults to 3, Notion's documented average limit.
	RequestsPerSecond float64
	Burst             int
}

// Client calls the Notion API.
type Client struct {
	rc *restclient.Client
}

// NewClient creates a Notion client.
func NewClient(cfg Config, opts ...restclient.Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 3
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}

	return &Client{
		rc: restclient.New(restclient.Config{
			Name:              "notion",
			BaseURL:           cfg.BaseURL,
			Timeout:           cfg.Timeout,
			RequestsPerSecond: cfg.RequestsPerSecond,
			Burst:             cfg.Burst,
			Header: http.Header{
				"Authorization":  []string{"Bearer " + cfg.Token},
				"Notion-Version": []string{APIVersion},
			},
			Retry:   retry.NotionAPIConfig(),
			Breaker: circuitbreaker.NotionAPIConfig(),
		}, opts...),
	}
}

// BreakerState returns the circuit breaker state of the Notion upstream.
func (c *Client) BreakerState() gobreaker.State {
	return c.rc.BreakerState()
}

// CreatePage creates a page.
func (c *Client) CreatePage(ctx context.Context, req PageRequest) (*Page, error) {
	var page Page
	if err := c.do(ctx, "create_page", http.MethodPost, "/v1/pages", req, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// UpdatePage patches the properties, cover and icon of a page.
func (c *Client) UpdatePage(ctx context.Context, pageID string, req PageRequest) (*Page, error) {
	var page Page
	if err := c.do(ctx, "update_page", http.MethodPatch, "/v1/pages/"+url.PathEscape(pageID), req, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// RetrievePage fetches a page.
func (c *Client) RetrievePage(ctx context.Context, pageID string) (*Page, error) {
	var page Page
	if err := c.do(ctx, "retrieve_page", http.MethodGet, "/v1/pages/"+url.PathEscape(pageID), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// QueryDatabase runs a database query.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, req QueryRequest) (*QueryResponse, error) {
	var resp QueryResponse
	path := "/v1/databases/" + url.PathEscape(databaseID) + "/query"
	if err := c.do(ctx, "query_database", http.MethodPost, path, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RetrievePageProperty fetches one property of a page. propertyID is the
// property id as Notion reports it (already URL-encoded, e.g. "vqvH" or "%3EGep").
func (c *Client) RetrievePageProperty(ctx context.Context, pageID, propertyID string) (*PropertyItem, error) {
	var item PropertyItem
	path := "/v1/pages/" + url.PathEscape(pageID) + "/properties/" + propertyID
	if err := c.do(ctx, "retrieve_page_property", http.MethodGet, path, nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Me returns the bot user behind the token. It doubles as a readiness probe.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, "users_me", http.MethodGet, "/v1/users/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	// ページ作成以外 (query, PATCH での更新) は何度送っても同じ結果になる
	idempotent := op != "create_page"
	err := c.rc.Do(ctx, restclient.Request{
		Operation:  op,
		Method:     method,
		Path:       path,
		Body:       body,
		Idempotent: idempotent,
	}, out)
	if err != nil {
		return translateError(err)
	}
	return nil
}

// APIError is an error response from the Notion API.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`

	cause error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion api error %d (%s): %s", e.Status, e.Code, e.Message)
}

// HTTPStatus returns the HTTP status reported by Notion.
func (e *APIError) HTTPStatus() int {
	return e.Status
}

// NotFound reports whether the error means the object does not exist or is not shared with the integration.
func (e *APIError) NotFound() bool {
	return e.Status == http.StatusNotFound || e.Code == "object_not_found"
}

// Unwrap exposes the transport error and, for missing objects, entity.ErrNotFound.
func (e *APIError) Unwrap() []error {
	errs := []error{e.cause}
	if e.NotFound() {
		errs = append(errs, entity.ErrNotFound)
	}
	return errs
}

// translateError turns a non-2xx response into *APIError. Rate limits stay
// *restclient.RateLimitError so callers can read RetryAfter.
func translateError(err error) error {
	var rl *restclient.RateLimitError
	if errors.As(err, &rl) {
		return err
	}
	var se *restclient.StatusError
	if !errors.As(err, &se) {
		return err
	}

	apiErr := &APIError{Status: se.StatusCode, cause: err}
	if jsonErr := json.Unmarshal(se.Body, apiErr); jsonErr != nil || apiErr.Message == "" {
		apiErr.Message = http.StatusText(se.StatusCode)
	}
	if apiErr.Status == 0 {
		apiErr.Status = se.StatusCode
	}
	return apiErr
}
