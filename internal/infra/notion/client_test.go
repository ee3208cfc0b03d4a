package notion

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notioner/internal/domain/entity"
	"notioner/internal/infra/restclient"
)

type recordedRequest struct {
	Method  string
	Path    string
	RawPath string
	Header  http.Header
	Body    map[string]any
}

func newTestServer(t *testing.T, status int, response string) (*Client, *[]recordedRequest) {
	t.Helper()
	var reqs []recordedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{Method: r.Method, Path: r.URL.Path, RawPath: r.URL.EscapedPath(), Header: r.Header.Clone()}
		if b, _ := io.ReadAll(r.Body); len(b) > 0 {
			_ = json.Unmarshal(b, &rec.Body)
		}
		reqs = append(reqs, rec)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Config{Token: "secret_test", BaseURL: srv.URL, Timeout: 2 * time.Second, RequestsPerSecond: 100, Burst: 100})
	return c, &reqs
}

func TestClient_CreatePage(t *testing.T) {
	c, reqs := newTestServer(t, http.StatusOK, `{"object":"page","id":"new-page","created_time":"2024-05-01T10:55:00.000Z"}`)

	page, err := c.CreatePage(context.Background(), PageRequest{
		Parent: DatabaseParent("db-1"),
		Cover:  External("https://img/b.jpg"),
		Properties: map[string]PropertyValue{
			"Title": TitleProperty("Heat"),
			"Year":  Number("1995", "vqvH"),
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "new-page", page.ID)
	assert.Equal(t, 2024, page.CreatedTime.Year())

	require.Len(t, *reqs, 1)
	req := (*reqs)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/v1/pages", req.Path)
	assert.Equal(t, "Bearer secret_test", req.Header.Get("Authorization"))
	assert.Equal(t, APIVersion, req.Header.Get("Notion-Version"))
	assert.Equal(t, map[string]any{"type": "database_id", "database_id": "db-1"}, req.Body["parent"])
	props := req.Body["properties"].(map[string]any)
	assert.Equal(t, 1995.0, props["Year"].(map[string]any)["number"])
}

func TestClient_CreatePage_ServerErrorSentOnce(t *testing.T) {
	c, reqs := newTestServer(t, http.StatusBadGateway, `{"object":"error","status":502,"code":"bad_gateway","message":"upstream"}`)

	_, err := c.CreatePage(context.Background(), PageRequest{Parent: DatabaseParent("db-1")})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Len(t, *reqs, 1, "create is not repeated after a 5xx")
}

func TestClient_QueryDatabase_RetriesServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","results":[],"has_more":false}`))
	}))
	t.Cleanup(srv.Close)
	c := NewClient(Config{Token: "secret_test", BaseURL: srv.URL, Timeout: 2 * time.Second, RequestsPerSecond: 100, Burst: 100})

	_, err := c.QueryDatabase(context.Background(), "db-1", QueryRequest{})

	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_UpdatePage(t *testing.T) {
	c, reqs := newTestServer(t, http.StatusOK, `{"object":"page","id":"p1"}`)

	_, err := c.UpdatePage(context.Background(), "p1", PageRequest{Icon: External("https://img/i.jpg")})
	require.NoError(t, err)

	req := (*reqs)[0]
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.Equal(t, "/v1/pages/p1", req.Path)
	assert.NotContains(t, req.Body, "parent")
}

func TestClient_QueryDatabase(t *testing.T) {
	c, reqs := newTestServer(t, http.StatusOK, `{"object":"list","results":[{"object":"page","id":"c1"}],"next_cursor":null,"has_more":false}`)

	filter := TitleEquals("Name", "The Dark Knight Collection")
	resp, err := c.QueryDatabase(context.Background(), "coll-db", QueryRequest{Filter: &filter})

	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "c1", resp.Results[0].ID)

	req := (*reqs)[0]
	assert.Equal(t, "/v1/databases/coll-db/query", req.Path)
	assert.Equal(t, map[string]any{
		"property": "Name",
		"title":    map[string]any{"equals": "The Dark Knight Collection"},
	}, req.Body["filter"])
}

func TestClient_RetrievePageProperty_KeepsEncodedID(t *testing.T) {
	c, reqs := newTestServer(t, http.StatusOK, `{"object":"property_item","id":"%3EGep","type":"rich_text","rich_text":{"type":"text","plain_text":"tt0113277"}}`)

	item, err := c.RetrievePageProperty(context.Background(), "p1", "%3EGep")
	require.NoError(t, err)
	assert.Equal(t, "tt0113277", item.FirstPlainText())

	assert.Equal(t, "/v1/pages/p1/properties/%3EGep", (*reqs)[0].RawPath)
}

func TestClient_Me(t *testing.T) {
	c, reqs := newTestServer(t, http.StatusOK, `{"object":"user","id":"bot-1","type":"bot","name":"Movies"}`)

	user, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "bot", user.Type)
	assert.Equal(t, "/v1/users/me", (*reqs)[0].Path)
}

func TestClient_NotFoundWrapsSentinel(t *testing.T) {
	c, _ := newTestServer(t, http.StatusNotFound,
		`{"object":"error","status":404,"code":"object_not_found","message":"Could not find page with ID: p1."}`)

	_, err := c.RetrievePage(context.Background(), "p1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrNotFound))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "object_not_found", apiErr.Code)
	assert.Equal(t, 404, apiErr.HTTPStatus())
	assert.Contains(t, apiErr.Error(), "Could not find page")

	var se *restclient.StatusError
	assert.ErrorAs(t, err, &se)
}

func TestClient_ValidationErrorIsNotNotFound(t *testing.T) {
	c, reqs := newTestServer(t, http.StatusBadRequest,
		`{"object":"error","status":400,"code":"validation_error","message":"body failed validation"}`)

	_, err := c.CreatePage(context.Background(), PageRequest{})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "validation_error", apiErr.Code)
	assert.False(t, errors.Is(err, entity.ErrNotFound))
	assert.Len(t, *reqs, 1, "client errors are not retried")
}

func TestClient_NonJSONErrorBody(t *testing.T) {
	c, _ := newTestServer(t, http.StatusUnauthorized, `unauthorized`)

	_, err := c.Me(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Unauthorized", apiErr.Message)
}
