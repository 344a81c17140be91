package apify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-token", WithBaseURL(srv.URL))
}

func TestRunActorSync(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/acts/compass~crawler-google-places/run-sync-get-dataset-items", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var input map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&input))
		assert.Equal(t, "coffee Springfield", input["searchStringsArray"].([]any)[0])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[{"title":"Joe's Cafe"},{"title":"Bar Y"}]`))
	})

	input := map[string]any{"searchStringsArray": []string{"coffee Springfield"}}
	items, err := c.RunActorSync(context.Background(), "compass~crawler-google-places", input)
	require.NoError(t, err)
	require.Len(t, items, 2)

	var first struct {
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(items[0], &first))
	assert.Equal(t, "Joe's Cafe", first.Title)
}

func TestRunActorSync_APIError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"type":"rate-limit-exceeded"}}`))
	})

	_, err := c.RunActorSync(context.Background(), "some~actor", nil)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "rate-limit-exceeded")
}

func TestRunActorSync_MalformedBody(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"}`))
	})

	_, err := c.RunActorSync(context.Background(), "some~actor", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode dataset items")
}
