package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandgraal/retrodex-data/internal/cache"
	"github.com/sandgraal/retrodex-data/internal/catalog"
	"github.com/sandgraal/retrodex-data/internal/config"
	"github.com/sandgraal/retrodex-data/internal/store"
)

func testConfig() *config.Config {
	return &config.Config{
		FuzzyThreshold:    config.DefaultFuzzyThreshold,
		CORSAllowOrigins:  []string{"*"},
		RateLimitEnabled:  false,
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		CacheEnabled:      true,
	}
}

func seededStore() *store.Store {
	st := store.New()
	st.Reconcile("halo___xbox", catalog.Record{
		Title: "Halo", Platform: "Xbox",
		Regions: []string{"NA"}, Genres: []string{"FPS"}, Source: "source1",
	})
	st.Reconcile("tetris___game boy", catalog.Record{
		Title: "Tetris", Platform: "Game Boy",
		Regions: []string{}, Genres: []string{"Puzzle"}, Source: "source1",
	})
	return st
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	router := NewRouter(seededStore(), cache.New(true), testConfig())
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func TestCatalogEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/catalog")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("ETag"))

	var entries map[string]catalog.Entry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	assert.Len(t, entries, 2)
	assert.Equal(t, "Halo", entries["halo___xbox"].Record.Title)
}

func TestCatalogEndpoint_ETagRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	first, err := http.Get(srv.URL + "/api/v1/catalog")
	require.NoError(t, err)
	first.Body.Close()
	etag := first.Header.Get("ETag")
	require.NotEmpty(t, etag)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/catalog", nil)
	require.NoError(t, err)
	req.Header.Set("If-None-Match", etag)

	second, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	second.Body.Close()
	assert.Equal(t, http.StatusNotModified, second.StatusCode)
}

func TestEntryEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/catalog/halo___xbox")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var entry catalog.Entry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entry))
	assert.Equal(t, 1, entry.Version)
	assert.Equal(t, "Halo", entry.Record.Title)
}

func TestEntryEndpoint_NotFound(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/catalog/nope___nowhere")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSearchEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/search?title=Halo%3A%20Combat%20Evolved")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var matches []struct {
		Entry catalog.Entry `json:"entry"`
		Score float64       `json:"score"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&matches))
	require.NotEmpty(t, matches)
	assert.Equal(t, "halo___xbox", matches[0].Entry.Key)
	assert.Greater(t, matches[0].Score, 0.5)
}

func TestSearchEndpoint_RequiresTitle(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/search")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/", "/health", "/health/cache"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}
