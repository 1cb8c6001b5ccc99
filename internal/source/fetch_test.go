package source

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandgraal/retrodex-data/internal/catalog"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFetch_InlineRecords(t *testing.T) {
	f := NewFetcher(time.Second, testLogger())

	records := []catalog.RawRecord{{"title": "Tetris"}}
	result := f.Fetch(context.Background(), Source{Name: "inline", Records: records})

	require.NoError(t, result.Err)
	assert.Equal(t, "inline", result.Source)
	assert.Equal(t, records, result.Records)
}

func TestFetch_BareArrayBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[{"title":"Halo","platform":"Xbox"}]`))
	}))
	defer srv.Close()

	f := NewFetcher(time.Second, testLogger())
	result := f.Fetch(context.Background(), Source{Name: "api", URL: srv.URL})

	require.NoError(t, result.Err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "Halo", result.Records[0]["title"])
}

func TestFetch_WrappedResultsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"results":[{"title":"Tetris"},{"title":"Pong"}]}`))
	}))
	defer srv.Close()

	f := NewFetcher(time.Second, testLogger())
	result := f.Fetch(context.Background(), Source{Name: "api", URL: srv.URL})

	require.NoError(t, result.Err)
	assert.Len(t, result.Records, 2)
}

func TestFetch_FailureModesYieldZeroRecords(t *testing.T) {
	tests := []struct {
		handler http.HandlerFunc
		name    string
	}{
		{
			name: "non-2xx status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte(`{"results": [`))
			},
		},
		{
			name: "unrecognized shape",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte(`{"data": []}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			f := NewFetcher(time.Second, testLogger())
			result := f.Fetch(context.Background(), Source{Name: "bad", URL: srv.URL})

			assert.Error(t, result.Err)
			assert.Empty(t, result.Records)
		})
	}
}

func TestFetch_NetworkError(t *testing.T) {
	f := NewFetcher(time.Second, testLogger())
	result := f.Fetch(context.Background(), Source{Name: "gone", URL: "http://127.0.0.1:1/nope"})

	assert.Error(t, result.Err)
	assert.Empty(t, result.Records)
}

func TestFetch_NoURLNoRecords(t *testing.T) {
	f := NewFetcher(time.Second, testLogger())
	result := f.Fetch(context.Background(), Source{Name: "empty"})

	assert.Error(t, result.Err)
}

func TestFetchAll_OrderAndIsolation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[{"title":"Halo"}]`))
	}))
	defer srv.Close()

	f := NewFetcher(time.Second, testLogger())
	results := f.FetchAll(context.Background(), []Source{
		{Name: "good", URL: srv.URL},
		{Name: "bad", URL: "http://127.0.0.1:1/nope"},
		{Name: "inline", Records: []catalog.RawRecord{{"title": "Pong"}}},
	})

	require.Len(t, results, 3)
	assert.Equal(t, "good", results[0].Source)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, "bad", results[1].Source)
	assert.Error(t, results[1].Err, "one source's failure must not affect the others")
	assert.Equal(t, "inline", results[2].Source)
	assert.NoError(t, results[2].Err)
}

func TestDecodePayload_EmptyArray(t *testing.T) {
	records, err := decodePayload([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, records)

	records, err = decodePayload([]byte(`{"results":[]}`))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.json")
	content := `[{"name":"s1","records":[{"title":"Tetris"}]},{"name":"s2","url":"http://example.com","rateLimit":{"retryAfterMs":200}}]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	sources, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "s1", sources[0].Name)
	require.NotNil(t, sources[1].RateLimit)
	assert.Equal(t, 200, sources[1].RateLimit.RetryAfterMs)
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`[]`), 0o644))
	_, err = LoadFile(empty)
	assert.Error(t, err)

	unnamed := filepath.Join(dir, "unnamed.json")
	require.NoError(t, os.WriteFile(unnamed, []byte(`[{"url":"http://example.com"}]`), 0o644))
	_, err = LoadFile(unnamed)
	assert.Error(t, err)
}
