package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/sandgraal/retrodex-data/internal/catalog"
)

// Fetcher resolves sources to raw records. Safe for concurrent use; one
// rate limiter is kept per source name so repeated runs respect spacing.
type Fetcher struct {
	httpClient *http.Client
	logger     *slog.Logger
	limiters   map[string]*rate.Limiter
	mu         sync.Mutex
}

// NewFetcher creates a fetcher with the given request timeout.
func NewFetcher(timeout time.Duration, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		limiters:   make(map[string]*rate.Limiter),
	}
}

// FetchAll resolves every source concurrently and returns results in
// configured order, so the merge phase downstream stays reproducible.
func (f *Fetcher) FetchAll(ctx context.Context, sources []Source) []Result {
	results := make([]Result, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			results[i] = f.Fetch(ctx, src)
		}(i, src)
	}
	wg.Wait()

	return results
}

// Fetch resolves a single source. Inline records are returned directly;
// otherwise the URL is fetched and decoded. Any failure — network error,
// non-2xx status, malformed JSON, unrecognized payload shape — comes back
// as a Result with Err set and zero records.
func (f *Fetcher) Fetch(ctx context.Context, src Source) Result {
	if src.Records != nil {
		return Result{Source: src.Name, Records: src.Records}
	}
	if src.URL == "" {
		return Result{Source: src.Name, Err: fmt.Errorf("source %q has neither records nor url", src.Name)}
	}

	records, err := f.fetchURL(ctx, src)
	if err != nil {
		f.logger.Warn("Source fetch failed", "source", src.Name, "error", err)
		return Result{Source: src.Name, Err: err}
	}
	return Result{Source: src.Name, Records: records}
}

func (f *Fetcher) fetchURL(ctx context.Context, src Source) ([]catalog.RawRecord, error) {
	if limiter := f.limiterFor(src); limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request %s: %w", src.Name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("source %s returned %d: %s", src.Name, resp.StatusCode, truncate(body, 200))
	}

	return decodePayload(body)
}

// limiterFor returns the per-source limiter, creating it on first use.
// Sources without a rateLimit block are unthrottled.
func (f *Fetcher) limiterFor(src Source) *rate.Limiter {
	if src.RateLimit == nil || src.RateLimit.RetryAfterMs <= 0 {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if limiter, ok := f.limiters[src.Name]; ok {
		return limiter
	}
	interval := time.Duration(src.RateLimit.RetryAfterMs) * time.Millisecond
	limiter := rate.NewLimiter(rate.Every(interval), 1)
	f.limiters[src.Name] = limiter
	return limiter
}

// decodePayload resolves the duck-typed response shapes sources use — a
// bare array or a {"results": [...]} wrapper — into one record slice.
// Anything else is an unrecognized payload.
func decodePayload(body []byte) ([]catalog.RawRecord, error) {
	var records []catalog.RawRecord
	if err := json.Unmarshal(body, &records); err == nil {
		return records, nil
	}

	var wrapped struct {
		Results []catalog.RawRecord `json:"results"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Results != nil {
		return wrapped.Results, nil
	}

	return nil, fmt.Errorf("unrecognized payload shape: %s", truncate(body, 80))
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
