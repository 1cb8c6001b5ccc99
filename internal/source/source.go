// Package source defines ingestion source configuration and the fetcher
// that resolves each source to raw records. A source yields either inline
// records (deterministic tests, statically-curated sets) or the body of an
// HTTP endpoint. Every failure mode is local to its source: a bad source
// contributes zero records, never an aborted run.
package source

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sandgraal/retrodex-data/internal/catalog"
)

// RateLimit configures outbound request spacing for one source.
type RateLimit struct {
	RetryAfterMs int `json:"retryAfterMs"`
}

// Source describes one configured catalog source. Exactly one of URL or
// Records is expected to be meaningful; inline Records win when both are set.
type Source struct {
	RateLimit *RateLimit          `json:"rateLimit,omitempty"`
	Name      string              `json:"name"`
	URL       string              `json:"url,omitempty"`
	Records   []catalog.RawRecord `json:"records,omitempty"`
}

// Result is the typed outcome of resolving one source. Err is an inspectable
// value the orchestrator aggregates — fetch failures are data, not panics.
type Result struct {
	Err     error
	Source  string
	Records []catalog.RawRecord
}

// LoadFile reads a JSON array of source definitions from disk.
func LoadFile(path string) ([]Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	var sources []Source
	if err := json.Unmarshal(data, &sources); err != nil {
		return nil, fmt.Errorf("parse sources file %s: %w", path, err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("sources file %s defines no sources", path)
	}
	for i, src := range sources {
		if src.Name == "" {
			return nil, fmt.Errorf("source at index %d has no name", i)
		}
	}
	return sources, nil
}
