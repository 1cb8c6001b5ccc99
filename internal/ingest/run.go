// Package ingest orchestrates one catalog run: fetch every configured
// source, normalize and key its records, link near-duplicate titles, merge
// groups into the store, and write one snapshot. Sources fetch concurrently
// but merge strictly in configured order, so version numbers are
// reproducible across runs given identical inputs.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sandgraal/retrodex-data/internal/catalog"
	"github.com/sandgraal/retrodex-data/internal/config"
	"github.com/sandgraal/retrodex-data/internal/source"
	"github.com/sandgraal/retrodex-data/internal/store"
)

// Config describes one ingestion run.
type Config struct {
	DataDir        string          // snapshot root; required
	Sources        []source.Source // processed in order; required, non-empty
	FuzzyThreshold float64         // 0 means config.DefaultFuzzyThreshold
	FetchTimeout   time.Duration   // 0 means the fetcher default
}

// Metrics aggregates counts for one run. Merged counts collapsing
// operations — extra records folded into an already-existing group — not
// the number of resulting entries.
type Metrics struct {
	Fetched    int `json:"fetched"`
	Normalized int `json:"normalized"`
	Merged     int `json:"merged"`
}

// Result is the outcome of a successful run.
type Result struct {
	Records      map[string]catalog.Entry
	SnapshotPath string
	Metrics      Metrics
}

// group is a batch of records sharing one identity within a single source.
type group struct {
	key     string
	title   string
	records []catalog.Record
}

// Run executes one ingestion run against the shared store. Per-source fetch
// failures contribute zero records and never abort the run; having no
// sources at all is a configuration error and does. The snapshot is written
// before Run returns — callers may rely on it existing.
func Run(ctx context.Context, st *store.Store, cfg Config, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Sources) == 0 {
		return nil, fmt.Errorf("no sources configured")
	}
	threshold := cfg.FuzzyThreshold
	if threshold == 0 {
		threshold = config.DefaultFuzzyThreshold
	}

	start := time.Now()
	fetcher := source.NewFetcher(cfg.FetchTimeout, logger)
	results := fetcher.FetchAll(ctx, cfg.Sources)

	var metrics Metrics
	for _, res := range results {
		if res.Err != nil {
			logger.Warn("Source contributed zero records", "source", res.Source, "error", res.Err)
			continue
		}
		metrics.Fetched += len(res.Records)
		mergeSource(st, res, threshold, &metrics, logger)
	}

	snapshotPath, err := st.WriteSnapshot(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("write snapshot: %w", err)
	}

	logger.Info("Ingestion run complete",
		"sources", len(cfg.Sources),
		"fetched", metrics.Fetched,
		"normalized", metrics.Normalized,
		"merged", metrics.Merged,
		"entries", st.Len(),
		"snapshot", snapshotPath,
		"duration", time.Since(start).Round(time.Millisecond))

	return &Result{
		Records:      st.Entries(),
		Metrics:      metrics,
		SnapshotPath: snapshotPath,
	}, nil
}

// mergeSource runs the normalize → key → group → fuzzy-link → reconcile
// pipeline for one source's records, mutating the shared store.
func mergeSource(st *store.Store, res source.Result, threshold float64, metrics *Metrics, logger *slog.Logger) {
	groups := groupRecords(res, metrics)
	groups = linkGroups(groups, threshold, metrics)

	for _, g := range groups {
		targetKey, existing, found := resolveTarget(st, g, threshold)

		var merged catalog.Record
		if found {
			// Folding into an already-existing entry collapses every
			// record in the group
			merged = catalog.Merge(append([]catalog.Record{existing.Record}, g.records...)...)
			metrics.Merged += len(g.records)
		} else {
			merged = catalog.Merge(g.records...)
		}

		entry, changed := st.Reconcile(targetKey, merged)
		if changed {
			logger.Debug("Catalog entry updated",
				"key", entry.Key, "version", entry.Version, "source", res.Source)
		}
	}
}

// groupRecords normalizes a source's raw records and groups them by exact
// deterministic key, preserving encounter order. Every record beyond the
// first in a group counts as one collapsing operation.
func groupRecords(res source.Result, metrics *Metrics) []*group {
	var groups []*group
	byKey := map[string]*group{}

	for _, raw := range res.Records {
		rec := catalog.Normalize(raw, res.Source)
		metrics.Normalized++

		key := catalog.BuildKey(rec.Title, rec.Platform)
		if g, ok := byKey[key]; ok {
			g.records = append(g.records, rec)
			metrics.Merged++
			continue
		}
		g := &group{key: key, title: rec.Title, records: []catalog.Record{rec}}
		byKey[key] = g
		groups = append(groups, g)
	}
	return groups
}

// linkGroups folds fuzzy-linked groups within one source batch. Groups with
// identical keys never reach the matcher; candidates must share a platform
// segment and clear the threshold on title similarity.
func linkGroups(groups []*group, threshold float64, metrics *Metrics) []*group {
	var linked []*group
	for _, g := range groups {
		target := findLinked(linked, g, threshold)
		if target == nil {
			linked = append(linked, g)
			continue
		}
		target.records = append(target.records, g.records...)
		metrics.Merged += len(g.records)
	}
	return linked
}

func findLinked(candidates []*group, g *group, threshold float64) *group {
	platform := catalog.KeyPlatform(g.key)
	var best *group
	bestScore := 0.0

	for _, candidate := range candidates {
		if catalog.KeyPlatform(candidate.key) != platform {
			continue
		}
		score := catalog.MatchScore(candidate.title, g.title)
		if score >= threshold && score > bestScore {
			best = candidate
			bestScore = score
		}
	}
	return best
}

// resolveTarget decides which store entry a group folds into: its exact key
// when present, else the best fuzzy-linked entry on the same platform, else
// its own key as a fresh insert.
func resolveTarget(st *store.Store, g *group, threshold float64) (string, catalog.Entry, bool) {
	if existing, ok := st.Get(g.key); ok {
		return g.key, existing, true
	}

	platform := catalog.KeyPlatform(g.key)
	bestKey := ""
	bestScore := 0.0

	// Sorted key iteration keeps tie-breaking deterministic
	for _, key := range st.Keys() {
		if catalog.KeyPlatform(key) != platform {
			continue
		}
		existing, _ := st.Get(key)
		score := catalog.MatchScore(existing.Record.Title, g.title)
		if score >= threshold && score > bestScore {
			bestKey = key
			bestScore = score
		}
	}

	if bestKey != "" {
		existing, _ := st.Get(bestKey)
		return bestKey, existing, true
	}
	return g.key, catalog.Entry{}, false
}
