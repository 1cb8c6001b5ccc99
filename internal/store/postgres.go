package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"

	"github.com/sandgraal/retrodex-data/internal/catalog"
	"github.com/sandgraal/retrodex-data/internal/db"
)

// MirrorResult tracks counts and errors from a Postgres mirror pass.
type MirrorResult struct {
	Errors   []string
	Upserted int
}

// Mirror upserts every catalog entry into Postgres after a run. The mirror
// is best-effort: per-entry failures are recorded and logged, never fatal —
// the JSON snapshot remains the durability contract.
func Mirror(ctx context.Context, pool *db.Pool, entries map[string]catalog.Entry, logger *slog.Logger) MirrorResult {
	if logger == nil {
		logger = slog.Default()
	}

	var result MirrorResult
	for _, entry := range sortedEntries(entries) {
		if err := upsertEntry(ctx, pool, entry); err != nil {
			msg := "upsert entry " + entry.Key + ": " + err.Error()
			result.Errors = append(result.Errors, msg)
			logger.Error("Catalog mirror upsert failed", "key", entry.Key, "error", err)
			continue
		}
		result.Upserted++
	}

	logger.Info("Catalog mirror done", "upserted", result.Upserted, "errors", len(result.Errors))
	return result
}

func upsertEntry(ctx context.Context, pool *db.Pool, entry catalog.Entry) error {
	record, err := json.Marshal(entry.Record)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, "upsert_catalog_entry",
		entry.Key, entry.Version,
		nilEmpty(entry.Record.Title), nilEmpty(entry.Record.Platform),
		entry.Record.ReleaseYear,
		entry.Record.Regions, entry.Record.Genres,
		nilEmpty(entry.Record.Source), record,
	)
	return err
}

func sortedEntries(entries map[string]catalog.Entry) []catalog.Entry {
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]catalog.Entry, 0, len(entries))
	for _, key := range keys {
		out = append(out, entries[key])
	}
	return out
}

// nilEmpty returns nil for empty strings (maps to SQL NULL).
func nilEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
