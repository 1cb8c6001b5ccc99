// Package handler provides HTTP handlers for the catalog read API.
// Handlers read the in-memory store directly — no service layer. The store
// is hydrated from the latest snapshot at server start.
package handler

import (
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sandgraal/retrodex-data/internal/api/respond"
	"github.com/sandgraal/retrodex-data/internal/cache"
	"github.com/sandgraal/retrodex-data/internal/catalog"
	"github.com/sandgraal/retrodex-data/internal/config"
	"github.com/sandgraal/retrodex-data/internal/store"
)

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	store *store.Store
	cache *cache.Cache
	cfg   *config.Config
}

// New creates a Handler with shared dependencies.
func New(st *store.Store, c *cache.Cache, cfg *config.Config) *Handler {
	return &Handler{store: st, cache: c, cfg: cfg}
}

// Root serves API info at /.
func (h *Handler) Root(w http.ResponseWriter, _ *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "Retrodex Catalog API",
		"version": "1.0.0",
		"status":  "running",
		"entries": h.store.Len(),
	})
}

// HealthCheck returns basic health status.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"entries":   h.store.Len(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache reports cache statistics.
func (h *Handler) HealthCheckCache(w http.ResponseWriter, _ *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, h.cache.Stats())
}

// GetCatalog returns the full key → entry map.
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, "catalog:all", cache.TTLCatalog, func() (interface{}, error) {
		return h.store.Entries(), nil
	})
}

// GetEntry returns one catalog entry by deterministic key.
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	entry, ok := h.store.Get(key)
	if !ok {
		respond.WriteError(w, http.StatusNotFound, "not_found", "no catalog entry for key "+key)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, entry)
}

// searchMatch pairs an entry with its title similarity to the query.
type searchMatch struct {
	Entry catalog.Entry `json:"entry"`
	Score float64       `json:"score"`
}

// Search performs fuzzy title search over the catalog. An optional platform
// query parameter restricts matches to one platform segment.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if title == "" {
		respond.WriteError(w, http.StatusBadRequest, "missing_parameter", "title query parameter is required")
		return
	}
	platform := r.URL.Query().Get("platform")
	cacheKey := "search:" + title + ":" + platform

	h.serveCached(w, r, cacheKey, cache.TTLSearch, func() (interface{}, error) {
		return h.searchEntries(title, platform), nil
	})
}

func (h *Handler) searchEntries(title, platform string) []searchMatch {
	platformSegment := ""
	if platform != "" {
		platformSegment = catalog.KeySegment(platform)
	}

	matches := []searchMatch{}
	for _, entry := range h.store.Entries() {
		if platformSegment != "" && catalog.KeyPlatform(entry.Key) != platformSegment {
			continue
		}
		score := catalog.MatchScore(title, entry.Record.Title)
		if score >= h.cfg.FuzzyThreshold {
			matches = append(matches, searchMatch{Entry: entry, Score: score})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Entry.Key < matches[j].Entry.Key
	})
	return matches
}

// serveCached handles the cache lookup, ETag negotiation, and marshaling
// shared by all cacheable endpoints.
func (h *Handler) serveCached(w http.ResponseWriter, r *http.Request, key string, ttl time.Duration, load func() (interface{}, error)) {
	if data, etag, ok := h.cache.Get(key); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, ttl, true)
		return
	}

	value, err := load()
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	etag := h.cache.Set(key, data, ttl)
	if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
		respond.WriteNotModified(w, etag)
		return
	}
	respond.WriteJSON(w, data, etag, ttl, false)
}
