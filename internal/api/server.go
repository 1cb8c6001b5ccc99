// Package api assembles the catalog read API: router, middleware, handlers.
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"

	"github.com/sandgraal/retrodex-data/internal/api/handler"
	"github.com/sandgraal/retrodex-data/internal/cache"
	"github.com/sandgraal/retrodex-data/internal/config"
	"github.com/sandgraal/retrodex-data/internal/store"
)

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(st *store.Store, appCache *cache.Cache, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "If-None-Match", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "ETag"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Handler dependencies ---
	h := handler.New(st, appCache, cfg)

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/cache", h.HealthCheckCache)
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog", h.GetCatalog)
		r.Get("/catalog/{key}", h.GetEntry)
		r.Get("/search", h.Search)
	})

	return r
}
