// Command api is the Retrodex catalog API server. It hydrates an in-memory
// store from the latest snapshot under DATA_DIR and serves read-only
// catalog endpoints.
//
// Usage:
//
//	retrodex-api
//	API_PORT=8080 DATA_DIR=/var/lib/retrodex retrodex-api
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/sandgraal/retrodex-data/internal/api"
	"github.com/sandgraal/retrodex-data/internal/cache"
	"github.com/sandgraal/retrodex-data/internal/config"
	"github.com/sandgraal/retrodex-data/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Hydrate the catalog from the latest snapshot
	st := store.New()
	snapshotPath, err := st.LoadLatest(cfg.DataDir)
	if err != nil {
		logger.Error("Failed to load snapshot", "error", err)
		os.Exit(1)
	}
	if snapshotPath == "" {
		logger.Warn("No snapshots found, serving an empty catalog", "data_dir", cfg.DataDir)
	} else {
		logger.Info("Catalog loaded", "snapshot", snapshotPath, "entries", st.Len())
	}

	// Initialize cache
	appCache := cache.New(cfg.CacheEnabled)
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled)

	// Create router
	router := api.NewRouter(st, appCache, cfg)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting Retrodex Catalog API",
			"addr", addr,
			"environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
