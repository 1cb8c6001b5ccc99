// Command ingest is the Retrodex catalog ingestion CLI.
//
// Usage:
//
//	retrodex-ingest run --sources sources.json
//	retrodex-ingest run --sources sources.json --threshold 0.7 --fresh
//	retrodex-ingest snapshots list
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sandgraal/retrodex-data/internal/config"
	"github.com/sandgraal/retrodex-data/internal/db"
	"github.com/sandgraal/retrodex-data/internal/ingest"
	"github.com/sandgraal/retrodex-data/internal/source"
	"github.com/sandgraal/retrodex-data/internal/store"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "retrodex-ingest",
		Short: "Retrodex catalog ingestion CLI",
	}

	root.AddCommand(runCmd())
	root.AddCommand(snapshotsCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// run command
// --------------------------------------------------------------------------

func runCmd() *cobra.Command {
	var (
		sourcesPath string
		dataDir     string
		threshold   float64
		fresh       bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one ingestion pass across all configured sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if dataDir != "" {
				cfg.DataDir = dataDir
			}
			if threshold != 0 {
				cfg.FuzzyThreshold = threshold
			}

			sources, err := source.LoadFile(sourcesPath)
			if err != nil {
				return fmt.Errorf("load sources: %w", err)
			}

			st := store.New()
			if !fresh {
				path, err := st.LoadLatest(cfg.DataDir)
				if err != nil {
					return fmt.Errorf("hydrate store: %w", err)
				}
				if path != "" {
					logger.Info("Store hydrated from snapshot", "path", path, "entries", st.Len())
				}
			}

			start := time.Now()
			result, err := ingest.Run(ctx, st, ingest.Config{
				DataDir:        cfg.DataDir,
				Sources:        sources,
				FuzzyThreshold: cfg.FuzzyThreshold,
				FetchTimeout:   cfg.FetchTimeout,
			}, logger)
			if err != nil {
				return fmt.Errorf("run ingestion: %w", err)
			}

			logger.Info("Ingestion finished",
				"duration", time.Since(start).Round(time.Millisecond),
				"fetched", result.Metrics.Fetched,
				"normalized", result.Metrics.Normalized,
				"merged", result.Metrics.Merged,
				"entries", len(result.Records),
				"snapshot", result.SnapshotPath)

			// Optional Postgres mirror
			if cfg.DatabaseURL != "" {
				pool, err := db.New(ctx, cfg.DatabaseURL)
				if err != nil {
					return fmt.Errorf("connect to database: %w", err)
				}
				defer pool.Close()

				mirror := store.Mirror(ctx, pool, result.Records, logger)
				for _, e := range mirror.Errors {
					logger.Error("mirror error", "error", e)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sourcesPath, "sources", "sources.json", "Path to the sources JSON file")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Override DATA_DIR for snapshots")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Override the fuzzy match threshold")
	cmd.Flags().BoolVar(&fresh, "fresh", false, "Start from an empty store instead of the latest snapshot")
	return cmd
}

// --------------------------------------------------------------------------
// snapshots command
// --------------------------------------------------------------------------

func snapshotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "Inspect catalog snapshots",
	}
	cmd.AddCommand(snapshotsListCmd())
	return cmd
}

func snapshotsListCmd() *cobra.Command {
	var dataDir string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List snapshot files in run order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if dataDir != "" {
				cfg.DataDir = dataDir
			}

			paths, err := store.ListSnapshots(cfg.DataDir)
			if err != nil {
				return fmt.Errorf("list snapshots: %w", err)
			}
			if len(paths) == 0 {
				fmt.Println("no snapshots")
				return nil
			}
			for _, path := range paths {
				fmt.Println(path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Override DATA_DIR for snapshots")
	return cmd
}
