// Package db provides a pgxpool-based connection pool with prepared statement
// registration and health checking, used by the optional Postgres catalog
// mirror.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, databaseURL string) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MaxConns = 5
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// registerPreparedStatements registers the statements the catalog mirror
// uses. Prepared statements eliminate parse overhead on every upsert.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Mirror: catalog entry upsert, guarded so the mirrored version
		// never moves backwards
		"upsert_catalog_entry": `
			INSERT INTO catalog_entries (
				key, version, title, platform, release_year,
				regions, genres, source, record
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			ON CONFLICT (key) DO UPDATE SET
				version = EXCLUDED.version,
				title = EXCLUDED.title,
				platform = EXCLUDED.platform,
				release_year = EXCLUDED.release_year,
				regions = EXCLUDED.regions,
				genres = EXCLUDED.genres,
				source = EXCLUDED.source,
				record = EXCLUDED.record,
				updated_at = NOW()
			WHERE catalog_entries.version <= EXCLUDED.version`,

		// Mirror: stats
		"count_catalog_entries": "SELECT COUNT(*) FROM catalog_entries",
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
