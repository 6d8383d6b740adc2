// Package store archives completed runs to Postgres: each run is one JSONB
// document holding the run report and every written technician ledger. The
// archive is the durable aggregated ledger; the tabular backend remains the
// working copy.
package store

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	pool *pgxpool.Pool
	once sync.Once
)

// InitDB opens the shared connection pool from DATABASE_URL. Safe to call
// more than once; only the first call connects. The archive is optional:
// callers treat a missing DATABASE_URL as "archiving disabled".
func InitDB(ctx context.Context) error {
	var err error
	once.Do(func() {
		dbURL := os.Getenv("DATABASE_URL")
		if dbURL == "" {
			err = fmt.Errorf("DATABASE_URL environment variable not set")
			return
		}

		config, parseErr := pgxpool.ParseConfig(dbURL)
		if parseErr != nil {
			err = fmt.Errorf("parse database config: %w", parseErr)
			return
		}

		pool, err = pgxpool.NewWithConfig(ctx, config)
		if err == nil {
			err = pool.Ping(ctx)
		}
	})
	return err
}

// Enabled reports whether the archive pool is available.
func Enabled() bool {
	return pool != nil
}

// GetPool returns the shared pool, nil before InitDB succeeds.
func GetPool() *pgxpool.Pool {
	return pool
}

// Close releases the pool.
func Close() {
	if pool != nil {
		pool.Close()
	}
}
