package db

import (
	"database/sql"
	"fmt"
	"time"
)

// Open builds the shared pgx-backed pool. The workload is many short writes
// while a solicitation round collects offers, plus API reads; there are no
// long transactions, so a modest pool with idle reaping fits.
func Open(databaseURL string) (*sql.DB, error) {
	pool, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("db: open postgres pool: %w", err)
	}

	pool.SetMaxOpenConns(16)
	pool.SetMaxIdleConns(8)
	pool.SetConnMaxLifetime(30 * time.Minute)
	pool.SetConnMaxIdleTime(5 * time.Minute)

	if err := pool.Ping(); err != nil {
		return nil, fmt.Errorf("db: ping postgres: %w", err)
	}

	return pool, nil
}
