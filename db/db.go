package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS extraction_results (
    id                UUID PRIMARY KEY,
    locator           TEXT NOT NULL,
    file_type         TEXT NOT NULL,
    extraction_method TEXT NOT NULL,
    text              TEXT NOT NULL,
    confidence        DOUBLE PRECISION NOT NULL,
    error             TEXT NOT NULL DEFAULT '',
    created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type Options struct {
	MaxRetries int
	RetryDelay time.Duration
}

var DefaultOptions = Options{MaxRetries: 10, RetryDelay: 10 * time.Second}

// Connect opens a pool on dbURL, retrying while the database comes up, and
// makes sure the extraction_results table exists.
func Connect(ctx context.Context, dbURL string, opts Options, logger *slog.Logger) (*pgxpool.Pool, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}

	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse DATABASE_URL: %w", err)
	}

	var pool *pgxpool.Pool
	for i := 0; i < opts.MaxRetries; i++ {
		pool, err = pgxpool.NewWithConfig(ctx, config)
		if err == nil {
			err = pool.Ping(ctx)
			if err == nil {
				logger.Info("Successfully connected to the database")
				break
			}
			pool.Close()
		}

		logger.Warn("Failed to connect to the database",
			slog.Int("attempt", i+1),
			slog.Int("max_retries", opts.MaxRetries),
			slog.String("error", err.Error()))
		if i < opts.MaxRetries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(opts.RetryDelay):
			}
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database after %d attempts: %w", opts.MaxRetries, err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to create extraction_results table: %w", err)
	}

	return pool, nil
}
