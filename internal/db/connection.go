// Package db contains code for connecting to the database.
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sapo-cl/mercadopublico-monitor/internal/config"
)

const (
	defaultConnectTimeout = 30 * time.Second
	initialRetryInterval  = 500 * time.Millisecond
	maxRetryInterval      = 5 * time.Second
)

// NewPool creates a pgx connection pool for cfg and waits until the database
// answers a ping. Ping failures are retried with exponential backoff until the
// configured connect timeout elapses, so the process can start alongside its
// database.
func NewPool(ctx context.Context, cfg *config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := buildPoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}

	timeout := cfg.GetConnectTimeout()
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	if err := ping(ctx, pool, timeout); err != nil {
		pool.Close()
		return nil, err
	}

	slog.Info("Database connection established",
		"user", cfg.User,
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.Database)

	return pool, nil
}

// buildPoolConfig parses the connection string of cfg and applies pool settings
func buildPoolConfig(cfg *config.DatabaseConfig) (*pgxpool.Config, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration is required")
	}

	connStr, err := cfg.GetConnectionString()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection string: %w", err)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database connection string: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	}
	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	}
	if lifetime := cfg.GetConnMaxLifetime(); lifetime > 0 {
		poolConfig.MaxConnLifetime = lifetime
	}

	return poolConfig, nil
}

func ping(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initialRetryInterval
	b.MaxInterval = maxRetryInterval

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		if err := pool.Ping(ctx); err != nil {
			slog.Warn("Database not reachable yet", "attempt", attempt, "error", err)
			return struct{}{}, err
		}
		return struct{}{}, nil
	},
		backoff.WithBackOff(b),
		backoff.WithMaxElapsedTime(timeout),
	)
	if err != nil {
		return fmt.Errorf("failed to ping database after %d attempts: %w", attempt, err)
	}
	return nil
}
