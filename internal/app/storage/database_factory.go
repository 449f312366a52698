package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sapo-cl/mercadopublico-monitor/database"
	"github.com/sapo-cl/mercadopublico-monitor/internal/config"
	"github.com/sapo-cl/mercadopublico-monitor/internal/db"
	"github.com/sapo-cl/mercadopublico-monitor/internal/store"
	pgstore "github.com/sapo-cl/mercadopublico-monitor/internal/store/database"
)

// DatabaseFactory creates the PostgreSQL-backed tender store
type DatabaseFactory struct {
	pool *pgxpool.Pool
	opts factoryOptions

	once    sync.Once
	store   store.TenderStore
	initErr error

	closeOnce sync.Once
}

var _ Factory = (*DatabaseFactory)(nil)

// NewDatabaseFactory connects to the configured database. When autoMigrate is
// set, pending migrations are applied before the factory is returned.
func NewDatabaseFactory(ctx context.Context, cfg *config.Config, opts ...Option) (*DatabaseFactory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Database == nil {
		return nil, fmt.Errorf("database configuration is required for database storage type")
	}

	slog.Info("Creating database-backed storage factory")

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}

	if cfg.Database.AutoMigrate {
		connString, err := cfg.Database.GetConnectionString()
		if err != nil {
			pool.Close()
			return nil, err
		}
		slog.Info("Applying database migrations")
		if err := database.MigrateUp(connString); err != nil {
			pool.Close()
			return nil, err
		}
	}

	return NewDatabaseFactoryWithPool(pool, opts...), nil
}

// NewDatabaseFactoryWithPool creates a factory over an existing pool. The
// factory takes ownership of the pool and closes it in Cleanup.
func NewDatabaseFactoryWithPool(pool *pgxpool.Pool, opts ...Option) *DatabaseFactory {
	f := &DatabaseFactory{pool: pool}
	for _, opt := range opts {
		opt(&f.opts)
	}
	return f
}

// CreateTenderStore returns the database-backed tender store
func (d *DatabaseFactory) CreateTenderStore(_ context.Context) (store.TenderStore, error) {
	d.once.Do(func() {
		slog.Debug("Creating database-backed tender store")
		storeOpts := []pgstore.Option{pgstore.WithConnectionPool(d.pool)}
		if d.opts.tracer != nil {
			storeOpts = append(storeOpts, pgstore.WithTracer(d.opts.tracer))
		}
		d.store, d.initErr = pgstore.New(storeOpts...)
	})
	return d.store, d.initErr
}

// Cleanup closes the connection pool
func (d *DatabaseFactory) Cleanup() {
	d.closeOnce.Do(func() {
		if d.pool != nil {
			slog.Info("Closing database connection pool")
			d.pool.Close()
		}
	})
}
