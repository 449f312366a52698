// Package storage creates the tender store selected by configuration and owns
// the resources behind it.
package storage

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"

	"github.com/sapo-cl/mercadopublico-monitor/internal/config"
	"github.com/sapo-cl/mercadopublico-monitor/internal/store"
)

//go:generate mockgen -destination=mocks/mock_factory.go -package=mocks github.com/sapo-cl/mercadopublico-monitor/internal/app/storage Factory

// Factory creates the tender store and releases what it holds on shutdown
type Factory interface {
	// CreateTenderStore returns the store backing sync and the read API.
	// Repeated calls return the same store.
	CreateTenderStore(ctx context.Context) (store.TenderStore, error)

	// Cleanup releases resources held by the factory, such as the database
	// connection pool. Safe to call more than once.
	Cleanup()
}

// Option configures a factory
type Option func(*factoryOptions)

type factoryOptions struct {
	tracer trace.Tracer
}

// WithTracer sets the tracer used by the database store. Ignored by the
// memory factory.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *factoryOptions) {
		o.tracer = tracer
	}
}

// NewStorageFactory creates a factory for the configured storage type
func NewStorageFactory(ctx context.Context, cfg *config.Config, opts ...Option) (Factory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	switch cfg.GetStorageType() {
	case config.StorageTypeDatabase:
		return NewDatabaseFactory(ctx, cfg, opts...)
	case config.StorageTypeMemory:
		return NewMemoryFactory(), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.GetStorageType())
	}
}
