package storage

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sapo-cl/mercadopublico-monitor/internal/store"
	"github.com/sapo-cl/mercadopublico-monitor/internal/store/inmemory"
)

// MemoryFactory keeps tenders in process memory. Nothing survives a restart.
type MemoryFactory struct {
	once  sync.Once
	store store.TenderStore
}

var _ Factory = (*MemoryFactory)(nil)

// NewMemoryFactory creates a memory-backed storage factory
func NewMemoryFactory() *MemoryFactory {
	return &MemoryFactory{}
}

// CreateTenderStore returns the in-memory tender store
func (m *MemoryFactory) CreateTenderStore(_ context.Context) (store.TenderStore, error) {
	m.once.Do(func() {
		slog.Warn("Using in-memory tender store; data is lost on restart")
		m.store = inmemory.New()
	})
	return m.store, nil
}

// Cleanup is a no-op
func (*MemoryFactory) Cleanup() {}
