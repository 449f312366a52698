package app

import (
	"github.com/sapo-cl/mercadopublico-monitor/internal/service"
	"github.com/sapo-cl/mercadopublico-monitor/internal/store"
	"github.com/sapo-cl/mercadopublico-monitor/internal/sync/coordinator"
)

// AppComponents groups all application components
//
//nolint:revive // This name is fine
type AppComponents struct {
	// Coordinator schedules sync and cleanup cycles
	Coordinator coordinator.Coordinator

	// TenderService serves the read API
	TenderService service.TenderService

	// Store is shared by sync and the read API
	Store store.TenderStore
}
