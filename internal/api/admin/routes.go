// Package admin provides the operator endpoints under /internal: manual sync
// and cleanup triggers and the tracked sync status.
package admin

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sapo-cl/mercadopublico-monitor/internal/api/common"
	"github.com/sapo-cl/mercadopublico-monitor/internal/sync/coordinator"
)

// TriggerResponse is the body of POST /internal/sync
type TriggerResponse struct {
	Status string `json:"status"`
}

// CleanupResponse is the body of POST /internal/cleanup
type CleanupResponse struct {
	Deleted int64 `json:"deleted"`
}

// Routes handles the operator endpoints
type Routes struct {
	coordinator coordinator.Coordinator
}

// Router creates the router for the operator endpoints
func Router(coord coordinator.Coordinator) http.Handler {
	routes := &Routes{coordinator: coord}

	r := chi.NewRouter()
	r.Post("/sync", routes.triggerSync)
	r.Get("/sync/status", routes.syncStatus)
	r.Post("/cleanup", routes.cleanup)

	return r
}

// triggerSync handles POST /internal/sync. The cycle runs in the background;
// a request that finds one running is rejected, never queued.
func (routes *Routes) triggerSync(w http.ResponseWriter, _ *http.Request) {
	result := routes.coordinator.TriggerAsync()

	code := http.StatusAccepted
	switch result {
	case coordinator.TriggerStarted:
		slog.Info("Manual sync triggered")
	case coordinator.TriggerAlreadyInProgress:
		code = http.StatusConflict
	case coordinator.TriggerShuttingDown:
		code = http.StatusServiceUnavailable
	}

	common.WriteJSONResponse(w, TriggerResponse{Status: result.String()}, code)
}

// syncStatus handles GET /internal/sync/status
func (routes *Routes) syncStatus(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSONResponse(w, routes.coordinator.Status(), http.StatusOK)
}

// cleanup handles POST /internal/cleanup
func (routes *Routes) cleanup(w http.ResponseWriter, r *http.Request) {
	deleted, err := routes.coordinator.CleanupExpired(r.Context())
	if err != nil {
		slog.Error("Manual cleanup failed", "error", err)
		common.WriteErrorResponse(w, "Cleanup failed", http.StatusInternalServerError)
		return
	}
	common.WriteJSONResponse(w, CleanupResponse{Deleted: deleted}, http.StatusOK)
}
