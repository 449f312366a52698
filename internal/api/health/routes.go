// Package health provides the liveness, readiness and version endpoints.
package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sapo-cl/mercadopublico-monitor/internal/api/common"
	"github.com/sapo-cl/mercadopublico-monitor/internal/versions"
)

// ReadinessChecker reports whether the backing store can serve requests
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// StatusResponse is the body of the health and readiness endpoints
type StatusResponse struct {
	Status string `json:"status"`
}

// Router creates a router for the health check endpoints
func Router(checker ReadinessChecker) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", healthHandler)
	r.Get("/readiness", readinessHandler(checker))
	r.Get("/version", versionHandler)

	return r
}

// healthHandler handles GET /health
func healthHandler(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSONResponse(w, StatusResponse{Status: "healthy"}, http.StatusOK)
}

// readinessHandler handles GET /readiness
func readinessHandler(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := checker.CheckReadiness(r.Context()); err != nil {
			slog.Warn("Readiness check failed", "error", err)
			common.WriteErrorResponse(w, "not ready: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		common.WriteJSONResponse(w, StatusResponse{Status: "ready"}, http.StatusOK)
	}
}

// versionHandler handles GET /version
func versionHandler(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSONResponse(w, versions.GetVersionInfo(), http.StatusOK)
}
