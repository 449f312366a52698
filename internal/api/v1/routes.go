// Package v1 provides the read-only tender endpoints under /api/v1.
package v1

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sapo-cl/mercadopublico-monitor/internal/api/common"
	"github.com/sapo-cl/mercadopublico-monitor/internal/service"
)

// Routes handles HTTP requests for the tender endpoints
type Routes struct {
	service service.TenderService
}

// NewRoutes creates a new Routes instance with the given service
func NewRoutes(svc service.TenderService) *Routes {
	return &Routes{service: svc}
}

// Router creates the router for the tender endpoints
func Router(svc service.TenderService) http.Handler {
	routes := NewRoutes(svc)

	r := chi.NewRouter()
	r.Get("/tenders", routes.listTenders)
	r.Get("/tenders/{code}", routes.getTender)

	return r
}

// listTenders handles GET /api/v1/tenders
//
// Query parameters: q (free text), region, sort (close_date|publication_date),
// limit and offset.
func (routes *Routes) listTenders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var opts []service.Option[service.ListTendersOptions]
	if q := query.Get("q"); q != "" {
		opts = append(opts, service.WithSearch(q))
	}
	if region := query.Get("region"); region != "" {
		opts = append(opts, service.WithRegion(region))
	}
	if sort := query.Get("sort"); sort != "" {
		opts = append(opts, service.WithSort(sort))
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			common.WriteErrorResponse(w, "Invalid limit parameter: must be an integer", http.StatusBadRequest)
			return
		}
		opts = append(opts, service.WithLimit(limit))
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			common.WriteErrorResponse(w, "Invalid offset parameter: must be an integer", http.StatusBadRequest)
			return
		}
		opts = append(opts, service.WithOffset(offset))
	}

	page, err := routes.service.ListTenders(r.Context(), opts...)
	if err != nil {
		if errors.Is(err, service.ErrInvalidOption) {
			common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
			return
		}
		slog.Error("Failed to list tenders", "error", err)
		common.WriteErrorResponse(w, "Failed to list tenders", http.StatusInternalServerError)
		return
	}

	common.WriteJSONResponse(w, page, http.StatusOK)
}

// getTender handles GET /api/v1/tenders/{code}
func (routes *Routes) getTender(w http.ResponseWriter, r *http.Request) {
	code, err := common.PathParam(r, "code")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	t, err := routes.service.GetTender(r.Context(), service.WithCode(code))
	switch {
	case err == nil:
		common.WriteJSONResponse(w, t, http.StatusOK)
	case errors.Is(err, service.ErrTenderNotFound):
		common.WriteErrorResponse(w, "Tender "+code+" not found", http.StatusNotFound)
	case errors.Is(err, service.ErrInvalidOption):
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("Failed to get tender", "code", code, "error", err)
		common.WriteErrorResponse(w, "Failed to get tender", http.StatusInternalServerError)
	}
}
