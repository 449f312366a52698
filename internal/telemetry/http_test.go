package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRouter(mw func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(mw)
	r.Get("/api/v1/tenders/{code}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/broken", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	return r
}

func TestMetricsMiddleware_NilProviderPassesThrough(t *testing.T) {
	t.Parallel()

	mw, err := MetricsMiddleware(nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	newRouter(mw).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tenders/1-2-LE24", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsMiddleware_RecordsRoutePattern(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	mw, err := MetricsMiddleware(mp)
	require.NoError(t, err)
	router := newRouter(mw)

	for _, path := range []string{"/api/v1/tenders/A", "/api/v1/tenders/B", "/missing"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	routes := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "mp_monitor_http_requests_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				route, _ := dp.Attributes.Value("route")
				routes[route.AsString()] += dp.Value
			}
		}
	}

	assert.Equal(t, int64(2), routes["/api/v1/tenders/{code}"])
	assert.NotContains(t, routes, "/api/v1/tenders/A")
	assert.Equal(t, int64(1), routes[unknownRoute]+routes["/*"])
}

func TestTracingMiddleware(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	router := newRouter(TracingMiddleware(tp))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/tenders/A", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/broken", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "GET /api/v1/tenders/{code}", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)

	assert.Equal(t, "GET /broken", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}

func TestTracingMiddleware_NilProvider(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	newRouter(TracingMiddleware(nil)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/broken", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
