package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/mock/gomock"

	"github.com/sapo-cl/mercadopublico-monitor/internal/app/storage"
	storagemocks "github.com/sapo-cl/mercadopublico-monitor/internal/app/storage/mocks"
	"github.com/sapo-cl/mercadopublico-monitor/internal/config"
	mpmocks "github.com/sapo-cl/mercadopublico-monitor/internal/mercadopublico/mocks"
)

func TestWithAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		addr    string
		wantErr bool
	}{
		{name: "port only", addr: ":8080"},
		{name: "loopback", addr: "127.0.0.1:9090"},
		{name: "localhost", addr: "localhost:9090"},
		{name: "empty", addr: "", wantErr: true},
		{name: "missing port", addr: "127.0.0.1:", wantErr: true},
		{name: "no colon", addr: "8080", wantErr: true},
		{name: "port out of range", addr: ":70000", wantErr: true},
		{name: "hostname", addr: "example.com:80", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := &monitorAppConfig{}
			err := WithAddress(tt.addr)(cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.addr, cfg.address)
		})
	}
}

func TestWithRequestTimeout(t *testing.T) {
	t.Parallel()

	cfg := &monitorAppConfig{}
	assert.Error(t, WithRequestTimeout(0)(cfg))
	require.NoError(t, WithRequestTimeout(defaultReadTimeout)(cfg))
	assert.Equal(t, defaultReadTimeout, cfg.requestTimeout)
}

func TestBaseConfig(t *testing.T) {
	t.Parallel()

	_, err := baseConfig()
	require.EqualError(t, err, "config cannot be nil")

	_, err = baseConfig(WithConfig(memoryConfig(t)), WithAddress(""))
	require.Error(t, err)

	cfg, err := baseConfig(WithConfig(memoryConfig(t)))
	require.NoError(t, err)
	assert.Equal(t, defaultHTTPAddress, cfg.address)
	assert.Equal(t, defaultRequestTimeout, cfg.requestTimeout)
	assert.True(t, cfg.adminRoutes)
}

func TestNewMonitorApp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		opts       func(*gomock.Controller) []MonitorAppOptions
		path       string
		method     string
		wantStatus int
	}{
		{
			name:       "health",
			method:     http.MethodGet,
			path:       "/health",
			wantStatus: http.StatusOK,
		},
		{
			name:       "readiness against the memory store",
			method:     http.MethodGet,
			path:       "/readiness",
			wantStatus: http.StatusOK,
		},
		{
			name:       "empty tender list",
			method:     http.MethodGet,
			path:       "/api/v1/tenders",
			wantStatus: http.StatusOK,
		},
		{
			name:       "sync status",
			method:     http.MethodGet,
			path:       "/internal/sync/status",
			wantStatus: http.StatusOK,
		},
		{
			name: "admin routes disabled",
			opts: func(*gomock.Controller) []MonitorAppOptions {
				return []MonitorAppOptions{WithAdminRoutes(false)}
			},
			method:     http.MethodGet,
			path:       "/internal/sync/status",
			wantStatus: http.StatusNotFound,
		},
		{
			name: "metrics handler",
			opts: func(*gomock.Controller) []MonitorAppOptions {
				return []MonitorAppOptions{
					WithMeterProvider(metric.NewMeterProvider()),
					WithMetricsHandler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
						w.WriteHeader(http.StatusTeapot)
					})),
				}
			},
			method:     http.MethodGet,
			path:       "/metrics",
			wantStatus: http.StatusTeapot,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)

			opts := []MonitorAppOptions{
				WithConfig(memoryConfig(t)),
				WithAPIClient(mpmocks.NewMockClient(ctrl)),
				WithClock(fakeClock()),
			}
			if tt.opts != nil {
				opts = append(opts, tt.opts(ctrl)...)
			}

			app, err := NewMonitorApp(context.Background(), opts...)
			require.NoError(t, err)
			t.Cleanup(func() { _ = app.Stop(defaultShutdownTimeout) })

			require.NotNil(t, app.Components().Coordinator)
			require.NotNil(t, app.Components().TenderService)
			require.NotNil(t, app.Components().Store)

			rr := httptest.NewRecorder()
			app.GetHTTPServer().Handler.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestNewMonitorApp_StoreFailureCleansUp(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	factory := storagemocks.NewMockFactory(ctrl)
	factory.EXPECT().CreateTenderStore(gomock.Any()).Return(nil, errors.New("pool exhausted"))
	factory.EXPECT().Cleanup().Times(1)

	_, err := NewMonitorApp(context.Background(),
		WithConfig(memoryConfig(t)),
		WithStorageFactory(factory),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create tender store: pool exhausted")
}

func TestNewMonitorApp_InvalidTimezone(t *testing.T) {
	t.Parallel()

	cfg := memoryConfig(t)
	cfg.Sync.Timezone = "Mars/Olympus_Mons"

	_, err := NewMonitorApp(context.Background(),
		WithConfig(cfg),
		WithStorageFactory(storage.NewMemoryFactory()),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid sync timezone")
}

func TestNewMonitorApp_RequiresTicketForRealClient(t *testing.T) {
	t.Parallel()

	// a config that never went through LoadConfig has no ticket
	_, err := NewMonitorApp(context.Background(),
		WithConfig(&config.Config{Storage: config.StorageConfig{Type: config.StorageTypeMemory}}),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API ticket is required")
}
