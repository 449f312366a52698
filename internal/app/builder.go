package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"k8s.io/utils/clock"

	"github.com/sapo-cl/mercadopublico-monitor/internal/api"
	"github.com/sapo-cl/mercadopublico-monitor/internal/app/storage"
	"github.com/sapo-cl/mercadopublico-monitor/internal/config"
	"github.com/sapo-cl/mercadopublico-monitor/internal/httpclient"
	"github.com/sapo-cl/mercadopublico-monitor/internal/mercadopublico"
	"github.com/sapo-cl/mercadopublico-monitor/internal/service"
	"github.com/sapo-cl/mercadopublico-monitor/internal/status"
	"github.com/sapo-cl/mercadopublico-monitor/internal/store"
	pgstore "github.com/sapo-cl/mercadopublico-monitor/internal/store/database"
	pkgsync "github.com/sapo-cl/mercadopublico-monitor/internal/sync"
	"github.com/sapo-cl/mercadopublico-monitor/internal/sync/coordinator"
	"github.com/sapo-cl/mercadopublico-monitor/internal/telemetry"
)

const (
	defaultHTTPAddress     = ":8080"
	defaultRequestTimeout  = 10 * time.Second
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 15 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 30 * time.Second

	syncTracerName        = "github.com/sapo-cl/mercadopublico-monitor/sync"
	coordinatorTracerName = "github.com/sapo-cl/mercadopublico-monitor/sync/coordinator"
)

// MonitorAppOptions is a function that configures the monitor app builder
type MonitorAppOptions func(*monitorAppConfig) error

// monitorAppConfig collects the settings and overrides used by NewMonitorApp.
// Overrides exist mainly so tests can inject fakes.
type monitorAppConfig struct {
	config *config.Config

	storageFactory storage.Factory
	apiClient      mercadopublico.Client
	syncManager    pkgsync.Manager
	clock          clock.Clock

	address        string
	middlewares    []func(http.Handler) http.Handler
	requestTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration
	adminRoutes    bool

	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	metricsHandler http.Handler
}

func baseConfig(opts ...MonitorAppOptions) (*monitorAppConfig, error) {
	cfg := &monitorAppConfig{
		address:        defaultHTTPAddress,
		requestTimeout: defaultRequestTimeout,
		readTimeout:    defaultReadTimeout,
		writeTimeout:   defaultWriteTimeout,
		idleTimeout:    defaultIdleTimeout,
		adminRoutes:    true,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	return cfg, nil
}

// NewMonitorApp builds the store, the sync pipeline and the HTTP server
func NewMonitorApp(ctx context.Context, opts ...MonitorAppOptions) (*MonitorApp, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}

	if cfg.tracerProvider == nil {
		cfg.tracerProvider = noop.NewTracerProvider()
	}

	if cfg.storageFactory == nil {
		cfg.storageFactory, err = storage.NewStorageFactory(ctx, cfg.config,
			storage.WithTracer(cfg.tracerProvider.Tracer(pgstore.TracerName)))
		if err != nil {
			return nil, fmt.Errorf("failed to create storage factory: %w", err)
		}
	}

	cleanupNeeded := true
	defer func() {
		if cleanupNeeded {
			cfg.storageFactory.Cleanup()
		}
	}()

	tenderStore, err := cfg.storageFactory.CreateTenderStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create tender store: %w", err)
	}

	syncCoordinator, err := buildSyncComponents(cfg, tenderStore)
	if err != nil {
		return nil, fmt.Errorf("failed to build sync components: %w", err)
	}

	tenderService := service.New(tenderStore,
		service.WithTracer(cfg.tracerProvider.Tracer(service.ServiceTracerName)))

	httpServer, err := buildHTTPServer(cfg, tenderService, syncCoordinator)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP server: %w", err)
	}

	cleanupNeeded = false
	return &MonitorApp{
		config: cfg.config,
		components: &AppComponents{
			Coordinator:   syncCoordinator,
			TenderService: tenderService,
			Store:         tenderStore,
		},
		httpServer:     httpServer,
		storageFactory: cfg.storageFactory,
		stopped:        make(chan struct{}),
	}, nil
}

// WithConfig sets the configuration
func WithConfig(c *config.Config) MonitorAppOptions {
	return func(cfg *monitorAppConfig) error {
		cfg.config = c
		return nil
	}
}

// WithAddress sets the HTTP server address
func WithAddress(addr string) MonitorAppOptions {
	return func(cfg *monitorAppConfig) error {
		if addr == "" {
			return fmt.Errorf("address cannot be empty")
		}

		host, port, found := strings.Cut(addr, ":")
		if !found || port == "" {
			return fmt.Errorf("address is not a valid port: %s", addr)
		}
		switch host {
		case "":
			host = "0.0.0.0"
		case "localhost":
			host = "127.0.0.1"
		}

		if _, err := netip.ParseAddrPort(host + ":" + port); err != nil {
			return fmt.Errorf("address is not a valid port: %w", err)
		}

		cfg.address = addr
		return nil
	}
}

// WithMiddlewares replaces the default HTTP middlewares
func WithMiddlewares(mw ...func(http.Handler) http.Handler) MonitorAppOptions {
	return func(cfg *monitorAppConfig) error {
		cfg.middlewares = mw
		return nil
	}
}

// WithRequestTimeout sets the per-request timeout of the default middlewares
func WithRequestTimeout(d time.Duration) MonitorAppOptions {
	return func(cfg *monitorAppConfig) error {
		if d <= 0 {
			return fmt.Errorf("request timeout must be positive, got %s", d)
		}
		cfg.requestTimeout = d
		return nil
	}
}

// WithAdminRoutes controls whether the /internal operator endpoints are served
func WithAdminRoutes(enabled bool) MonitorAppOptions {
	return func(cfg *monitorAppConfig) error {
		cfg.adminRoutes = enabled
		return nil
	}
}

// WithStorageFactory allows injecting a custom storage factory (for testing)
func WithStorageFactory(f storage.Factory) MonitorAppOptions {
	return func(cfg *monitorAppConfig) error {
		cfg.storageFactory = f
		return nil
	}
}

// WithAPIClient allows injecting a remote API client (for testing)
func WithAPIClient(c mercadopublico.Client) MonitorAppOptions {
	return func(cfg *monitorAppConfig) error {
		cfg.apiClient = c
		return nil
	}
}

// WithSyncManager allows injecting a custom sync manager (for testing)
func WithSyncManager(sm pkgsync.Manager) MonitorAppOptions {
	return func(cfg *monitorAppConfig) error {
		cfg.syncManager = sm
		return nil
	}
}

// WithClock sets the clock driving the sync pipeline and the schedules
func WithClock(clk clock.Clock) MonitorAppOptions {
	return func(cfg *monitorAppConfig) error {
		cfg.clock = clk
		return nil
	}
}

// WithMeterProvider enables sync and HTTP metrics
func WithMeterProvider(mp metric.MeterProvider) MonitorAppOptions {
	return func(cfg *monitorAppConfig) error {
		cfg.meterProvider = mp
		return nil
	}
}

// WithTracerProvider enables tracing of requests, sync cycles and store calls
func WithTracerProvider(tp trace.TracerProvider) MonitorAppOptions {
	return func(cfg *monitorAppConfig) error {
		cfg.tracerProvider = tp
		return nil
	}
}

// WithMetricsHandler serves h at /metrics
func WithMetricsHandler(h http.Handler) MonitorAppOptions {
	return func(cfg *monitorAppConfig) error {
		cfg.metricsHandler = h
		return nil
	}
}

// buildSyncComponents builds the remote client, the sync manager and the coordinator
func buildSyncComponents(b *monitorAppConfig, tenderStore store.TenderStore) (coordinator.Coordinator, error) {
	slog.Info("Initializing sync components")

	syncCfg := &b.config.Sync
	loc, err := syncCfg.GetLocation()
	if err != nil {
		return nil, fmt.Errorf("invalid sync timezone: %w", err)
	}

	if b.syncManager == nil {
		if b.apiClient == nil {
			mp := b.config.MercadoPublico
			var httpOpts []httpclient.Option
			if mp.UserAgent != "" {
				httpOpts = append(httpOpts, httpclient.WithUserAgent(mp.UserAgent))
			}
			b.apiClient, err = mercadopublico.NewClient(mp.BaseURL, b.config.Ticket(), mp.GetTimeout(), httpOpts...)
			if err != nil {
				return nil, fmt.Errorf("failed to create API client: %w", err)
			}
		}

		managerOpts := []pkgsync.Option{
			pkgsync.WithLocation(loc),
			pkgsync.WithDetailDelay(syncCfg.GetDetailDelay()),
			pkgsync.WithProgressEvery(syncCfg.GetProgressEvery()),
			pkgsync.WithTracer(b.tracerProvider.Tracer(syncTracerName)),
		}
		if b.clock != nil {
			managerOpts = append(managerOpts, pkgsync.WithClock(b.clock))
		}
		b.syncManager = pkgsync.NewDefaultSyncManager(b.apiClient, tenderStore, managerOpts...)
	}

	coordOpts := []coordinator.Option{
		coordinator.WithTracer(b.tracerProvider.Tracer(coordinatorTracerName)),
	}
	if b.clock != nil {
		coordOpts = append(coordOpts, coordinator.WithClock(b.clock))
	}
	if b.meterProvider != nil {
		syncMetrics, err := telemetry.NewSyncMetrics(b.meterProvider)
		if err != nil {
			return nil, fmt.Errorf("failed to create sync metrics: %w", err)
		}
		if syncMetrics != nil {
			coordOpts = append(coordOpts, coordinator.WithSyncMetrics(syncMetrics))
			slog.Info("Sync metrics enabled")
		}
	}

	statusPersistence := status.NewNoopStatusPersistence()
	if syncCfg.StatusFile != "" {
		statusPersistence = status.NewFileStatusPersistence(syncCfg.StatusFile)
	}

	syncCoordinator := coordinator.New(b.syncManager, statusPersistence, syncCfg, coordOpts...)
	slog.Info("Sync components initialized successfully")

	return syncCoordinator, nil
}

// buildHTTPServer builds the HTTP server with router and middleware
func buildHTTPServer(
	b *monitorAppConfig,
	svc service.TenderService,
	coord coordinator.Coordinator,
) (*http.Server, error) {
	slog.Info("Initializing HTTP server")

	if b.middlewares == nil {
		b.middlewares = []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			middleware.Timeout(b.requestTimeout),
			api.LoggingMiddleware,
		}
	}

	// metrics and tracing go first so they see every request
	var observability []func(http.Handler) http.Handler
	if b.meterProvider != nil {
		metricsMiddleware, err := telemetry.MetricsMiddleware(b.meterProvider)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics middleware: %w", err)
		}
		if metricsMiddleware != nil {
			observability = append(observability, metricsMiddleware)
			slog.Info("HTTP metrics middleware enabled")
		}
	}
	observability = append(observability, telemetry.TracingMiddleware(b.tracerProvider))
	middlewares := append(observability, b.middlewares...)

	var adminCoord coordinator.Coordinator
	if b.adminRoutes {
		adminCoord = coord
	}

	router := api.NewServer(svc, adminCoord,
		api.WithMiddlewares(middlewares...),
		api.WithMetricsHandler(b.metricsHandler),
	)

	server := &http.Server{
		Addr:         b.address,
		Handler:      router,
		ReadTimeout:  b.readTimeout,
		WriteTimeout: b.writeTimeout,
		IdleTimeout:  b.idleTimeout,
	}

	slog.Info("HTTP server configured", "address", b.address, "admin_routes", b.adminRoutes)
	return server, nil
}
