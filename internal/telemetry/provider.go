package telemetry

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// ProviderOption configures NewTracerProvider and NewMeterProvider. Each
// constructor ignores the signal-specific options of the other.
type ProviderOption func(*providerConfig)

type providerConfig struct {
	serviceName    string
	serviceVersion string
	endpoint       string
	insecure       bool

	tracing    *TracingConfig
	metrics    *MetricsConfig
	registerer prometheus.Registerer
}

func newProviderConfig(opts []ProviderOption) *providerConfig {
	cfg := &providerConfig{
		serviceName:    DefaultServiceName,
		serviceVersion: unknownVersion,
		endpoint:       DefaultEndpoint,
		registerer:     prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// providerOptions maps the root configuration onto provider options
func providerOptions(c *Config) []ProviderOption {
	return []ProviderOption{
		WithServiceName(c.GetServiceName()),
		WithServiceVersion(c.GetServiceVersion()),
		WithEndpoint(c.GetEndpoint()),
		WithInsecure(c.Insecure),
		WithTracingConfig(c.Tracing),
		WithMetricsConfig(c.Metrics),
	}
}

// WithServiceName sets the service.name resource attribute
func WithServiceName(name string) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.serviceName = name
	}
}

// WithServiceVersion sets the service.version resource attribute
func WithServiceVersion(version string) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.serviceVersion = version
	}
}

// WithEndpoint sets the OTLP collector endpoint
func WithEndpoint(endpoint string) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.endpoint = endpoint
	}
}

// WithInsecure allows plain HTTP to the collector
func WithInsecure(insecure bool) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.insecure = insecure
	}
}

// WithTracingConfig enables tracing when tc is non-nil and enabled
func WithTracingConfig(tc *TracingConfig) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.tracing = tc
	}
}

// WithMetricsConfig enables metrics when mc is non-nil and enabled
func WithMetricsConfig(mc *MetricsConfig) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.metrics = mc
	}
}

// WithPrometheusRegisterer sets where the Prometheus exporter registers its
// collector. Defaults to prometheus.DefaultRegisterer.
func WithPrometheusRegisterer(reg prometheus.Registerer) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.registerer = reg
	}
}

// resource builds the service resource. resource.New is used instead of
// resource.Default to avoid schema URL conflicts.
func (cfg *providerConfig) resource(ctx context.Context) (*resource.Resource, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.serviceName),
			semconv.ServiceVersion(cfg.serviceVersion),
		),
		resource.WithHost(),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}
