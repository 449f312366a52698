package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func ptrFloat64(f float64) *float64 {
	return &f
}

func TestConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	assert.Equal(t, DefaultServiceName, cfg.GetServiceName())
	assert.Equal(t, "unknown", cfg.GetServiceVersion())
	assert.Equal(t, DefaultEndpoint, cfg.GetEndpoint())

	var tracing *TracingConfig
	assert.InDelta(t, DefaultSampling, tracing.GetSampling(), 0)
	assert.InDelta(t, DefaultSampling, (&TracingConfig{}).GetSampling(), 0)
	assert.InDelta(t, 0.0, (&TracingConfig{Sampling: ptrFloat64(0)}).GetSampling(), 0)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  *Config
		wantErr string
	}{
		{
			name:   "nil config",
			config: nil,
		},
		{
			name:   "disabled config skips validation",
			config: &Config{Tracing: &TracingConfig{Enabled: true, Sampling: ptrFloat64(3)}},
		},
		{
			name: "valid config",
			config: &Config{
				Enabled: true,
				Tracing: &TracingConfig{Enabled: true, Sampling: ptrFloat64(0.25)},
				Metrics: &MetricsConfig{Enabled: true, Prometheus: true, DisableOTLP: true},
			},
		},
		{
			name: "sampling above one",
			config: &Config{
				Enabled: true,
				Tracing: &TracingConfig{Enabled: true, Sampling: ptrFloat64(1.5)},
			},
			wantErr: "tracing: sampling must be between 0.0 and 1.0",
		},
		{
			name: "negative sampling",
			config: &Config{
				Enabled: true,
				Tracing: &TracingConfig{Enabled: true, Sampling: ptrFloat64(-0.1)},
			},
			wantErr: "tracing: sampling must be between 0.0 and 1.0",
		},
		{
			name: "no exporter left",
			config: &Config{
				Enabled: true,
				Metrics: &MetricsConfig{Enabled: true, DisableOTLP: true},
			},
			wantErr: "metrics: disableOtlp requires prometheus",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_YAML(t *testing.T) {
	t.Parallel()

	raw := `
enabled: true
serviceName: monitor-staging
endpoint: otel-collector:4318
insecure: true
tracing:
  enabled: true
  sampling: 0.5
metrics:
  enabled: true
  prometheus: true
`
	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte(raw), &cfg))

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "monitor-staging", cfg.GetServiceName())
	assert.Equal(t, "otel-collector:4318", cfg.GetEndpoint())
	assert.True(t, cfg.Insecure)
	require.NotNil(t, cfg.Tracing)
	assert.InDelta(t, 0.5, cfg.Tracing.GetSampling(), 0)
	require.NotNil(t, cfg.Metrics)
	assert.True(t, cfg.Metrics.Prometheus)
	assert.False(t, cfg.Metrics.DisableOTLP)
	assert.NoError(t, cfg.Validate())
}
