package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/sapo-cl/mercadopublico-monitor/internal/config"
	"github.com/sapo-cl/mercadopublico-monitor/internal/telemetry"
	"github.com/sapo-cl/mercadopublico-monitor/internal/versions"
)

const telemetryShutdownTimeout = 10 * time.Second

// setupTelemetry creates the providers described by cfg. The service version
// defaults to the binary version.
func setupTelemetry(ctx context.Context, cfg *config.Config) (*telemetry.Telemetry, error) {
	if cfg.Telemetry != nil && cfg.Telemetry.ServiceVersion == "" {
		cfg.Telemetry.ServiceVersion = versions.GetVersionInfo().Version
	}
	return telemetry.New(ctx, telemetry.WithTelemetryConfig(cfg.Telemetry))
}

func shutdownTelemetry(tel *telemetry.Telemetry) {
	ctx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
	defer cancel()
	if err := tel.Shutdown(ctx); err != nil {
		slog.Warn("Telemetry shutdown failed", "error", err)
	}
}
