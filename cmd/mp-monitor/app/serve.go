package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	monitor "github.com/sapo-cl/mercadopublico-monitor/internal/app"
)

const defaultGracefulTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scheduled sync and serve the tender API",
		Long: `Run the hourly tender sync and the daily cleanup in the background and serve
the read-only tender API, the health probes and the /internal operator endpoints.

The configuration file (--config) selects the storage backend and the schedule.
The API ticket is read from mercadoPublico.ticketFile or MP_MONITOR_API_TICKET;
the server refuses to start without one.`,
		RunE: runServe,
	}

	cmd.Flags().String("address", ":8080", "Address to listen on")
	cmd.Flags().Duration("request-timeout", 10*time.Second, "Per-request timeout")
	cmd.Flags().Duration("graceful-timeout", defaultGracefulTimeout, "Time allowed for in-flight requests on shutdown")
	cmd.Flags().Bool("no-admin", false, "Do not serve the /internal operator endpoints")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	address, _ := cmd.Flags().GetString("address")
	requestTimeout, _ := cmd.Flags().GetDuration("request-timeout")
	gracefulTimeout, _ := cmd.Flags().GetDuration("graceful-timeout")
	noAdmin, _ := cmd.Flags().GetBool("no-admin")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	tel, err := setupTelemetry(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer shutdownTelemetry(tel)

	app, err := monitor.NewMonitorApp(ctx,
		monitor.WithConfig(cfg),
		monitor.WithAddress(address),
		monitor.WithRequestTimeout(requestTimeout),
		monitor.WithAdminRoutes(!noAdmin),
		monitor.WithTracerProvider(tel.TracerProvider()),
		monitor.WithMeterProvider(tel.MeterProvider()),
		monitor.WithMetricsHandler(tel.MetricsHandler()),
	)
	if err != nil {
		return fmt.Errorf("failed to build monitor: %w", err)
	}

	slog.Info("Starting tender monitor", "address", address)
	startErr := app.Start(ctx)
	if startErr != nil {
		slog.Error("Monitor stopped with error", "error", startErr)
	}

	return errors.Join(startErr, app.Stop(gracefulTimeout))
}
