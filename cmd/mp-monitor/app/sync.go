package app

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	monitor "github.com/sapo-cl/mercadopublico-monitor/internal/app"
	"github.com/sapo-cl/mercadopublico-monitor/internal/status"
	"github.com/sapo-cl/mercadopublico-monitor/internal/sync/coordinator"
)

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one sync cycle and exit",
		Long: `Fetch yesterday's tenders, reconcile them with the store and enrich every
eligible tender with its detail, then exit. Interrupting the command cancels the
remaining detail requests; tenders already written stay in the store.`,
		RunE: runSync,
	}
	cmd.Flags().String("format", "", "Output format for the final status (json)")
	return cmd
}

func runSync(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	format, _ := cmd.Flags().GetString("format")

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
		monitor.WithTracerProvider(tel.TracerProvider()),
		monitor.WithMeterProvider(tel.MeterProvider()),
	)
	if err != nil {
		return fmt.Errorf("failed to build monitor: %w", err)
	}

	coord := app.Components().Coordinator
	outcome := coord.TriggerManual(ctx)

	if outcome == coordinator.RunCompleted {
		drained := make(chan struct{})
		go func() {
			coord.Wait()
			close(drained)
		}()
		select {
		case <-drained:
		case <-ctx.Done():
			slog.Warn("Interrupted, cancelling enrichment")
		}
	}

	// Stop cancels an interrupted enrichment and waits for it to record its report
	stopErr := app.Stop(defaultGracefulTimeout)

	final := coord.Status()
	if err := printStatus(cmd, format, final); err != nil {
		return err
	}
	if stopErr != nil {
		return stopErr
	}
	if outcome == coordinator.RunFailed {
		return fmt.Errorf("sync failed: %s", final.Message)
	}
	return nil
}

func printStatus(cmd *cobra.Command, format string, st status.SyncStatus) error {
	if format == "json" {
		output, err := json.MarshalIndent(st, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format status: %w", err)
		}
		cmd.Println(string(output))
		return nil
	}

	cmd.Printf("phase: %s\nsynced date: %s\nfetched: %d eligible: %d upserted: %d deleted: %d failed: %d\n",
		st.Phase, st.SyncedDate, st.Fetched, st.Eligible, st.Upserted, st.Deleted, st.Failed)
	if e := st.LastEnrichment; e != nil {
		cmd.Printf("enriched: %d failed: %d skipped: %d cancelled: %t\n", e.Succeeded, e.Failed, e.Skipped, e.Cancelled)
	}
	if st.Message != "" {
		cmd.Printf("message: %s\n", st.Message)
	}
	return nil
}
