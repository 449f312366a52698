package app

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	monitor "github.com/sapo-cl/mercadopublico-monitor/internal/app"
)

func newCleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete tenders whose close date has passed and exit",
		RunE:  runCleanup,
	}
}

func runCleanup(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	app, err := monitor.NewMonitorApp(ctx, monitor.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to build monitor: %w", err)
	}

	deleted, cleanupErr := app.Components().Coordinator.CleanupExpired(ctx)
	stopErr := app.Stop(defaultGracefulTimeout)
	if err := errors.Join(cleanupErr, stopErr); err != nil {
		return err
	}

	cmd.Printf("deleted %d expired tenders\n", deleted)
	return nil
}
