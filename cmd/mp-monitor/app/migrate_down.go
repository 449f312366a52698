package app

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sapo-cl/mercadopublico-monitor/database"
)

func newMigrateDownCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Long: `Roll back schema migrations.
WARNING: rolling back drops the tender table and every stored tender.

Examples:
  # Roll back one migration
  mp-monitor migrate down --config config.yaml --num-steps 1 --yes

  # Roll back every migration
  mp-monitor migrate down --config config.yaml --yes`,
		RunE: runMigrateDown,
	}
	cmd.Flags().IntP("num-steps", "n", 0, "Number of migrations to roll back (0 rolls back all)")
	return cmd
}

func runMigrateDown(cmd *cobra.Command, _ []string) error {
	steps, err := cmd.Flags().GetInt("num-steps")
	if err != nil {
		return fmt.Errorf("failed to get num-steps flag: %w", err)
	}
	if steps < 0 {
		return fmt.Errorf("num-steps cannot be negative")
	}

	connString, err := migrationConnString()
	if err != nil {
		return err
	}

	prompt := fmt.Sprintf("WARNING: This will roll back %d migration(s) and may result in data loss. Continue?", steps)
	if steps == 0 {
		prompt = "WARNING: This will roll back ALL migrations and delete every stored tender. Continue?"
	}
	ok, err := confirmed(cmd, prompt)
	if err != nil {
		return err
	}
	if !ok {
		slog.Info("Migration cancelled")
		return fmt.Errorf("migration cancelled by user")
	}

	slog.Warn("Rolling back migrations", "steps", steps)
	if err := database.MigrateDown(connString, steps); err != nil {
		return err
	}
	slog.Info("Rollback completed successfully")

	return printSchemaVersion(cmd, connString)
}
