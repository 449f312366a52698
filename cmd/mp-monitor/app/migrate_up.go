package app

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sapo-cl/mercadopublico-monitor/database"
)

func newMigrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Long: `Apply every pending schema migration.

Examples:
  mp-monitor migrate up --config config.yaml --yes`,
		RunE: runMigrateUp,
	}
}

func runMigrateUp(cmd *cobra.Command, _ []string) error {
	connString, err := migrationConnString()
	if err != nil {
		return err
	}

	ok, err := confirmed(cmd, "This will apply all pending migrations. Continue?")
	if err != nil {
		return err
	}
	if !ok {
		slog.Info("Migration cancelled")
		return fmt.Errorf("migration cancelled by user")
	}

	slog.Info("Applying migrations")
	if err := database.MigrateUp(connString); err != nil {
		return err
	}
	slog.Info("Migration completed successfully")

	return printSchemaVersion(cmd, connString)
}
