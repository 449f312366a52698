package app

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sapo-cl/mercadopublico-monitor/database"
	"github.com/sapo-cl/mercadopublico-monitor/internal/config"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the tender database schema",
		Long: `Apply or roll back the embedded schema migrations against the database
configured in the database section of the configuration file.
The API ticket is not required.`,
	}

	cmd.PersistentFlags().BoolP("yes", "y", false, "Skip the confirmation prompt")

	cmd.AddCommand(newMigrateUpCmd())
	cmd.AddCommand(newMigrateDownCmd())
	cmd.AddCommand(newMigrateVersionCmd())
	return cmd
}

// migrationConnString loads the configuration without the API ticket and
// returns the database connection string
func migrationConnString() (string, error) {
	cfg, err := loadConfig(config.WithoutTicket())
	if err != nil {
		return "", err
	}
	if cfg.Database == nil {
		return "", fmt.Errorf("database configuration is required for migrations")
	}

	connString, err := cfg.Database.GetConnectionString()
	if err != nil {
		return "", fmt.Errorf("failed to build connection string: %w", err)
	}
	return connString, nil
}

func newMigrateVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			connString, err := migrationConnString()
			if err != nil {
				return err
			}
			return printSchemaVersion(cmd, connString)
		},
	}
}

func printSchemaVersion(cmd *cobra.Command, connString string) error {
	version, dirty, err := database.GetVersion(connString)
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	if dirty {
		slog.Warn("Schema is dirty, manual intervention may be required", "version", version)
		cmd.Printf("schema version: %d (dirty)\n", version)
		return nil
	}
	cmd.Printf("schema version: %d\n", version)
	return nil
}

// confirm asks a yes/no question on out and reads the answer from in
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	_, _ = fmt.Fprintf(out, "%s [y/N]: ", prompt)

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func confirmed(cmd *cobra.Command, prompt string) (bool, error) {
	yes, err := cmd.Flags().GetBool("yes")
	if err != nil {
		return false, fmt.Errorf("failed to get yes flag: %w", err)
	}
	if yes {
		return true, nil
	}
	in := cmd.InOrStdin()
	if !interactive(in) {
		return false, fmt.Errorf("confirmation required: rerun with --yes when input is not a terminal")
	}
	return confirm(in, cmd.OutOrStdout(), prompt), nil
}

func interactive(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) // #nosec G115 -- file descriptors fit in int
}
