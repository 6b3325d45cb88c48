// Package cli implements the amelio command line: the HTTP server and maintenance commands.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/amelio/internal/config"
	"github.com/spec-kit/amelio/internal/observability"
)

var (
	cfg     *config.Config
	logger  *zap.Logger
	driver  string
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "amelio",
	Short: "Ticket workflow for reporting issues in course material",
	Long: `Amelio lets students report mistakes in course material. Tickets are routed to the
tutor of the course, can be forwarded to its author and move through a fixed review workflow.
Ticket creators are notified by mail about status changes and new comments.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if driver != "" {
			if driver != config.DriverPostgres && driver != config.DriverSQLite {
				return fmt.Errorf("invalid --driver %q", driver)
			}
			cfg.Database.Driver = driver
		}
		if cfg.App.Version == "dev" {
			cfg.App.Version = version
		}

		logger, err = observability.NewLogger(cfg.Logger)
		if err != nil {
			return fmt.Errorf("failed to init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("amelio %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&driver, "driver", "", "storage driver (postgres or sqlite), overrides DATABASE_DRIVER")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(versionCmd)
}

func SetVersion(v string) {
	version = v
}

func Execute() error {
	return rootCmd.Execute()
}
