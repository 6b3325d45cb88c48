package cli

import (
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStorage(cmd.Context(), cfg, true, logger)
		if err != nil {
			return err
		}
		store.Close()
		return nil
	},
}
