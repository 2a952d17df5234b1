package main

import (
	"fmt"

	"github.com/aretw0/mentorai/internal/config"
	"github.com/aretw0/mentorai/pkg/adapters/sqlite"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the SQLite database",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Backend != config.BackendSQLite {
			return fmt.Errorf("migrate only applies to the sqlite backend (configured: %s)", cfg.Backend)
		}
		// Open applies every pending migration.
		db, err := sqlite.Open(cmd.Context(), cfg.SQLite.Path)
		if err != nil {
			return err
		}
		defer db.Close()

		var n int
		if err := db.DB().QueryRowContext(cmd.Context(), `SELECT COUNT(1) FROM schema_migrations`).Scan(&n); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is at migration %d\n", cfg.SQLite.Path, n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
