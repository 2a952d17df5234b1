package main

import (
	"fmt"
	"os"

	"github.com/aretw0/mentorai/internal/config"
	"github.com/aretw0/mentorai/pkg/adapters/sqlite"
	"github.com/aretw0/mentorai/pkg/catalog"
	"github.com/aretw0/mentorai/pkg/domain"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed [catalog.yaml]",
	Short: "Load a company catalog into the SQLite database",
	Long:  `Loads the given YAML or JSON catalog, or the built-in sample, into the company table.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Backend != config.BackendSQLite {
			return fmt.Errorf("seed only applies to the sqlite backend (configured: %s)", cfg.Backend)
		}

		companies := catalog.Sample()
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			if companies, err = catalog.Read(f); err != nil {
				return err
			}
		}

		db, err := sqlite.Open(cmd.Context(), cfg.SQLite.Path)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.PutCompanies(cmd.Context(), companies...); err != nil {
			return err
		}
		if username, _ := cmd.Flags().GetString("demo-user"); username != "" {
			if err := db.PutProfile(cmd.Context(), domain.Profile{ID: username, Username: username, FullName: username}); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d companies into %s\n", len(companies), cfg.SQLite.Path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().String("demo-user", "", "Also create a profile whose id and username are this value")
}
