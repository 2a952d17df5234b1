package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/mentorai/internal/config"
	"github.com/aretw0/mentorai/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mentorai",
	Short: "MentorAI is a career mentoring service",
	Long: `MentorAI onboards students, lets them pick up to three target companies
and builds a five-milestone roadmap towards them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("backend") {
			loaded.Backend, _ = cmd.Flags().GetString("backend")
			if err := loaded.Validate(); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("log-level") {
			loaded.Log.Level, _ = cmd.Flags().GetString("log-level")
		}
		cfg = loaded
		logger = logging.NewWithFormat(os.Stderr, logging.ParseLevel(cfg.Log.Level), cfg.Log.Format)
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to the YAML configuration (default ./"+config.DefaultPath+" when present)")
	rootCmd.PersistentFlags().String("backend", "", "Backend to use: memory, sqlite or supabase")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
}
