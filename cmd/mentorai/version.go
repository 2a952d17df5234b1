package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/mentorai"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of mentorai",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "mentorai version %s\n", strings.TrimSpace(mentorai.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
