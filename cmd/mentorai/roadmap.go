package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/mentorai/internal/presentation/graph"
	"github.com/aretw0/mentorai/internal/presentation/tui"
	"github.com/aretw0/mentorai/pkg/roadmap"
	"github.com/spf13/cobra"
)

var roadmapCmd = &cobra.Command{
	Use:   "roadmap <company-id>...",
	Short: "Build a roadmap for up to three companies",
	Long: `Builds the five-milestone roadmap for the given companies.
Markdown is rendered for the terminal when stdout is one.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		rt, err := build(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer rt.Close()

		r, err := rt.app.BuildRoadmap(cmd.Context(), args)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch strings.ToLower(format) {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(r)
		case "mermaid":
			_, err := fmt.Fprint(out, graph.GenerateMermaid(r))
			return err
		case "markdown", "md":
			md := roadmap.Markdown(r)
			if width, ok := tui.Interactive(os.Stdout); ok {
				render, err := tui.NewRenderer(width)
				if err != nil {
					return err
				}
				if md, err = render(md); err != nil {
					return err
				}
			}
			_, err := fmt.Fprint(out, md)
			return err
		default:
			return fmt.Errorf("unknown format %q (want markdown, json or mermaid)", format)
		}
	},
}

func init() {
	rootCmd.AddCommand(roadmapCmd)
	roadmapCmd.Flags().StringP("format", "f", "markdown", "Output format: markdown, json or mermaid")
}
