package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/aretw0/mentorai/pkg/domain"
	"github.com/spf13/cobra"
)

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List the company catalog",
	Long:  `Lists the companies of the configured backend, filtered the same way the selector filters them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := build(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer rt.Close()

		companies, err := rt.app.Companies(cmd.Context())
		if err != nil {
			return err
		}

		f := domain.NewCompanyFilter()
		f.SearchTerm, _ = cmd.Flags().GetString("search")
		if d, _ := cmd.Flags().GetString("domain"); d != "" && d != "all" {
			f.Domain = &d
		}
		f.SalaryRange[0], _ = cmd.Flags().GetFloat64("min")
		f.SalaryRange[1], _ = cmd.Flags().GetFloat64("max")
		if lvl, _ := cmd.Flags().GetInt("dsa"); lvl != 0 {
			if lvl < 1 || lvl > 3 {
				return fmt.Errorf("%w: --dsa must be 1, 2 or 3", domain.ErrValidation)
			}
			f.DSALevel = &lvl
		}
		matches := f.Apply(companies)

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(matches)
		}
		if len(matches) == 0 {
			fmt.Fprintln(out, "No companies match the filters.")
			return nil
		}
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCOMPANY\tPOSITION\tDOMAIN\tDSA\tUG\tPG")
		for _, c := range matches {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.0f\t%.0f\n",
				c.ID, c.Name, c.Position, c.Domain, c.DSALevel, c.UGCompensation, c.PGCompensation)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(companiesCmd)
	companiesCmd.Flags().StringP("search", "s", "", "Match company name or position")
	companiesCmd.Flags().String("domain", "", "Only this domain")
	companiesCmd.Flags().Float64("min", domain.DefaultSalaryRange[0], "Minimum undergraduate compensation")
	companiesCmd.Flags().Float64("max", domain.DefaultSalaryRange[1], "Maximum undergraduate compensation")
	companiesCmd.Flags().Int("dsa", 0, "Only this DSA level (1-3)")
	companiesCmd.Flags().Bool("json", false, "Print JSON")
}
