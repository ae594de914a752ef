package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/codewithboateng/doclint/internal/rules"
)

func newRulesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List registered rules with their resolved state",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.resolver()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RULE\tENABLED\tSEVERITY\tSTRATEGY\tSUMMARY")
			for _, r := range rules.List() {
				fmt.Fprintf(tw, "%s\t%t\t%s\t%s\t%s\n",
					r.ID, res.IsEnabled(r.ID), res.Severity(r.ID), r.Strategy, r.Summary)
			}
			return tw.Flush()
		},
	}
}
