package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codewithboateng/doclint/internal/reporting"
)

func newDiffCmd(a *app) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "diff BASE HEAD",
		Short: "Compare the offenses of two stored runs",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openStore()
			if err != nil {
				return err
			}
			defer db.Close()
			base, err := db.LoadRun(args[0])
			if err != nil {
				return fmt.Errorf("load %s: %w", args[0], err)
			}
			head, err := db.LoadRun(args[1])
			if err != nil {
				return fmt.Errorf("load %s: %w", args[1], err)
			}

			d := reporting.Diff(base, head)
			out := cmd.OutOrStdout()
			for _, o := range d.New {
				fmt.Fprintf(out, "+ %s:%d: %s: %s\n", o.Location, o.LocationLine, o.RuleID, o.Message)
			}
			for _, o := range d.Removed {
				fmt.Fprintf(out, "- %s:%d: %s: %s\n", o.Location, o.LocationLine, o.RuleID, o.Message)
			}
			for _, c := range d.Changed {
				fmt.Fprintf(out, "~ %s:%d: %s: %v\n", c.Head.Location, c.Head.LocationLine, c.Head.RuleID, c.Changed)
			}
			fmt.Fprintf(out, "new %d, removed %d, changed %d\n",
				d.Summary.NewCount, d.Summary.RemovedCount, d.Summary.ChangedCount)

			if outDir == "" {
				outDir = a.cfg.Reporting.OutDir
			}
			path, err := reporting.WriteDiffJSON(outDir, base, head)
			if err != nil {
				return err
			}
			a.logger.Infow("diff written", "path", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "diff output directory")
	return cmd
}
