package main

import (
	"github.com/spf13/cobra"

	"github.com/leofalp/nbrepair/core/batch"
)

func newCheckCmd(a *app) *cobra.Command {
	var pattern string

	cmd := &cobra.Command{
		Use:   "check PATH...",
		Short: "Validate notebooks without changing them",
		Long: `Check parses every notebook strictly and reports the position of the first
syntax error, together with the number of code and markdown cells of valid
notebooks. It exits with status 1 when any notebook is invalid.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("pattern") {
				a.cfg.Pattern = pattern
			}

			paths, err := batch.Discover(args, a.cfg.Pattern)
			if err != nil {
				return err
			}

			opts := a.cfg.BatchOptions()
			report, err := batch.NewRunner(opts).Check(cmd.Context(), paths)
			printCheckReport(a.stdout, report)
			if err != nil {
				return err
			}
			if report.HasFailures() {
				return errFailures
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&pattern, "pattern", batch.DefaultPattern, "glob for notebooks inside directories (supports **)")
	return cmd
}
