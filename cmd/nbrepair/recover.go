package main

import (
	"github.com/spf13/cobra"

	"github.com/leofalp/nbrepair/core/batch"
)

func newRecoverCmd(a *app) *cobra.Command {
	var (
		pattern       string
		workers       int
		backup        bool
		debugDump     bool
		dryRun        bool
		outputDir     string
		indent        int
		escape        bool
		maxInsertions int
		maxPassRuns   int
		noUnwrap      bool
		fallback      bool
		passes        []string
		disable       []string
	)

	cmd := &cobra.Command{
		Use:     "recover PATH...",
		Aliases: []string{"fix"},
		Short:   "Repair notebooks in place or into an output directory",
		Long: `Recover reads every notebook given directly or found below a directory,
repairs what strict JSON parsing rejects and writes the result back. Files that
are already valid and canonically formatted are not rewritten.`,
		Example: `  nbrepair recover chapter_1/
  nbrepair fix --backup --pattern '**/*.ipynb' notebooks/
  nbrepair recover --dry-run --debug-dump broken.ipynb`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			flags := cmd.Flags()
			if flags.Changed("pattern") {
				cfg.Pattern = pattern
			}
			if flags.Changed("workers") {
				cfg.Workers = workers
			}
			if flags.Changed("backup") {
				cfg.Backup = backup
			}
			if flags.Changed("debug-dump") {
				cfg.DebugDump = debugDump
			}
			if flags.Changed("dry-run") {
				cfg.DryRun = dryRun
			}
			if flags.Changed("output-dir") {
				cfg.OutputDir = outputDir
			}
			if flags.Changed("indent") {
				cfg.Output.Indent = indent
			}
			if flags.Changed("escape-non-ascii") {
				cfg.Output.EscapeNonASCII = escape
			}
			if flags.Changed("max-insertions") {
				cfg.Repair.MaxInsertions = maxInsertions
			}
			if flags.Changed("max-pass-runs") {
				cfg.Repair.MaxPassRuns = maxPassRuns
			}
			if flags.Changed("no-unwrap") {
				cfg.Repair.Unwrap = !noUnwrap
			}
			if flags.Changed("fallback") {
				cfg.Repair.Fallback = fallback
			}
			if flags.Changed("passes") {
				cfg.Repair.Passes = passes
			}
			if flags.Changed("disable") {
				cfg.Repair.Disable = disable
			}
			if err := a.applied(); err != nil {
				return err
			}

			paths, err := batch.Discover(args, cfg.Pattern)
			if err != nil {
				return err
			}

			opts := cfg.BatchOptions()
			report, err := batch.NewRunner(opts).Run(cmd.Context(), paths)
			printReport(a.stdout, report, cfg.DryRun)
			if err != nil {
				return err
			}
			if report.HasFailures() {
				return errFailures
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&pattern, "pattern", batch.DefaultPattern, "glob for notebooks inside directories (supports **)")
	flags.IntVarP(&workers, "workers", "j", 0, "files processed in parallel (default GOMAXPROCS)")
	flags.BoolVar(&backup, "backup", false, "keep the original bytes in <name>"+batch.BackupSuffix)
	flags.BoolVar(&debugDump, "debug-dump", false, "write the last repair attempt of failed files to <name>"+batch.DebugDumpSuffix)
	flags.BoolVarP(&dryRun, "dry-run", "n", false, "report without writing anything")
	flags.StringVarP(&outputDir, "output-dir", "o", "", "write repaired notebooks here instead of in place")
	flags.IntVar(&indent, "indent", 1, "spaces per indentation level, 0 for compact output")
	flags.BoolVar(&escape, "escape-non-ascii", false, `write non-ASCII characters as \uXXXX escapes`)
	flags.IntVar(&maxInsertions, "max-insertions", 50, "maximum commas inserted per file")
	flags.IntVar(&maxPassRuns, "max-pass-runs", 1, "times the text passes may run while they keep changing the file")
	flags.BoolVar(&noUnwrap, "no-unwrap", false, "do not unwrap notebooks serialized inside a single cell")
	flags.BoolVar(&fallback, "fallback", false, "try a generic JSON repair when the named passes fail")
	flags.StringSliceVar(&passes, "passes", nil, "run only these passes")
	flags.StringSliceVar(&disable, "disable", nil, "skip these passes")
	return cmd
}
