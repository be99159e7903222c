package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leofalp/nbrepair/core/notebook"
	"github.com/leofalp/nbrepair/providers/observability"
)

func newConvertCmd(a *app) *cobra.Command {
	var (
		outputDir     string
		pythonVersion string
		force         bool
	)

	cmd := &cobra.Command{
		Use:   "convert SCRIPT...",
		Short: "Build notebooks from annotated Python scripts",
		Long: `Convert turns each Python script into a notebook next to it (or in
--output-dir). Top-level triple-quoted blocks become markdown cells, HTML inside
them is converted to markdown, and the code between them becomes code cells.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			failed := false
			for _, script := range args {
				out, stats, err := convertScript(script, outputDir, pythonVersion, force, a.cfg.EncodeOptions())
				if err != nil {
					failed = true
					a.observer.Error(ctx, "conversion failed",
						observability.String(observability.AttrFilePath, script),
						observability.Error(err))
					fmt.Fprintf(a.stdout, "%s %s: %v\n", failMark(), script, err)
					continue
				}
				a.observer.Info(ctx, "notebook written",
					observability.String(observability.AttrFilePath, script),
					observability.String(observability.AttrFileOutput, out),
					observability.Int(observability.AttrCellsCode, stats.Code),
					observability.Int(observability.AttrCellsMarkdown, stats.Markdown))
				fmt.Fprintf(a.stdout, "%s %s → %s %s\n", okMark(), script, out, cellSummary(stats))
			}
			if failed {
				return errFailures
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&outputDir, "output-dir", "o", "", "directory for the notebooks (default next to each script)")
	flags.StringVar(&pythonVersion, "python-version", "", "language_info.version to record (default 3.8.0)")
	flags.BoolVarP(&force, "force", "f", false, "overwrite existing notebooks")
	return cmd
}

var errExists = errors.New("notebook already exists (use --force to overwrite)")

func convertScript(script, outputDir, pythonVersion string, force bool, enc notebook.EncodeOptions) (string, notebook.CellStats, error) {
	src, err := os.ReadFile(script)
	if err != nil {
		return "", notebook.CellStats{}, fmt.Errorf("failed to read script: %w", err)
	}

	dir := outputDir
	if dir == "" {
		dir = filepath.Dir(script)
	}
	base := filepath.Base(script)
	out := filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+".ipynb")

	if !force {
		if _, err := os.Stat(out); err == nil {
			return "", notebook.CellStats{}, fmt.Errorf("%s: %w", out, errExists)
		}
	}

	nb, err := notebook.Convert(string(src), notebook.ConvertOptions{
		Name:          filepath.Base(out),
		PythonVersion: pythonVersion,
	})
	if err != nil {
		return "", notebook.CellStats{}, err
	}
	data, err := notebook.Marshal(nb, enc)
	if err != nil {
		return "", notebook.CellStats{}, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", notebook.CellStats{}, fmt.Errorf("failed to create %s: %w", dir, err)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return "", notebook.CellStats{}, fmt.Errorf("failed to write notebook: %w", err)
	}
	return out, notebook.Stats(nb), nil
}
