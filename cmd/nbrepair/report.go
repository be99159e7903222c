package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/leofalp/nbrepair/core/batch"
	"github.com/leofalp/nbrepair/core/notebook"
	"github.com/leofalp/nbrepair/internal/utils"
)

// snippetWidth bounds each printed snippet line, in runes.
const snippetWidth = 120

var (
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed, color.Bold)
	yellow = color.New(color.FgYellow)
	faint  = color.New(color.Faint)
)

func okMark() string   { return green.Sprint("✓") }
func failMark() string { return red.Sprint("✗") }
func sameMark() string { return faint.Sprint("=") }

func printReport(w io.Writer, report *batch.Report, dryRun bool) {
	for _, res := range report.Results {
		switch res.Status {
		case batch.StatusRecovered:
			verb := "recovered"
			if dryRun {
				verb = "would recover"
			}
			fmt.Fprintf(w, "%s %s %s", okMark(), res.Path, verb)
			if len(res.Passes) > 0 {
				fmt.Fprintf(w, " (%s, %d edits)", strings.Join(res.Passes, ", "), len(res.Repairs))
			}
			if res.Output != "" && res.Output != res.Path {
				fmt.Fprintf(w, " → %s", res.Output)
			}
			fmt.Fprintln(w)
		case batch.StatusUnchanged:
			fmt.Fprintf(w, "%s %s unchanged\n", sameMark(), res.Path)
		case batch.StatusFailed:
			printFailure(w, res)
		}
		printShape(w, res)
	}

	summary := fmt.Sprintf("%d recovered, %d unchanged, %d failed", report.Recovered, report.Unchanged, report.Failed)
	if report.ShapeWarnings > 0 {
		summary += fmt.Sprintf(", %d not notebook shaped", report.ShapeWarnings)
	}
	printSummary(w, report, summary)
}

func printCheckReport(w io.Writer, report *batch.Report) {
	for _, res := range report.Results {
		if res.Status == batch.StatusFailed {
			printFailure(w, res)
			continue
		}
		fmt.Fprintf(w, "%s %s valid %s\n", okMark(), res.Path, cellSummary(res.Cells))
		printShape(w, res)
	}
	printSummary(w, report, fmt.Sprintf("%d valid, %d invalid", report.Unchanged, report.Failed))
}

func printSummary(w io.Writer, report *batch.Report, summary string) {
	if report.HasFailures() {
		fmt.Fprintln(w, red.Sprint(summary))
		return
	}
	fmt.Fprintln(w, green.Sprint(summary))
}

func printFailure(w io.Writer, res batch.Result) {
	f := res.Failure
	if f == nil {
		fmt.Fprintf(w, "%s %s: %v\n", failMark(), res.Path, res.Err)
		return
	}

	fmt.Fprintf(w, "%s %s:%d:%d: %s\n", failMark(), res.Path, f.Position.Line+1, f.Position.Column+1,
		utils.TruncateString(f.Reason, 200))
	if f.Snippet != "" {
		for i, line := range strings.Split(f.Snippet, "\n") {
			n := f.SnippetLine + i
			text := utils.Window(line, f.Position.Column, snippetWidth)
			if n == f.Position.Line {
				fmt.Fprintf(w, "  %s %s\n", yellow.Sprintf("%5d >", n+1), text)
			} else {
				fmt.Fprintf(w, "  %s %s\n", faint.Sprintf("%5d |", n+1), text)
			}
		}
	}
	if res.DebugDump != "" {
		fmt.Fprintf(w, "  debug dump: %s\n", res.DebugDump)
	}
}

func printShape(w io.Writer, res batch.Result) {
	if res.Shape != nil {
		fmt.Fprintf(w, "  %s %v\n", yellow.Sprint("warning:"), res.Shape)
	}
}

func cellSummary(s notebook.CellStats) string {
	return fmt.Sprintf("(%d code, %d markdown cells)", s.Code, s.Markdown)
}
