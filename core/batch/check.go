package batch

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/leofalp/nbrepair/core/notebook"
	"github.com/leofalp/nbrepair/core/repair"
	"github.com/leofalp/nbrepair/providers/observability"
)

// Check validates every path without repairing or writing anything. Valid
// notebooks are reported as StatusUnchanged with their cell counts; files that
// do not strictly parse are StatusFailed with the parser position.
func (r *Runner) Check(ctx context.Context, paths []string) (*Report, error) {
	results := make([]Result, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return newReport(results), err
		}
		results = append(results, r.checkFile(ctx, path))
	}
	return newReport(results), nil
}

func (r *Runner) checkFile(ctx context.Context, path string) Result {
	start := time.Now()
	res := Result{Path: path}

	if obs := r.provider(ctx); obs != nil {
		var span observability.Span
		ctx, span = obs.StartSpan(ctx, observability.SpanCheckFile,
			observability.String(observability.AttrFilePath, path))
		defer span.End()
	}

	input, err := os.ReadFile(path)
	if err != nil {
		res = fail(res, fmt.Errorf("failed to read %s: %w", path, err))
		res.Duration = time.Since(start)
		r.logCheck(ctx, res)
		return res
	}

	outcome := repair.Validate(string(input))
	if !outcome.Recovered() {
		res.Status = StatusFailed
		res.Failure = outcome.Failure
		res.Err = outcome.Failure
	} else {
		res.Status = StatusUnchanged
		res.Shape = outcome.Shape
		if outcome.Shape == nil {
			if nb, err := notebook.FromValue(outcome.Value); err == nil {
				res.Cells = notebook.Stats(nb)
			}
		}
	}
	res.Duration = time.Since(start)
	r.logCheck(ctx, res)
	return res
}

func (r *Runner) logCheck(ctx context.Context, res Result) {
	obs := r.provider(ctx)
	if obs == nil {
		return
	}
	attrs := []observability.Attribute{
		observability.String(observability.AttrFilePath, res.Path),
		observability.Int(observability.AttrCellsCode, res.Cells.Code),
		observability.Int(observability.AttrCellsMarkdown, res.Cells.Markdown),
	}
	if res.Status == StatusFailed {
		obs.Warn(ctx, "notebook invalid", append(attrs, observability.Error(res.Err))...)
		return
	}
	obs.Debug(ctx, "notebook valid", attrs...)
}
