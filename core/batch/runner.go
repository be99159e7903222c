package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/zeebo/blake3"
	"golang.org/x/sync/errgroup"

	"github.com/leofalp/nbrepair/core/notebook"
	"github.com/leofalp/nbrepair/core/repair"
	"github.com/leofalp/nbrepair/providers/observability"
)

const filePerm = 0o644

// ErrOutputConflict is reported for a file whose output or artifact path is
// already claimed by an earlier file of the same run.
var ErrOutputConflict = errors.New("nbrepair: output path used by another input")

// Options configures a Runner.
type Options struct {
	// Workers bounds the number of files processed at once. Zero means GOMAXPROCS.
	Workers int
	// Backup keeps the original bytes in <stem>.backup.json before overwriting.
	Backup bool
	// DebugDump writes the final repair attempt of a failed file to <stem>_debug.json.
	DebugDump bool
	// DryRun recovers and reports without writing anything.
	DryRun bool
	// OutputDir receives repaired notebooks and artifacts under their base
	// name. Empty means in place. When two inputs share a base name, the
	// later one fails with ErrOutputConflict.
	OutputDir string
	// Encode controls how recovered notebooks are written.
	Encode notebook.EncodeOptions
	// RecoverOptions are passed to repair.Recover for every file.
	RecoverOptions []repair.Option
	// Observer receives spans, counters and logs. When nil, the provider
	// attached to the context with observability.ContextWithProvider is used,
	// if any.
	Observer observability.Provider
}

// Runner recovers notebook files. It is safe for concurrent use.
type Runner struct {
	opts Options
}

// DefaultOptions returns in-place recovery with backups off and the default
// notebook encoding.
func DefaultOptions() Options {
	return Options{
		Workers: runtime.GOMAXPROCS(0),
		Encode:  notebook.DefaultEncodeOptions(),
	}
}

// NewRunner creates a Runner. Start from DefaultOptions: a zero Encode value
// writes compact JSON.
func NewRunner(opts Options) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &Runner{opts: opts}
}

// Run recovers every path and returns one Result per path, in input order.
// Per-file problems are reported in the Result and never stop the batch. The
// returned error is non-nil only when ctx is cancelled, in which case the
// report still holds the files completed so far. A file that would write
// over the output or artifacts of an earlier file fails with
// ErrOutputConflict and is left untouched.
func (r *Runner) Run(ctx context.Context, paths []string) (*Report, error) {
	results := make([]Result, len(paths))
	done := make([]bool, len(paths))
	conflicts := r.conflicts(paths)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(r.opts.Workers, len(paths))))

	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.recoverFile(gctx, path, conflicts[i])
			done[i] = true
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	if err != nil {
		completed := make([]Result, 0, len(results))
		for i, res := range results {
			if done[i] {
				completed = append(completed, res)
			}
		}
		return newReport(completed), err
	}
	return newReport(results), nil
}

func (r *Runner) recoverFile(ctx context.Context, path string, conflict error) (res Result) {
	start := time.Now()
	res = Result{Path: path}

	obs := r.provider(ctx)
	var span observability.Span
	if obs != nil {
		ctx, span = obs.StartSpan(ctx, observability.SpanRecoverFile,
			observability.String(observability.AttrFilePath, path))
		defer span.End()
	}

	defer func() {
		res.Duration = time.Since(start)
		r.observe(ctx, span, &res)
	}()

	if conflict != nil {
		return fail(res, conflict)
	}

	input, err := os.ReadFile(path)
	if err != nil {
		return fail(res, fmt.Errorf("failed to read %s: %w", path, err))
	}

	dir := r.dir(path)
	if r.opts.OutputDir != "" && !r.opts.DryRun {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fail(res, fmt.Errorf("failed to create %s: %w", dir, err))
		}
	}
	if span != nil {
		span.SetAttributes(observability.Int(observability.AttrFileBytes, len(input)))
	}

	outcome := repair.Recover(string(input), r.opts.RecoverOptions...)
	res.Passes = outcome.Passes
	res.Repairs = outcome.Repairs

	if !outcome.Recovered() {
		res.Failure = outcome.Failure
		res.Status = StatusFailed
		res.Err = outcome.Failure
		if r.opts.DebugDump && !r.opts.DryRun {
			dump := artifactPath(dir, path, DebugDumpSuffix)
			if err := os.WriteFile(dump, []byte(outcome.Text), filePerm); err != nil {
				res.Err = fmt.Errorf("%w (debug dump: %v)", outcome.Failure, err)
			} else {
				res.DebugDump = dump
				if span != nil {
					span.AddEvent(observability.EventDebugDumpWritten,
						observability.String(observability.AttrFileOutput, dump))
				}
			}
		}
		return res
	}

	res.Shape = outcome.Shape
	if outcome.Shape == nil {
		if nb, err := notebook.FromValue(outcome.Value); err == nil {
			res.Cells = notebook.Stats(nb)
		}
	}

	encoded, err := notebook.Marshal(outcome.Value, r.opts.Encode)
	if err != nil {
		return fail(res, fmt.Errorf("failed to encode %s: %w", path, err))
	}

	if blake3.Sum256(encoded) == blake3.Sum256(input) {
		res.Status = StatusUnchanged
		return res
	}
	res.Status = StatusRecovered
	if r.opts.DryRun {
		return res
	}

	if r.opts.Backup {
		backup := artifactPath(dir, path, BackupSuffix)
		if err := os.WriteFile(backup, input, filePerm); err != nil {
			return fail(res, fmt.Errorf("failed to write backup %s: %w", backup, err))
		}
		res.Backup = backup
		if span != nil {
			span.AddEvent(observability.EventBackupWritten,
				observability.String(observability.AttrFileBackup, backup))
		}
	}

	output := r.output(path)
	if err := writeFile(output, encoded); err != nil {
		return fail(res, err)
	}
	res.Output = output
	return res
}

func (r *Runner) provider(ctx context.Context) observability.Provider {
	if r.opts.Observer != nil {
		return r.opts.Observer
	}
	return observability.ProviderFromContext(ctx)
}

// dir is where output and artifacts for path are written.
func (r *Runner) dir(path string) string {
	if r.opts.OutputDir != "" {
		return r.opts.OutputDir
	}
	return filepath.Dir(path)
}

// output is where the recovered notebook for path is written.
func (r *Runner) output(path string) string {
	if r.opts.OutputDir != "" {
		return filepath.Join(r.opts.OutputDir, filepath.Base(path))
	}
	return path
}

// targets lists every file a run may write for path.
func (r *Runner) targets(path string) []string {
	targets := []string{filepath.Clean(r.output(path))}
	if r.opts.Backup {
		targets = append(targets, filepath.Clean(artifactPath(r.dir(path), path, BackupSuffix)))
	}
	if r.opts.DebugDump {
		targets = append(targets, filepath.Clean(artifactPath(r.dir(path), path, DebugDumpSuffix)))
	}
	return targets
}

// conflicts returns, by index, an error for every path whose targets overlap
// those of an earlier path. The first path to claim a target keeps it.
func (r *Runner) conflicts(paths []string) map[int]error {
	owners := make(map[string]string)
	conflicts := make(map[int]error)
	for i, path := range paths {
		targets := r.targets(path)
		for _, target := range targets {
			if owner, ok := owners[target]; ok {
				conflicts[i] = fmt.Errorf("%w: %s and %s both write %s", ErrOutputConflict, owner, path, target)
				break
			}
		}
		if conflicts[i] != nil {
			continue
		}
		for _, target := range targets {
			owners[target] = path
		}
	}
	return conflicts
}

func (r *Runner) observe(ctx context.Context, span observability.Span, res *Result) {
	obs := r.provider(ctx)
	if obs == nil {
		return
	}

	attrs := []observability.Attribute{
		observability.String(observability.AttrFilePath, res.Path),
		observability.Strings(observability.AttrRepairPasses, res.Passes),
		observability.Int(observability.AttrRepairCount, len(res.Repairs)),
	}

	switch res.Status {
	case StatusRecovered:
		obs.Counter(observability.MetricFilesRecovered).Add(ctx, 1)
		obs.Histogram(observability.MetricRepairCount).Record(ctx, float64(len(res.Repairs)))
		if res.Output != "" {
			attrs = append(attrs, observability.String(observability.AttrFileOutput, res.Output))
		}
		obs.Info(ctx, "notebook recovered", attrs...)
	case StatusUnchanged:
		obs.Counter(observability.MetricFilesUnchanged).Add(ctx, 1)
		attrs = append(attrs, observability.Bool(observability.AttrRepairUnchanged, true))
		obs.Debug(ctx, "notebook unchanged", attrs...)
	case StatusFailed:
		obs.Counter(observability.MetricFilesFailed).Add(ctx, 1)
		if f := res.Failure; f != nil {
			attrs = append(attrs,
				observability.String(observability.AttrFailureReason, f.Reason),
				observability.Int(observability.AttrFailureLine, f.Position.Line+1),
				observability.Int(observability.AttrFailureColumn, f.Position.Column+1),
			)
		}
		attrs = append(attrs, observability.Error(res.Err))
		obs.Error(ctx, "notebook failed", attrs...)
	}

	if res.Shape != nil {
		obs.Counter(observability.MetricShapeMismatch).Add(ctx, 1)
		obs.Warn(ctx, "recovered value is not notebook shaped",
			observability.String(observability.AttrFilePath, res.Path),
			observability.String(observability.AttrShapeWarning, res.Shape.Error()))
	}

	if span == nil {
		return
	}
	span.SetAttributes(attrs...)
	if res.Status == StatusFailed {
		span.RecordError(res.Err)
		span.SetStatus(observability.StatusError, res.Status.String())
	} else {
		span.SetStatus(observability.StatusOK, res.Status.String())
	}
}

func fail(res Result, err error) Result {
	res.Status = StatusFailed
	res.Err = err
	return res
}

// writeFile replaces path through a temporary file in the same directory so
// an interrupted run never leaves a truncated notebook.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file for %s: %w", path, err)
	}
	name := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(name, filePerm); err != nil {
		os.Remove(name)
		return fmt.Errorf("failed to set mode on %s: %w", path, err)
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
