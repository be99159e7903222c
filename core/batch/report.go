package batch

import (
	"time"

	"github.com/leofalp/nbrepair/core/notebook"
	"github.com/leofalp/nbrepair/core/repair"
)

// Status is the per-file outcome of a run.
type Status int

const (
	// StatusRecovered means the file was repaired and written (or would have
	// been, in a dry run).
	StatusRecovered Status = iota
	// StatusUnchanged means the re-encoded notebook is byte-identical to the input.
	StatusUnchanged
	// StatusFailed means the file could not be read, recovered or written.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusRecovered:
		return "recovered"
	case StatusUnchanged:
		return "unchanged"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result describes what happened to one file.
type Result struct {
	Path   string
	Status Status

	// Output, Backup and DebugDump are the paths written for this file, empty
	// when nothing was written.
	Output    string
	Backup    string
	DebugDump string

	Passes  []string
	Repairs []repair.Repair
	// Failure is set when recovery (or strict checking) failed.
	Failure *repair.Failure
	// Shape is a non-fatal ErrShapeMismatch warning.
	Shape error
	// Err is set for I/O and encoding errors, and mirrors Failure otherwise.
	Err error

	Cells    notebook.CellStats
	Duration time.Duration
}

// Report aggregates the results of a run, in input order.
type Report struct {
	Results       []Result
	Recovered     int
	Unchanged     int
	Failed        int
	ShapeWarnings int
}

// HasFailures reports whether any file failed.
func (r *Report) HasFailures() bool {
	return r.Failed > 0
}

func newReport(results []Result) *Report {
	r := &Report{Results: results}
	for _, res := range results {
		switch res.Status {
		case StatusRecovered:
			r.Recovered++
		case StatusUnchanged:
			r.Unchanged++
		case StatusFailed:
			r.Failed++
		}
		if res.Shape != nil {
			r.ShapeWarnings++
		}
	}
	return r
}
