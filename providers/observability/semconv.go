package observability

// Attribute keys, span names and metric names shared by the batch runner and
// the CLI.

// --- File Attributes ---

const (
	// AttrFilePath is the input path being processed
	AttrFilePath = "file.path"

	// AttrFileOutput is the path the result was written to
	AttrFileOutput = "file.output"

	// AttrFileBackup is the path of the backup of the original bytes
	AttrFileBackup = "file.backup"

	// AttrFileBytes is the input size in bytes
	AttrFileBytes = "file.bytes"
)

// --- Repair Attributes ---

const (
	// AttrRepairPasses lists the passes that changed the document
	AttrRepairPasses = "repair.passes"

	// AttrRepairCount is the number of individual edits
	AttrRepairCount = "repair.count"

	// AttrRepairUnchanged is set when the encoded output equals the input
	AttrRepairUnchanged = "repair.unchanged"

	// AttrFailureReason is the parser or limit message of a failed recovery
	AttrFailureReason = "repair.failure.reason"

	// AttrFailureLine is the 1-based line of a failure
	AttrFailureLine = "repair.failure.line"

	// AttrFailureColumn is the 1-based column of a failure
	AttrFailureColumn = "repair.failure.column"

	// AttrShapeWarning describes why a value is not notebook shaped
	AttrShapeWarning = "repair.shape_warning"
)

// --- Notebook Attributes ---

const (
	// AttrCellsCode is the number of code cells
	AttrCellsCode = "notebook.cells.code"

	// AttrCellsMarkdown is the number of markdown cells
	AttrCellsMarkdown = "notebook.cells.markdown"
)

// --- Status Attributes ---

const (
	// AttrError is the error message
	AttrError = "error"

	// AttrStatus is the span status
	AttrStatus = "status"

	// AttrStatusDescription is the status description
	AttrStatusDescription = "status_description"
)

// --- Span Names ---

const (
	// SpanRecoverFile wraps reading, recovering and writing one file
	SpanRecoverFile = "nbrepair.recover_file"

	// SpanCheckFile wraps validating one file
	SpanCheckFile = "nbrepair.check_file"
)

// --- Event Names ---

const (
	// EventBackupWritten marks that the original bytes were saved
	EventBackupWritten = "backup.written"

	// EventDebugDumpWritten marks that the failed repair text was saved
	EventDebugDumpWritten = "debug_dump.written"
)

// --- Metric Names ---

const (
	// MetricFilesRecovered counts files recovered and written
	MetricFilesRecovered = "nbrepair.files.recovered"

	// MetricFilesUnchanged counts files that needed no rewrite
	MetricFilesUnchanged = "nbrepair.files.unchanged"

	// MetricFilesFailed counts files that could not be recovered or read
	MetricFilesFailed = "nbrepair.files.failed"

	// MetricShapeMismatch counts recovered values that are not notebook shaped
	MetricShapeMismatch = "nbrepair.files.shape_mismatch"

	// MetricRepairCount records the number of edits per file
	MetricRepairCount = "nbrepair.repairs.per_file"
)
