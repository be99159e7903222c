package repair

// Pass names, in pipeline order.
const (
	PassEscapeControlChars = "escape-control-chars"
	PassInsertDelimiters   = "insert-missing-delimiters"
	PassUnwrapDoubleEncode = "unwrap-double-encoded"
	PassGenericRepair      = "generic-repair"
)

// Pass is one idempotent text transformation. A pass that finds nothing to do
// returns the input document unchanged and no repairs. A non-nil error must
// be a *Failure and stops the pipeline.
type Pass interface {
	Name() string
	Repair(doc *Document) (*Document, []Repair, error)
}

// Repair records a single edit made by a pass.
type Repair struct {
	Pass     string   `json:"pass"`
	Position Position `json:"position"`
	Detail   string   `json:"detail"`
}

// textPasses returns the enabled text passes in their fixed order.
func textPasses(cfg *config) []Pass {
	var passes []Pass
	if cfg.enabled(PassEscapeControlChars) {
		passes = append(passes, escapePass{})
	}
	if cfg.enabled(PassInsertDelimiters) {
		passes = append(passes, delimiterPass{maxInsertions: cfg.maxInsertions})
	}
	return passes
}
