package repair

import (
	"errors"
	"fmt"
)

var (
	// ErrStructuralAmbiguity names the case where a missing delimiter could be
	// inserted at more than one site. The delimiter pass resolves it by always
	// taking the leftmost site the parser reports, so Recover never returns it;
	// it exists so callers and docs can refer to the policy by name.
	ErrStructuralAmbiguity = errors.New("nbrepair: ambiguous structural repair")

	// ErrRepairLimitExceeded is the Failure kind when the delimiter pass would
	// need more insertions than the configured cap.
	ErrRepairLimitExceeded = errors.New("nbrepair: repair limit exceeded")

	// ErrUnrecoverableSyntax is the Failure kind when strict parsing still
	// fails after every enabled pass has run.
	ErrUnrecoverableSyntax = errors.New("nbrepair: unrecoverable syntax")

	// ErrShapeMismatch flags a value that parsed but does not look like a
	// notebook. It is a warning: the value is still returned.
	ErrShapeMismatch = errors.New("nbrepair: value is not notebook shaped")
)

// ReasonTooManyRepairs is the Failure reason reported with ErrRepairLimitExceeded.
const ReasonTooManyRepairs = "too many structural repairs"

// Failure describes why a document could not be recovered. Position and
// Snippet refer to the final, post-repair text.
type Failure struct {
	Kind     error    `json:"-"`
	Position Position `json:"position"`
	Reason   string   `json:"reason"`
	Snippet  string   `json:"snippet"`

	// SnippetLine is the 0-indexed line number of the first Snippet line.
	SnippetLine int `json:"snippet_line"`
}

func newFailure(kind error, doc *Document, pos Position, reason string) *Failure {
	return &Failure{
		Kind:        kind,
		Position:    pos,
		Reason:      reason,
		Snippet:     doc.Snippet(pos.Line, snippetRadius),
		SnippetLine: max(pos.Line-snippetRadius, 0),
	}
}

// Error implements error. Line and column are printed 1-based for humans.
func (f *Failure) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", f.Position.Line+1, f.Position.Column+1, f.Reason)
}

// Unwrap exposes the failure kind to errors.Is.
func (f *Failure) Unwrap() error {
	return f.Kind
}
