package repair

import (
	"encoding/json"
	"fmt"
)

// delimiterPass inserts commas the parser asks for between two elements. The
// parser reports the first error in document order, so when several sites
// are missing a comma the leftmost one is always repaired first.
type delimiterPass struct {
	maxInsertions int
}

func (delimiterPass) Name() string { return PassInsertDelimiters }

func (p delimiterPass) Repair(doc *Document) (*Document, []Repair, error) {
	var repairs []Repair
	for {
		se, ok := delimiterExpected(checkSyntax(doc.Text()))
		if !ok {
			// Valid, or an error class this pass does not handle.
			return doc, repairs, nil
		}
		at := errorOffset(se, doc.Len())
		site, ok := insertionSite(doc.Text(), at)
		if !ok {
			return doc, repairs, nil
		}
		if len(repairs) >= p.maxInsertions {
			return doc, repairs, newFailure(ErrRepairLimitExceeded, doc, doc.Position(at), ReasonTooManyRepairs)
		}
		pos := doc.Position(site)
		doc = doc.Insert(site, ",")
		repairs = append(repairs, Repair{
			Pass:     p.Name(),
			Position: pos,
			Detail:   fmt.Sprintf("inserted ',' before %q", doc.Text()[at+1]),
		})
	}
}

// checkSyntax validates text without building a value.
func checkSyntax(text string) error {
	var raw json.RawMessage
	return json.Unmarshal([]byte(text), &raw)
}

// insertionSite returns the offset right after the element that precedes the
// rejected character at, provided the rejected character opens a new element
// and the preceding one was closed.
func insertionSite(text string, at int) (int, bool) {
	if at >= len(text) {
		return 0, false
	}
	switch text[at] {
	case '{', '[', '"':
	default:
		return 0, false
	}
	j := at - 1
	for j >= 0 && isSpace(text[j]) {
		j--
	}
	if j < 0 {
		return 0, false
	}
	switch text[j] {
	case '}', ']', '"':
		return j + 1, true
	}
	return 0, false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
