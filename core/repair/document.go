package repair

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Position is a location inside a Document. Line and Column are 0-indexed;
// Column counts runes from the start of the line, Offset counts bytes from
// the start of the text.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Offset int `json:"offset"`
}

// Document is an immutable text buffer under repair. The line index is built
// on first use and never shared between documents.
type Document struct {
	text  string
	lines []int // byte offset of each line start
}

// NewDocument wraps text in a Document.
func NewDocument(text string) *Document {
	return &Document{text: text}
}

// Text returns the document content.
func (d *Document) Text() string {
	return d.text
}

// Len returns the content length in bytes.
func (d *Document) Len() int {
	return len(d.text)
}

func (d *Document) index() []int {
	if d.lines != nil {
		return d.lines
	}
	lines := []int{0}
	for i := 0; i < len(d.text); i++ {
		if d.text[i] == '\n' {
			lines = append(lines, i+1)
		}
	}
	d.lines = lines
	return lines
}

// LineCount returns the number of lines. An empty document has one empty line.
func (d *Document) LineCount() int {
	return len(d.index())
}

// Line returns line n without its terminating newline, or "" when n is out of range.
func (d *Document) Line(n int) string {
	lines := d.index()
	if n < 0 || n >= len(lines) {
		return ""
	}
	end := len(d.text)
	if n+1 < len(lines) {
		end = lines[n+1] - 1
	}
	return d.text[lines[n]:end]
}

// Position translates a byte offset into a line/column pair. Offsets past the
// end are clamped to the end of the text.
func (d *Document) Position(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(d.text) {
		offset = len(d.text)
	}
	lines := d.index()
	// last line start <= offset
	line := sort.Search(len(lines), func(i int) bool { return lines[i] > offset }) - 1
	return Position{
		Line:   line,
		Column: utf8.RuneCountInString(d.text[lines[line]:offset]),
		Offset: offset,
	}
}

// Snippet returns lines [line-radius, line+radius] verbatim, clamped to the
// document bounds and joined with newlines.
func (d *Document) Snippet(line, radius int) string {
	lines := d.index()
	if len(lines) == 0 {
		return ""
	}
	if line < 0 {
		line = 0
	}
	if line >= len(lines) {
		line = len(lines) - 1
	}
	from := max(line-radius, 0)
	to := min(line+radius, len(lines)-1)

	var b strings.Builder
	for i := from; i <= to; i++ {
		if i > from {
			b.WriteByte('\n')
		}
		b.WriteString(d.Line(i))
	}
	return b.String()
}

// Insert returns a new Document with s inserted at the byte offset.
func (d *Document) Insert(offset int, s string) *Document {
	if offset < 0 {
		offset = 0
	}
	if offset > len(d.text) {
		offset = len(d.text)
	}
	return NewDocument(d.text[:offset] + s + d.text[offset:])
}
