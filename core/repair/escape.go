package repair

import (
	"fmt"
	"strings"
)

// escapePass replaces control characters found physically inside string
// literals with their escape sequences. String boundaries are tracked with a
// small state machine: a quote closes a string only when it is not escaped,
// i.e. preceded by an even number of consecutive backslashes.
type escapePass struct{}

func (escapePass) Name() string { return PassEscapeControlChars }

func (p escapePass) Repair(doc *Document) (*Document, []Repair, error) {
	text := doc.Text()

	var (
		b        strings.Builder
		repairs  []Repair
		inString bool
		escaped  bool
		last     int // start of the not yet copied span
	)
	escape := func(i int, prefix, detail string) {
		if repairs == nil {
			b.Grow(len(text) + 16)
		}
		b.WriteString(text[last:i])
		b.WriteString(prefix)
		b.WriteString(escapeControl(text[i]))
		last = i + 1
		repairs = append(repairs, Repair{
			Pass:     p.Name(),
			Position: doc.Position(i),
			Detail:   detail,
		})
	}
	for i := 0; i < len(text); i++ {
		c := text[i]
		if !inString {
			if c == '"' {
				inString = true
			}
			continue
		}
		if escaped {
			escaped = false
			// A backslash cannot escape a raw control character, so the
			// backslash itself is kept as a literal one.
			if c < 0x20 {
				escape(i, `\`, fmt.Sprintf("escaped backslash before literal %s inside string", controlName(c)))
			}
			continue
		}
		switch {
		case c == '\\':
			escaped = true
		case c == '"':
			inString = false
		case c < 0x20:
			escape(i, "", fmt.Sprintf("escaped literal %s inside string", controlName(c)))
		}
	}
	if len(repairs) == 0 {
		return doc, nil, nil
	}
	b.WriteString(text[last:])
	return NewDocument(b.String()), repairs, nil
}

func escapeControl(c byte) string {
	switch c {
	case '\n':
		return `\n`
	case '\t':
		return `\t`
	case '\r':
		return `\r`
	case '\b':
		return `\b`
	case '\f':
		return `\f`
	}
	return fmt.Sprintf(`\u%04x`, c)
}

func controlName(c byte) string {
	switch c {
	case '\n':
		return "newline"
	case '\t':
		return "tab"
	case '\r':
		return "carriage return"
	}
	return fmt.Sprintf("control character U+%04X", c)
}
