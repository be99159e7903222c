package utils

import (
	"fmt"
	"unicode/utf8"
)

const (
	// DefaultMaxStringLength is the default maximum length, in runes, for truncated strings.
	DefaultMaxStringLength = 500

	ellipsis = "…"
)

// TruncateString shortens s to at most maxLen runes, appending a suffix that
// records the original length so readers know text was omitted. If maxLen is
// zero or negative, DefaultMaxStringLength is used.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxStringLength
	}
	n := utf8.RuneCountInString(s)
	if n <= maxLen {
		return s
	}
	return fmt.Sprintf("%s... (truncated, total: %d chars)", prefix(s, maxLen), n)
}

// Window returns at most width runes of line around the rune column col,
// marking cut ends with an ellipsis. Short lines come back unchanged. It is
// used to show a failure column inside a minified notebook that sits on a
// single very long line.
func Window(line string, col, width int) string {
	runes := []rune(line)
	if width <= 0 || len(runes) <= width {
		return line
	}
	col = max(0, min(col, len(runes)))

	start := max(0, col-width/2)
	end := start + width
	if end > len(runes) {
		end = len(runes)
		start = end - width
	}

	out := string(runes[start:end])
	if start > 0 {
		out = ellipsis + out
	}
	if end < len(runes) {
		out += ellipsis
	}
	return out
}

func prefix(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
