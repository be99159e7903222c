package notebook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// DefaultIndent matches the one-space indentation Jupyter tooling writes.
const DefaultIndent = 1

// EncodeOptions controls the formatting of encoded documents. Neither option
// changes the decoded value.
type EncodeOptions struct {
	// Indent is the number of spaces per nesting level; 0 writes compact JSON.
	Indent int
	// EscapeNonASCII writes every non-ASCII character as a \uXXXX escape.
	EscapeNonASCII bool
}

// DefaultEncodeOptions returns one-space indentation with non-ASCII text kept as is.
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{Indent: DefaultIndent}
}

// Marshal encodes v with the given options. HTML characters are not escaped,
// object keys come out sorted and the output ends with a newline.
func Marshal(v any, opts EncodeOptions) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if opts.Indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", opts.Indent))
	}
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode notebook: %w", err)
	}
	out := buf.Bytes()
	if opts.EscapeNonASCII {
		out = escapeNonASCII(out)
	}
	return out, nil
}

// Encode writes v to w, see Marshal.
func Encode(w io.Writer, v any, opts EncodeOptions) error {
	data, err := Marshal(v, opts)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// escapeNonASCII rewrites encoder output so it is pure ASCII. Non-ASCII bytes
// can only occur inside string literals there, so no quoting state is needed.
func escapeNonASCII(data []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		data = data[size:]
		switch {
		case r < utf8.RuneSelf:
			out.WriteByte(byte(r))
		case r > 0xFFFF:
			hi, lo := utf16.EncodeRune(r)
			fmt.Fprintf(&out, `\u%04x\u%04x`, hi, lo)
		default:
			fmt.Fprintf(&out, `\u%04x`, r)
		}
	}
	return out.Bytes()
}
