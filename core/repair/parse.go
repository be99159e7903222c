package repair

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

const unexpectedEOF = "unexpected end of JSON input"

// Parse strictly decodes text into the generic value model: map[string]any,
// []any, string, json.Number, bool and nil. Trailing data is rejected. Syntax
// errors are returned as *json.SyntaxError so their offsets can be mapped
// back onto the text.
func Parse(text string) (any, error) {
	data := []byte(text)
	// json.Valid does not report where; Unmarshal into RawMessage runs the
	// same scanner and returns the offset.
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	return value, nil
}

// errorOffset returns the byte offset of the character the parser rejected.
// encoding/json reports the number of bytes consumed, which includes the
// offending character, except at end of input.
func errorOffset(err *json.SyntaxError, textLen int) int {
	offset := int(err.Offset)
	if err.Error() != unexpectedEOF && offset > 0 {
		offset--
	}
	return min(max(offset, 0), textLen)
}

// delimiterExpected reports whether err is the parser asking for a comma
// between two elements.
func delimiterExpected(err error) (*json.SyntaxError, bool) {
	var se *json.SyntaxError
	if !errors.As(err, &se) {
		return nil, false
	}
	msg := se.Error()
	if strings.HasSuffix(msg, "after object key:value pair") || strings.HasSuffix(msg, "after array element") {
		return se, true
	}
	return se, false
}
