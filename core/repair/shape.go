package repair

import "fmt"

// CheckShape reports whether v is plausibly a notebook: a mapping with a
// "cells" sequence and a "metadata" mapping. The returned error wraps
// ErrShapeMismatch and names the first rule that failed.
func CheckShape(v any) error {
	root, ok := v.(map[string]any)
	if !ok {
		return fmt.Errorf("%w: top-level value is %s, want object", ErrShapeMismatch, kindOf(v))
	}
	cells, ok := root["cells"]
	if !ok {
		return fmt.Errorf("%w: missing \"cells\"", ErrShapeMismatch)
	}
	if _, ok := cells.([]any); !ok {
		return fmt.Errorf("%w: \"cells\" is %s, want array", ErrShapeMismatch, kindOf(cells))
	}
	meta, ok := root["metadata"]
	if !ok {
		return fmt.Errorf("%w: missing \"metadata\"", ErrShapeMismatch)
	}
	if _, ok := meta.(map[string]any); !ok {
		return fmt.Errorf("%w: \"metadata\" is %s, want object", ErrShapeMismatch, kindOf(meta))
	}
	return nil
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	default:
		return "number"
	}
}
