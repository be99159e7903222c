package repair

import (
	"encoding/json"
	"strings"
)

// unwrapDoubleEncoded detects a notebook that was serialized whole into the
// source of a single cell and recovers the inner document. The inner call
// runs with unwrapping disabled, so at most one level is removed.
func unwrapDoubleEncoded(value any, cfg *config) (Outcome, bool) {
	src, ok := singleCellSource(value)
	if !ok {
		return Outcome{}, false
	}

	inner := *cfg
	inner.unwrap = false

	candidates := []string{src}
	if strings.Contains(src, `\"`) {
		if unquoted, ok := unquote(src); ok {
			candidates = append(candidates, unquoted)
		}
	}
	for _, text := range candidates {
		out := recoverWith(text, &inner)
		if out.Recovered() && hasNotebookKeys(out.Value) {
			return out, true
		}
	}
	return Outcome{}, false
}

// singleCellSource returns the concatenated source of the only cell when it
// looks like a JSON object.
func singleCellSource(value any) (string, bool) {
	root, ok := value.(map[string]any)
	if !ok {
		return "", false
	}
	cells, ok := root["cells"].([]any)
	if !ok || len(cells) != 1 {
		return "", false
	}
	cell, ok := cells[0].(map[string]any)
	if !ok {
		return "", false
	}

	var src string
	switch s := cell["source"].(type) {
	case string:
		src = s
	case []any:
		var b strings.Builder
		for _, line := range s {
			str, ok := line.(string)
			if !ok {
				return "", false
			}
			b.WriteString(str)
		}
		src = b.String()
	default:
		return "", false
	}

	src = strings.TrimSpace(src)
	if !strings.HasPrefix(src, "{") {
		return "", false
	}
	return src, true
}

// unquote removes one level of JSON string escaping, for notebooks that were
// escaped twice before landing in the cell.
func unquote(s string) (string, bool) {
	doc, _, _ := escapePass{}.Repair(NewDocument(`"` + s + `"`))
	var out string
	if err := json.Unmarshal([]byte(doc.Text()), &out); err != nil {
		return "", false
	}
	return strings.TrimSpace(out), true
}

func hasNotebookKeys(v any) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	_, hasCells := m["cells"]
	_, hasMeta := m["metadata"]
	return hasCells && hasMeta
}
