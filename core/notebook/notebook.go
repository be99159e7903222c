package notebook

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Cell types defined by nbformat 4.
const (
	CellTypeCode     = "code"
	CellTypeMarkdown = "markdown"
	CellTypeRaw      = "raw"
)

// Notebook is the typed view of an nbformat 4 document. Metadata keys other
// than the kernel and language descriptions are not retained; write the
// generic recovered value when the full document must survive.
type Notebook struct {
	Cells         []Cell   `json:"cells"`
	Metadata      Metadata `json:"metadata"`
	NBFormat      int      `json:"nbformat"`
	NBFormatMinor int      `json:"nbformat_minor"`
}

// Metadata is the notebook-level metadata.
type Metadata struct {
	Kernelspec   *Kernelspec   `json:"kernelspec,omitempty"`
	LanguageInfo *LanguageInfo `json:"language_info,omitempty"`
}

// Kernelspec identifies the kernel a notebook runs on.
type Kernelspec struct {
	DisplayName string `json:"display_name"`
	Language    string `json:"language"`
	Name        string `json:"name"`
}

// LanguageInfo describes the notebook language for front ends.
type LanguageInfo struct {
	CodemirrorMode    *CodemirrorMode `json:"codemirror_mode,omitempty"`
	FileExtension     string          `json:"file_extension,omitempty"`
	Mimetype          string          `json:"mimetype,omitempty"`
	Name              string          `json:"name"`
	NBConvertExporter string          `json:"nbconvert_exporter,omitempty"`
	PygmentsLexer     string          `json:"pygments_lexer,omitempty"`
	Version           string          `json:"version,omitempty"`
}

// CodemirrorMode selects the editor highlighting mode.
type CodemirrorMode struct {
	Name    string `json:"name"`
	Version int    `json:"version"`
}

// Cell is one markdown, code or raw cell. Outputs and ExecutionCount are only
// written for code cells, where nbformat requires them.
type Cell struct {
	ID             string
	CellType       string
	Metadata       map[string]any
	Source         Source
	Outputs        []any
	ExecutionCount *int
}

type cellJSON struct {
	ID             string         `json:"id,omitempty"`
	CellType       string         `json:"cell_type"`
	Metadata       map[string]any `json:"metadata"`
	Source         Source         `json:"source"`
	Outputs        []any          `json:"outputs,omitempty"`
	ExecutionCount *int           `json:"execution_count,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (c Cell) MarshalJSON() ([]byte, error) {
	m := map[string]any{
		"cell_type": c.CellType,
		"metadata":  c.Metadata,
		"source":    c.Source,
	}
	if c.Metadata == nil {
		m["metadata"] = map[string]any{}
	}
	if c.ID != "" {
		m["id"] = c.ID
	}
	if c.CellType == CellTypeCode {
		outputs := c.Outputs
		if outputs == nil {
			outputs = []any{}
		}
		m["outputs"] = outputs
		m["execution_count"] = c.ExecutionCount
	}
	return json.Marshal(m)
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Cell) UnmarshalJSON(data []byte) error {
	var raw cellJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Cell(raw)
	return nil
}

// Source is cell text in the nbformat line convention: every line but the
// last keeps its trailing newline. It decodes from either a single string or
// a list of strings.
type Source []string

// SplitSource splits text into Source lines.
func SplitSource(text string) Source {
	if text == "" {
		return Source{}
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return Source(lines)
}

// String joins the lines back into the cell text.
func (s Source) String() string {
	return strings.Join(s, "")
}

// MarshalJSON implements json.Marshaler. A nil Source encodes as [].
func (s Source) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(s))
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Source) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*s = SplitSource(text)
		return nil
	}
	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return fmt.Errorf("source must be a string or a list of strings: %w", err)
	}
	*s = Source(lines)
	return nil
}

// FromValue decodes a generic JSON value, as produced by repair.Recover, into
// a Notebook.
func FromValue(v any) (*Notebook, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode value: %w", err)
	}
	var nb Notebook
	if err := json.Unmarshal(data, &nb); err != nil {
		return nil, fmt.Errorf("failed to decode notebook: %w", err)
	}
	return &nb, nil
}

// CellStats counts cells per type.
type CellStats struct {
	Code     int `json:"code"`
	Markdown int `json:"markdown"`
	Raw      int `json:"raw"`
	Other    int `json:"other"`
}

// Total returns the number of cells counted.
func (s CellStats) Total() int {
	return s.Code + s.Markdown + s.Raw + s.Other
}

// Stats counts the cells of nb by type.
func Stats(nb *Notebook) CellStats {
	var s CellStats
	if nb == nil {
		return s
	}
	for _, c := range nb.Cells {
		switch c.CellType {
		case CellTypeCode:
			s.Code++
		case CellTypeMarkdown:
			s.Markdown++
		case CellTypeRaw:
			s.Raw++
		default:
			s.Other++
		}
	}
	return s
}
