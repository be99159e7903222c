package notebook

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/google/uuid"
)

// ErrUnterminatedMarkdown is returned by Convert when a triple-quoted block
// is never closed.
var ErrUnterminatedMarkdown = errors.New("nbrepair: unterminated markdown block")

const (
	markdownFence        = `"""`
	defaultPythonVersion = "3.8.0"
)

// ConvertOptions configures Convert.
type ConvertOptions struct {
	// Name seeds the cell ids, so converting the same script under the same
	// name always yields the same ids. Usually the output file name.
	Name string
	// PythonVersion is recorded in language_info; defaults to 3.8.0.
	PythonVersion string
}

// New returns an nbformat 4.5 notebook with a Python 3 kernel.
func New(pythonVersion string, cells ...Cell) *Notebook {
	if pythonVersion == "" {
		pythonVersion = defaultPythonVersion
	}
	if cells == nil {
		cells = []Cell{}
	}
	return &Notebook{
		Cells: cells,
		Metadata: Metadata{
			Kernelspec: &Kernelspec{
				DisplayName: "Python 3",
				Language:    "python",
				Name:        "python3",
			},
			LanguageInfo: &LanguageInfo{
				CodemirrorMode:    &CodemirrorMode{Name: "ipython", Version: 3},
				FileExtension:     ".py",
				Mimetype:          "text/x-python",
				Name:              "python",
				NBConvertExporter: "python",
				PygmentsLexer:     "ipython3",
				Version:           pythonVersion,
			},
		},
		NBFormat:      4,
		NBFormatMinor: 5,
	}
}

type block struct {
	cellType string
	lines    []string
}

// Convert builds a notebook from an annotated Python script. Triple-quoted
// blocks starting in column 0 become markdown cells and the code between
// them becomes code cells. Markdown written as HTML is converted to markdown.
func Convert(script string, opts ConvertOptions) (*Notebook, error) {
	blocks, err := splitBlocks(script)
	if err != nil {
		return nil, err
	}

	cells := make([]Cell, 0, len(blocks))
	for _, b := range blocks {
		text := strings.Join(trimBlankLines(b.lines), "\n")
		if text == "" {
			continue
		}
		if b.cellType == CellTypeMarkdown && looksLikeHTML(text) {
			md, err := htmltomarkdown.ConvertString(text)
			if err != nil {
				return nil, fmt.Errorf("failed to convert HTML block to markdown: %w", err)
			}
			text = strings.TrimSpace(md)
		}
		cell := Cell{
			ID:       cellID(opts.Name, len(cells), b.cellType),
			CellType: b.cellType,
			Metadata: map[string]any{},
			Source:   SplitSource(text),
		}
		if b.cellType == CellTypeCode {
			cell.Outputs = []any{}
		}
		cells = append(cells, cell)
	}
	return New(opts.PythonVersion, cells...), nil
}

func splitBlocks(script string) ([]block, error) {
	lines := strings.Split(strings.ReplaceAll(script, "\r\n", "\n"), "\n")

	var (
		blocks []block
		code   []string
	)
	flush := func() {
		if len(code) > 0 {
			blocks = append(blocks, block{cellType: CellTypeCode, lines: code})
			code = nil
		}
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if !strings.HasPrefix(line, markdownFence) {
			code = append(code, line)
			continue
		}
		flush()

		rest := line[len(markdownFence):]
		if end := strings.Index(rest, markdownFence); end >= 0 {
			blocks = append(blocks, block{cellType: CellTypeMarkdown, lines: []string{rest[:end]}})
			continue
		}

		start := i
		md := []string{rest}
		closed := false
		for i++; i < len(lines); i++ {
			if end := strings.Index(lines[i], markdownFence); end >= 0 {
				md = append(md, lines[i][:end])
				closed = true
				break
			}
			md = append(md, lines[i])
		}
		if !closed {
			return nil, fmt.Errorf("%w: opened on line %d", ErrUnterminatedMarkdown, start+1)
		}
		blocks = append(blocks, block{cellType: CellTypeMarkdown, lines: md})
	}
	flush()
	return blocks, nil
}

func trimBlankLines(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func looksLikeHTML(text string) bool {
	return strings.HasPrefix(text, "<") && (strings.Contains(text, "</") || strings.Contains(text, "/>"))
}

// cellID derives a stable nbformat cell id from the notebook name, the cell
// index and its type.
func cellID(name string, index int, cellType string) string {
	key := name + "/" + strconv.Itoa(index) + "/" + cellType
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}
