package repair

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const validNotebook = `{
 "cells": [
  {
   "cell_type": "markdown",
   "metadata": {},
   "source": ["# Agents\n", "What is an agent?"]
  },
  {
   "cell_type": "code",
   "execution_count": null,
   "metadata": {},
   "outputs": [],
   "source": "print(\"hi\")\tdone"
  }
 ],
 "metadata": {"kernelspec": {"display_name": "Python 3", "language": "python", "name": "python3"}},
 "nbformat": 4,
 "nbformat_minor": 5
}`

func mustParse(t *testing.T, text string) any {
	t.Helper()
	v, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", text, err)
	}
	return v
}

func TestRecover_ValidInputIsUntouched(t *testing.T) {
	inputs := map[string]string{
		"notebook":         validNotebook,
		"escaped newline":  `{"source": ["a\nb"]}`,
		"escaped quotes":   `{"a": "say \"hi\"", "b": "c:\\"}`,
		"array":            `[1, 2.50, {"x": []}]`,
		"scalar":           `"just a string"`,
		"unicode":          `{"name": "café ☕", "emoji": "\ud83d\ude00"}`,
		"large number":     `{"n": 12345678901234567890}`,
		"nested notebooks": `{"cells": [{"source": "{\"cells\": 1}"}], "metadata": {}}`,
	}
	for name, text := range inputs {
		t.Run(name, func(t *testing.T) {
			out := Recover(text)
			if !out.Recovered() {
				t.Fatalf("Recover() failed: %v", out.Failure)
			}
			if len(out.Passes) != 0 {
				t.Errorf("Recover() applied passes %v to valid input", out.Passes)
			}
			if len(out.Repairs) != 0 {
				t.Errorf("Recover() made repairs %v to valid input", out.Repairs)
			}
			if out.Text != text {
				t.Errorf("Recover() changed the text")
			}
			if diff := cmp.Diff(mustParse(t, text), out.Value); diff != "" {
				t.Errorf("Recover() value mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRecover_LiteralNewlineInString(t *testing.T) {
	text := "{\"source\": [\"line one\nline two\"]}"

	out := Recover(text)
	if !out.Recovered() {
		t.Fatalf("Recover() failed: %v", out.Failure)
	}
	if diff := cmp.Diff([]string{PassEscapeControlChars}, out.Passes); diff != "" {
		t.Errorf("Passes mismatch (-want +got):\n%s", diff)
	}
	want := map[string]any{"source": []any{"line one\nline two"}}
	if diff := cmp.Diff(want, out.Value); diff != "" {
		t.Errorf("value mismatch (-want +got):\n%s", diff)
	}
	if out.Text != `{"source": ["line one\nline two"]}` {
		t.Errorf("Text = %q", out.Text)
	}
	if !errors.Is(out.Shape, ErrShapeMismatch) {
		t.Errorf("Shape = %v, want ErrShapeMismatch", out.Shape)
	}
}

func TestRecover_ControlCharacters(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  any
	}{
		{
			name:  "tab",
			input: "{\"a\": \"x\ty\"}",
			want:  map[string]any{"a": "x\ty"},
		},
		{
			name:  "carriage return and newline",
			input: "{\"a\": \"x\r\ny\"}",
			want:  map[string]any{"a": "x\r\ny"},
		},
		{
			name:  "other control character",
			input: "{\"a\": \"bell\x07\"}",
			want:  map[string]any{"a": "bell\x07"},
		},
		{
			name:  "newlines outside strings are layout",
			input: "{\n\t\"a\":\n\t\"x\ny\"\n}",
			want:  map[string]any{"a": "x\ny"},
		},
		{
			name:  "even backslashes close the string",
			input: "{\"a\": \"dir\\\\\", \"b\": \"x\ny\"}",
			want:  map[string]any{"a": `dir\`, "b": "x\ny"},
		},
		{
			name:  "odd backslashes keep the string open",
			input: "{\"a\": \"say \\\"hi\nthere\\\"\"}",
			want:  map[string]any{"a": "say \"hi\nthere\""},
		},
		{
			name:  "backslash before newline",
			input: "{\"cells\": [{\"source\": [\"a\\\nb\"]}], \"metadata\": {}}",
			want: map[string]any{
				"cells":    []any{map[string]any{"source": []any{"a\\\nb"}}},
				"metadata": map[string]any{},
			},
		},
		{
			name:  "backslash before tab",
			input: "{\"a\": \"x\\\ty\"}",
			want:  map[string]any{"a": "x\\\ty"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Recover(tt.input)
			if !out.Recovered() {
				t.Fatalf("Recover() failed: %v\n%s", out.Failure, out.Failure.Snippet)
			}
			if diff := cmp.Diff(tt.want, out.Value); diff != "" {
				t.Errorf("value mismatch (-want +got):\n%s", diff)
			}
			again := Recover(out.Text)
			if !again.Recovered() || len(again.Passes) != 0 {
				t.Errorf("second Recover() passes = %v, failure = %v, want a clean parse", again.Passes, again.Failure)
			}
		})
	}
}

func TestRecover_MissingCommaBetweenCells(t *testing.T) {
	text := "{\"cells\": [\n  {\"cell_type\": \"code\"}\n  {\"cell_type\": \"markdown\"}\n ],\n \"metadata\": {}\n}"

	out := Recover(text)
	if !out.Recovered() {
		t.Fatalf("Recover() failed: %v", out.Failure)
	}
	if diff := cmp.Diff([]string{PassInsertDelimiters}, out.Passes); diff != "" {
		t.Errorf("Passes mismatch (-want +got):\n%s", diff)
	}
	if len(out.Repairs) != 1 {
		t.Fatalf("len(Repairs) = %d, want 1", len(out.Repairs))
	}
	if got := out.Repairs[0].Position; got.Line != 1 || got.Column != 23 {
		t.Errorf("repair position = %+v, want line 1 column 23", got)
	}
	if out.Shape != nil {
		t.Errorf("Shape = %v, want nil", out.Shape)
	}
	cells := out.Value.(map[string]any)["cells"].([]any)
	if len(cells) != 2 {
		t.Errorf("len(cells) = %d, want 2", len(cells))
	}
}

func TestRecover_LeftmostRepairIsDeterministic(t *testing.T) {
	text := "{\"cells\": [\n{\"id\": 1}\n{\"id\": 2}\n]\n\"metadata\": {}}"
	want := "{\"cells\": [\n{\"id\": 1},\n{\"id\": 2}\n],\n\"metadata\": {}}"

	first := Recover(text)
	if !first.Recovered() {
		t.Fatalf("Recover() failed: %v", first.Failure)
	}
	if first.Text != want {
		t.Errorf("Text = %q, want %q", first.Text, want)
	}
	if len(first.Repairs) != 2 {
		t.Fatalf("len(Repairs) = %d, want 2", len(first.Repairs))
	}
	if first.Repairs[0].Position.Offset >= first.Repairs[1].Position.Offset {
		t.Errorf("repairs not in document order: %+v", first.Repairs)
	}

	for i := 0; i < 5; i++ {
		again := Recover(text)
		if again.Text != first.Text {
			t.Fatalf("run %d produced %q, want %q", i, again.Text, first.Text)
		}
	}
}

func TestRecover_StringElementsMissingComma(t *testing.T) {
	text := "{\"source\": [\"a\\n\"\n\"b\"]}"

	out := Recover(text)
	if !out.Recovered() {
		t.Fatalf("Recover() failed: %v", out.Failure)
	}
	want := map[string]any{"source": []any{"a\n", "b"}}
	if diff := cmp.Diff(want, out.Value); diff != "" {
		t.Errorf("value mismatch (-want +got):\n%s", diff)
	}
}

func TestRecover_ScalarBeforeMissingComma(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "numbers in array", input: `[1 2]`},
		{name: "number before key", input: `{"a": 1 "b": 2}`},
		{name: "literal before object", input: `[true {"a": 1}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Recover(tt.input)
			if out.Recovered() {
				t.Fatalf("Recover() = %v, want a failure", out.Value)
			}
			if !errors.Is(out.Err(), ErrUnrecoverableSyntax) {
				t.Errorf("Err() = %v, want ErrUnrecoverableSyntax", out.Err())
			}
			if len(out.Passes) != 0 {
				t.Errorf("Passes = %v, want none", out.Passes)
			}
		})
	}
}

func TestRecover_RepairLimit(t *testing.T) {
	text := "[" + strings.Repeat("{}", 100) + "]"

	out := Recover(text)
	if out.Recovered() {
		t.Fatal("Recover() succeeded, want repair limit failure")
	}
	if !errors.Is(out.Err(), ErrRepairLimitExceeded) {
		t.Errorf("Err() = %v, want ErrRepairLimitExceeded", out.Err())
	}
	if out.Failure.Reason != ReasonTooManyRepairs {
		t.Errorf("Reason = %q, want %q", out.Failure.Reason, ReasonTooManyRepairs)
	}
	if got := strings.Count(out.Text, ","); got != DefaultMaxInsertions {
		t.Errorf("inserted %d commas before giving up, want %d", got, DefaultMaxInsertions)
	}

	raised := Recover(text, WithMaxInsertions(200))
	if !raised.Recovered() {
		t.Fatalf("Recover() with raised cap failed: %v", raised.Failure)
	}
	if len(raised.Value.([]any)) != 100 {
		t.Errorf("len(value) = %d, want 100", len(raised.Value.([]any)))
	}
	if len(raised.Repairs) != 99 {
		t.Errorf("len(Repairs) = %d, want 99", len(raised.Repairs))
	}
}

func TestRecover_UnrecoverableSnippet(t *testing.T) {
	lines := []string{
		"{",
		` "cells": [`,
		`  {"a": 1},`,
		`  {"b": 2}`,
		` ,`,
		` "metadata": {}`,
		"}",
	}
	text := strings.Join(lines, "\n")

	out := Recover(text)
	if out.Recovered() {
		t.Fatal("Recover() succeeded on unbalanced input")
	}
	if !errors.Is(out.Err(), ErrUnrecoverableSyntax) {
		t.Errorf("Err() = %v, want ErrUnrecoverableSyntax", out.Err())
	}

	pos := out.Failure.Position
	if pos.Line != 5 || pos.Column != 11 {
		t.Errorf("Position = %+v, want line 5 column 11", pos)
	}
	final := strings.Split(out.Text, "\n")
	want := strings.Join(final[max(pos.Line-2, 0):min(pos.Line+3, len(final))], "\n")
	if out.Failure.Snippet != want {
		t.Errorf("Snippet = %q, want %q", out.Failure.Snippet, want)
	}
	if !strings.Contains(out.Failure.Snippet, final[pos.Line]) {
		t.Errorf("Snippet does not contain the failing line %q", final[pos.Line])
	}
	if out.Failure.SnippetLine != 3 {
		t.Errorf("SnippetLine = %d, want 3", out.Failure.SnippetLine)
	}
}

func TestRecover_EmptyInput(t *testing.T) {
	out := Recover("")
	if out.Recovered() {
		t.Fatal("Recover(\"\") succeeded")
	}
	if out.Failure.Position != (Position{}) {
		t.Errorf("Position = %+v, want zero", out.Failure.Position)
	}
}

func TestRecover_PassSelection(t *testing.T) {
	text := "{\"a\": \"x\ny\"}"

	out := Recover(text, WithoutPasses(PassEscapeControlChars))
	if out.Recovered() {
		t.Error("Recover() without escape pass succeeded on a raw newline")
	}

	out = Recover(text, WithPasses(PassEscapeControlChars))
	if !out.Recovered() {
		t.Errorf("Recover() with only the escape pass failed: %v", out.Failure)
	}

	missingComma := `[{} {}]`
	out = Recover(missingComma, WithPasses(PassEscapeControlChars))
	if out.Recovered() {
		t.Error("Recover() repaired a delimiter with the delimiter pass disabled")
	}
}

func TestValidate(t *testing.T) {
	if out := Validate(validNotebook); !out.Recovered() || len(out.Passes) != 0 {
		t.Errorf("Validate(valid) = %+v, want recovered without passes", out)
	}

	out := Validate("{\"a\": \"x\ny\"}")
	if out.Recovered() {
		t.Fatal("Validate() repaired a raw newline")
	}
	if !errors.Is(out.Err(), ErrUnrecoverableSyntax) {
		t.Errorf("Validate() error = %v, want ErrUnrecoverableSyntax", out.Err())
	}
	if out.Failure.Position.Line != 0 {
		t.Errorf("Validate() failure line = %d, want 0", out.Failure.Position.Line)
	}
}

func TestRecover_Fallback(t *testing.T) {
	text := `{'cells': [], 'metadata': {}}`

	if out := Recover(text); out.Recovered() {
		t.Fatal("Recover() without fallback succeeded on single quotes")
	}

	out := Recover(text, WithFallback(true))
	if !out.Recovered() {
		t.Fatalf("Recover() with fallback failed: %v", out.Failure)
	}
	if diff := cmp.Diff([]string{PassGenericRepair}, out.Passes); diff != "" {
		t.Errorf("Passes mismatch (-want +got):\n%s", diff)
	}
	if out.Shape != nil {
		t.Errorf("Shape = %v, want nil", out.Shape)
	}
}

func TestRecover_Idempotent(t *testing.T) {
	inputs := []string{
		"{\"source\": [\"line one\nline two\"]}",
		"{\"cells\": [{\"a\": 1}\n{\"b\": \"t\tab\"}], \"metadata\": {}}",
		"[\"x\" \"y\" [1] {\"k\": null}]",
		validNotebook,
	}
	for _, text := range inputs {
		first := Recover(text)
		if !first.Recovered() {
			t.Fatalf("Recover(%q) failed: %v", text, first.Failure)
		}
		encoded, err := json.Marshal(first.Value)
		if err != nil {
			t.Fatalf("Marshal() error = %v", err)
		}
		second := Recover(string(encoded))
		if !second.Recovered() {
			t.Fatalf("second Recover() failed: %v", second.Failure)
		}
		if len(second.Passes) != 0 {
			t.Errorf("second Recover() applied passes %v", second.Passes)
		}
		if diff := cmp.Diff(first.Value, second.Value); diff != "" {
			t.Errorf("value changed on second run (-first +second):\n%s", diff)
		}

		// Running the text passes again on their own output changes nothing.
		third := Recover(first.Text)
		if third.Text != first.Text || len(third.Passes) != 0 {
			t.Errorf("Recover(Recover(text).Text) = %q with passes %v", third.Text, third.Passes)
		}
	}
}

func TestRecover_MaxPassRuns(t *testing.T) {
	text := "{\"cells\": [{\"source\": \"a\nb\"}\n{}], \"metadata\": {}}"
	once := Recover(text)
	twice := Recover(text, WithMaxPassRuns(3))
	if diff := cmp.Diff(once.Value, twice.Value); diff != "" {
		t.Errorf("extra pass runs changed the result (-once +twice):\n%s", diff)
	}
	if diff := cmp.Diff(once.Passes, twice.Passes); diff != "" {
		t.Errorf("extra pass runs changed the pass list (-once +twice):\n%s", diff)
	}
}

func TestRecover_Concurrent(t *testing.T) {
	text := "{\"cells\": [{\"source\": \"a\nb\"}\n{}], \"metadata\": {}}"
	want := Recover(text)

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := Recover(text)
			if got.Text != want.Text {
				errs <- got.Text
			}
		}()
	}
	wg.Wait()
	close(errs)
	for got := range errs {
		t.Errorf("concurrent Recover() produced %q, want %q", got, want.Text)
	}
}
