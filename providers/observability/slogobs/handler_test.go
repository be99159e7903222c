package slogobs

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func newTestLogger(format Format, level slog.Level, colors bool) (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	h := NewHandler(&HandlerOptions{Format: format, Level: level, Output: &buf, Colors: colors})
	return slog.New(h), &buf
}

func TestHandler_Compact(t *testing.T) {
	logger, buf := newTestLogger(FormatCompact, slog.LevelDebug, false)
	logger.Info("recovered", "file.path", "a.ipynb", "repair.count", 2)

	out := buf.String()
	for _, want := range []string{"INFO", "recovered", " → ", `"file.path":"a.ipynb"`, `"repair.count":2`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
	if strings.Count(out, "\n") != 1 {
		t.Errorf("compact output should be one line, got: %q", out)
	}
}

func TestHandler_CompactWithoutAttrs(t *testing.T) {
	logger, buf := newTestLogger(FormatCompact, slog.LevelDebug, false)
	logger.Info("done")

	if strings.Contains(buf.String(), "→") {
		t.Errorf("separator written without attributes: %q", buf.String())
	}
}

func TestHandler_Pretty(t *testing.T) {
	logger, buf := newTestLogger(FormatPretty, slog.LevelDebug, false)
	logger.Warn("shape mismatch", "b", 2, "a", "x")

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("pretty output has %d lines, want 3: %q", len(lines), out)
	}
	if !strings.Contains(lines[0], "WARN") || !strings.Contains(lines[0], "shape mismatch") {
		t.Errorf("header line = %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "├─ a: x") {
		t.Errorf("first attribute line = %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], "└─ b: 2") {
		t.Errorf("last attribute line = %q", lines[2])
	}
}

func TestHandler_JSON(t *testing.T) {
	logger, buf := newTestLogger(FormatJSON, slog.LevelDebug, true)
	logger.Error("failed", "file.path", "b.ipynb")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v: %q", err, buf.String())
	}
	if record["level"] != "ERROR" || record["msg"] != "failed" || record["file.path"] != "b.ipynb" {
		t.Errorf("unexpected record: %v", record)
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("JSON output must not contain color escapes: %q", buf.String())
	}
}

func TestHandler_Level(t *testing.T) {
	logger, buf := newTestLogger(FormatCompact, slog.LevelWarn, false)
	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("records below the level were written: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn record missing: %q", out)
	}
}

func TestHandler_Colors(t *testing.T) {
	logger, buf := newTestLogger(FormatCompact, slog.LevelDebug, true)
	logger.Info("colored")
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("expected color escapes, got %q", buf.String())
	}

	logger, buf = newTestLogger(FormatCompact, slog.LevelDebug, false)
	logger.Info("plain")
	if strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("unexpected color escapes: %q", buf.String())
	}
}

func TestHandler_WithAttrsAndGroup(t *testing.T) {
	logger, buf := newTestLogger(FormatJSON, slog.LevelDebug, false)
	logger.With("run", "r1").WithGroup("file").Info("ok", "path", "c.ipynb")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if record["run"] != "r1" {
		t.Errorf("run = %v, want r1", record["run"])
	}
	if record["file.path"] != "c.ipynb" {
		t.Errorf("file.path = %v, want c.ipynb", record["file.path"])
	}
}
