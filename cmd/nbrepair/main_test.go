package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leofalp/nbrepair/core/repair"
)

const brokenNotebook = `{"cells": [{"cell_type": "markdown", "metadata": {}, "source": ["# Title
"]} {"cell_type": "code", "execution_count": null, "metadata": {}, "outputs": [], "source": []}], "metadata": {}, "nbformat": 4, "nbformat_minor": 5}`

// run executes the command line in an empty working directory so no config
// or .env file from the repository is picked up.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	for _, key := range []string{"NBREPAIR_LOG_LEVEL", "NBREPAIR_LOG_FORMAT", "NBREPAIR_WORKERS", "NBREPAIR_BACKUP"} {
		t.Setenv(key, "")
	}

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRecoverCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "intro.ipynb")
	writeFile(t, path, brokenNotebook)

	stdout, _, err := run(t, "recover", "--backup", dir)
	if err != nil {
		t.Fatalf("recover error = %v", err)
	}
	if !strings.Contains(stdout, "intro.ipynb recovered") || !strings.Contains(stdout, "1 recovered, 0 unchanged, 0 failed") {
		t.Errorf("unexpected report:\n%s", stdout)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := repair.Parse(string(data)); err != nil {
		t.Errorf("recovered notebook does not parse: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "intro.backup.json")); err != nil {
		t.Errorf("backup missing: %v", err)
	}

	stdout, _, err = run(t, "fix", path)
	if err != nil {
		t.Fatalf("second run error = %v", err)
	}
	if !strings.Contains(stdout, "unchanged") {
		t.Errorf("second run should leave the notebook unchanged:\n%s", stdout)
	}
}

func TestRecoverCommand_Failure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.ipynb")
	writeFile(t, path, "{\n \"cells\": [\n  }\n ]\n}")

	stdout, _, err := run(t, "recover", "--dry-run", path)
	if !errors.Is(err, errFailures) {
		t.Fatalf("recover error = %v, want errFailures", err)
	}
	if !strings.Contains(stdout, "bad.ipynb:3:3:") {
		t.Errorf("failure position missing:\n%s", stdout)
	}
	if !strings.Contains(stdout, "    3 >   }") {
		t.Errorf("snippet with marker missing:\n%s", stdout)
	}
}

func TestRecoverCommand_InvalidFlag(t *testing.T) {
	_, _, err := run(t, "recover", "--indent", "12", t.TempDir())
	if err == nil || errors.Is(err, errFailures) {
		t.Errorf("recover with indent 12 error = %v, want a validation error", err)
	}
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "broken.ipynb"), brokenNotebook)
	writeFile(t, filepath.Join(dir, "valid.ipynb"), `{"cells": [{"cell_type": "markdown", "metadata": {}, "source": []}], "metadata": {}, "nbformat": 4, "nbformat_minor": 5}`)

	stdout, _, err := run(t, "check", dir)
	if !errors.Is(err, errFailures) {
		t.Fatalf("check error = %v, want errFailures", err)
	}
	if !strings.Contains(stdout, "valid.ipynb valid (0 code, 1 markdown cells)") {
		t.Errorf("valid notebook not reported:\n%s", stdout)
	}
	if !strings.Contains(stdout, "1 valid, 1 invalid") {
		t.Errorf("summary missing:\n%s", stdout)
	}
	if got, _ := os.ReadFile(filepath.Join(dir, "broken.ipynb")); string(got) != brokenNotebook {
		t.Error("check modified a notebook")
	}
}

func TestConvertCommand(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "lesson.py")
	writeFile(t, script, "\"\"\"\n# Lesson\n\"\"\"\n\nx = 1\nprint(x)\n")

	stdout, _, err := run(t, "convert", script)
	if err != nil {
		t.Fatalf("convert error = %v", err)
	}
	if !strings.Contains(stdout, "(1 code, 1 markdown cells)") {
		t.Errorf("unexpected output:\n%s", stdout)
	}
	data, err := os.ReadFile(filepath.Join(dir, "lesson.ipynb"))
	if err != nil {
		t.Fatal(err)
	}
	if out := repair.Validate(string(data)); !out.Recovered() || out.Shape != nil {
		t.Errorf("converted notebook invalid: %v %v", out.Failure, out.Shape)
	}

	if _, _, err := run(t, "convert", script); !errors.Is(err, errFailures) {
		t.Errorf("converting over an existing notebook error = %v, want errFailures", err)
	}
	if _, _, err := run(t, "convert", "--force", script); err != nil {
		t.Errorf("convert --force error = %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := run(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.HasPrefix(stdout, "nbrepair ") {
		t.Errorf("version output = %q", stdout)
	}
}
