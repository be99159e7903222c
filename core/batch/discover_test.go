package batch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{
		"b.ipynb",
		"a.ipynb",
		"chapter_1/intro.ipynb",
		"chapter_1/deep/nested.ipynb",
		"chapter_1/notes.txt",
		"chapter_1/intro.backup.json",
		"chapter_1/intro_debug.json",
		".ipynb_checkpoints/a-checkpoint.ipynb",
	} {
		touch(t, filepath.Join(root, name))
	}

	tests := []struct {
		name    string
		roots   []string
		pattern string
		want    []string
	}{
		{
			name:  "default pattern is recursive",
			roots: []string{root},
			want: []string{
				filepath.Join(root, "a.ipynb"),
				filepath.Join(root, "b.ipynb"),
				filepath.Join(root, "chapter_1/deep/nested.ipynb"),
				filepath.Join(root, "chapter_1/intro.ipynb"),
			},
		},
		{
			name:    "top level only",
			roots:   []string{root},
			pattern: "*.ipynb",
			want: []string{
				filepath.Join(root, "a.ipynb"),
				filepath.Join(root, "b.ipynb"),
			},
		},
		{
			name:    "artifacts skipped for broad patterns",
			roots:   []string{filepath.Join(root, "chapter_1")},
			pattern: "*.json",
			want:    nil,
		},
		{
			name:  "files and duplicates",
			roots: []string{filepath.Join(root, "a.ipynb"), root + "/./a.ipynb", filepath.Join(root, "chapter_1/notes.txt")},
			want: []string{
				filepath.Join(root, "a.ipynb"),
				filepath.Join(root, "chapter_1/notes.txt"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Discover(tt.roots, tt.pattern)
			if err != nil {
				t.Fatalf("Discover() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Discover() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDiscover_Errors(t *testing.T) {
	if _, err := Discover(nil, ""); !errors.Is(err, ErrNoInputs) {
		t.Errorf("Discover(nil) error = %v, want ErrNoInputs", err)
	}
	if _, err := Discover([]string{filepath.Join(t.TempDir(), "missing")}, ""); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Discover(missing) error = %v, want os.ErrNotExist", err)
	}
	if _, err := Discover([]string{t.TempDir()}, "[a-"); err == nil {
		t.Error("Discover() with a bad pattern succeeded")
	}
}

func TestArtifactPath(t *testing.T) {
	got := artifactPath("/out", "/src/chapter/intro.ipynb", BackupSuffix)
	if want := filepath.Join("/out", "intro.backup.json"); got != want {
		t.Errorf("artifactPath() = %q, want %q", got, want)
	}
}
