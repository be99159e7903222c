package batch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPattern matches every notebook below a directory.
const DefaultPattern = "**/*.ipynb"

// Suffixes of the artifacts a Runner writes next to its inputs. Discover skips
// them so a second run does not pick up its own output.
const (
	BackupSuffix    = ".backup.json"
	DebugDumpSuffix = "_debug.json"
)

// ErrNoInputs is returned by Discover when no root was given.
var ErrNoInputs = errors.New("nbrepair: no input paths")

// Discover expands roots into notebook paths. Regular files are taken as they
// are; directories are searched with pattern (DefaultPattern when empty),
// which may use doublestar syntax such as "**". Backup and debug artifacts are
// skipped. The result is sorted and free of duplicates.
func Discover(roots []string, pattern string) ([]string, error) {
	if len(roots) == 0 {
		return nil, ErrNoInputs
	}
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}

	seen := make(map[string]struct{})
	var paths []string
	add := func(p string) {
		p = filepath.Clean(p)
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		paths = append(paths, p)
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", root, err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}

		matches, err := doublestar.Glob(os.DirFS(root), pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("failed to search %s with pattern %q: %w", root, pattern, err)
		}
		for _, m := range matches {
			if isArtifact(m) || hiddenPath(m) {
				continue
			}
			add(filepath.Join(root, filepath.FromSlash(m)))
		}
	}

	sort.Strings(paths)
	return paths, nil
}

func isArtifact(name string) bool {
	base := filepath.Base(name)
	return strings.HasSuffix(base, BackupSuffix) || strings.HasSuffix(base, DebugDumpSuffix)
}

// hiddenPath reports whether any element of a slash-separated match starts
// with a dot, such as .ipynb_checkpoints.
func hiddenPath(name string) bool {
	for _, part := range strings.Split(name, "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}

// artifactPath returns the path of an artifact for input written to dir: the
// input's base name without extension, followed by suffix.
func artifactPath(dir, input, suffix string) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, stem+suffix)
}
