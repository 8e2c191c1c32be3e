package i18nmig

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultInclude selects React-style sources under src/.
var DefaultInclude = []string{"src/**/*.{jsx,tsx,js}"}

// DefaultExclude skips dependency, VCS and build output directories.
var DefaultExclude = []string{
	"**/node_modules/**",
	"**/.git/**",
	"**/dist/**",
	"**/build/**",
}

// Discover expands include globs relative to root and drops matches of any
// exclude glob. Returned paths are joined with root, deduplicated and sorted.
func Discover(root string, include, exclude []string) ([]string, error) {
	if len(include) == 0 {
		include = DefaultInclude
	}
	for _, pattern := range append(append([]string(nil), include...), exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid glob pattern %q", pattern)
		}
	}

	fsys := os.DirFS(root)
	seen := make(map[string]bool)
	var paths []string

	for _, pattern := range include {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", pattern, err)
		}

	match:
		for _, m := range matches {
			if seen[m] {
				continue
			}
			for _, ex := range exclude {
				if ok, _ := doublestar.Match(ex, m); ok {
					continue match
				}
			}
			seen[m] = true
			paths = append(paths, filepath.Join(root, filepath.FromSlash(m)))
		}
	}

	sort.Strings(paths)
	return paths, nil
}

// relPath returns path relative to root in slash form, or path itself when
// it lies outside root.
func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
