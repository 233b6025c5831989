package imagededup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Enumerator lists candidate image files under a root directory.
type Enumerator interface {
	ListImages(root string, recursive bool) ([]string, error)
}

// GlobEnumerator lists images with doublestar patterns: "**/*" when
// recursive, "*" otherwise. Dot files and anything under a dot directory are
// skipped, the same way shell globbing skips them.
type GlobEnumerator struct{}

// ListImages returns absolute, lexically sorted image paths under root.
func (GlobEnumerator) ListImages(root string, recursive bool) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %q: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %q is not a directory", abs)
	}

	pattern := "*"
	if recursive {
		pattern = "**/*"
	}

	matches, err := doublestar.Glob(os.DirFS(abs), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}

	paths := make([]string, 0, len(matches))
	for _, rel := range matches {
		if isHidden(rel) || !IsImagePath(rel) {
			continue
		}
		paths = append(paths, filepath.Join(abs, filepath.FromSlash(rel)))
	}
	sort.Strings(paths)
	return paths, nil
}

// isHidden reports whether any slash-separated segment of rel starts with a dot.
func isHidden(rel string) bool {
	for _, seg := range strings.Split(rel, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}
