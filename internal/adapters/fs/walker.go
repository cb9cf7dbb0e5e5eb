// Package fs provides file system adapters for locating nodes and tasks.
package fs

import (
	"iter"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/zerr"
)

// Walker lists directories one level at a time.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// Subdirectories yields the immediate child directories of dir in lexicographic order.
// Hidden entries and names matching any of the ignore globs are skipped. Every range
// over the returned sequence reads the directory again, so it can be restarted.
func (w *Walker) Subdirectories(dir string, ignores []string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			yield("", zerr.With(zerr.Wrap(err, "failed to read directory"), "path", dir))
			return
		}

		// os.ReadDir returns entries sorted by name.
		for _, entry := range entries {
			if !entry.IsDir() || w.shouldSkip(entry.Name(), ignores) {
				continue
			}
			if !yield(filepath.Join(dir, entry.Name()), nil) {
				return
			}
		}
	}
}

// shouldSkip reports whether a directory name is hidden or matches an ignore pattern.
func (w *Walker) shouldSkip(name string, ignores []string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}

	for _, ignore := range ignores {
		if matched, _ := filepath.Match(ignore, name); matched {
			return true
		}
	}

	return false
}
