package domain

import (
	"os"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// reservedNames cannot be used as node or task names.
var reservedNames = []string{NodeMarkerName, TaskMarkerName, TaskLockName, SubnodesDirName}

// ValidateName checks that name can be used as a single directory name for a node or task.
func ValidateName(name string) error {
	invalid := func(reason string) error {
		return zerr.With(zerr.With(zerr.Wrap(ErrInvalidName, reason), "name", name), "reason", reason)
	}

	switch {
	case strings.TrimSpace(name) == "":
		return invalid("name is empty")
	case name == "." || name == "..":
		return invalid("name refers to a relative directory")
	case strings.ContainsRune(name, '/') || strings.ContainsRune(name, os.PathSeparator):
		return invalid("name contains a path separator")
	case strings.ContainsRune(name, 0):
		return invalid("name contains a NUL byte")
	case strings.HasPrefix(name, "."):
		return invalid("names starting with '.' are reserved")
	case slices.Contains(reservedNames, name):
		return invalid("name is reserved")
	}
	return nil
}

// UnsafeCharacters returns the characters of name that are better avoided in paths,
// such as white space. The result is sorted and empty when the name is clean.
func UnsafeCharacters(name string) []string {
	seen := make(map[rune]bool)
	var out []string
	for _, r := range name {
		if isNiceRune(r) || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, string(r))
	}
	slices.Sort(out)
	return out
}

func isNiceRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '.', r == '_', r == '-':
		return true
	}
	return false
}
