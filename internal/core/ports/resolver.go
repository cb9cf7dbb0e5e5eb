package ports

import "iter"

// PathResolver maps node identities to directories and inspects on-disk structure.
//
//go:generate mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks
type PathResolver interface {
	// Resolve returns the directory of the node called name under root.
	// It fails with domain.ErrInvalidName when name is not a single safe path element.
	Resolve(root, name string) (string, error)

	// IsValidNode reports whether path carries a node marker. It never fails.
	IsValidNode(path string) bool

	// TaskDir returns the directory of the task called name inside nodePath.
	TaskDir(nodePath, name string) (string, error)

	// SubnodesDir returns the directory holding the data nodes created by the task at taskPath.
	SubnodesDir(taskPath string) string

	// Subdirectories yields the immediate child directories of dir in lexicographic order,
	// skipping hidden entries and names matching any of the ignore globs.
	Subdirectories(dir string, ignores []string) iter.Seq2[string, error]
}
