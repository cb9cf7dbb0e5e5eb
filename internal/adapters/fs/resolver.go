package fs

import (
	"iter"
	"os"
	"path/filepath"

	"go.trai.ch/datanode/internal/core/domain"
	"go.trai.ch/datanode/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.PathResolver = (*Resolver)(nil)

// Resolver implements the PathResolver interface on the local file system.
type Resolver struct {
	walker *Walker
}

// NewResolver creates a new Resolver.
func NewResolver(walker *Walker) *Resolver {
	return &Resolver{walker: walker}
}

// Resolve returns the directory of the node called name under root.
func (r *Resolver) Resolve(root, name string) (string, error) {
	if err := domain.ValidateName(name); err != nil {
		return "", zerr.With(err, "root", root)
	}
	return filepath.Join(root, name), nil
}

// IsValidNode reports whether path carries a node marker.
func (r *Resolver) IsValidNode(path string) bool {
	info, err := os.Stat(domain.NodeMarkerPath(path))
	return err == nil && info.Mode().IsRegular()
}

// TaskDir returns the directory of the task called name inside nodePath.
func (r *Resolver) TaskDir(nodePath, name string) (string, error) {
	if err := domain.ValidateName(name); err != nil {
		return "", zerr.With(err, "node", nodePath)
	}
	return filepath.Join(nodePath, name), nil
}

// SubnodesDir returns the directory holding the data nodes created by the task at taskPath.
func (r *Resolver) SubnodesDir(taskPath string) string {
	return domain.SubnodesPath(taskPath)
}

// Subdirectories yields the immediate child directories of dir.
func (r *Resolver) Subdirectories(dir string, ignores []string) iter.Seq2[string, error] {
	return r.walker.Subdirectories(dir, ignores)
}
