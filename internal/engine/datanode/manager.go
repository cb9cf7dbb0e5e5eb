// Package datanode implements data nodes and the scoped task handles that record
// the lifecycle of the tasks run inside them.
package datanode

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/datanode/internal/core/domain"
	"go.trai.ch/datanode/internal/core/ports"
	"go.trai.ch/zerr"
)

// CreateOptions configures Manager.Create.
type CreateOptions struct {
	// Class is recorded in the node marker and checked when an existing node is reused.
	Class string
	// OnExists selects what happens when the target path is already in use.
	OnExists domain.OnExists
}

// OpenOptions configures Manager.Open.
type OpenOptions struct {
	// Class, when set, must match the class of the opened node.
	Class string
}

// Manager creates and opens data nodes.
type Manager struct {
	resolver ports.PathResolver
	markers  ports.MarkerStore
	liveness ports.ProcessLiveness
	verifier ports.Verifier
	tracer   ports.Tracer
	logger   ports.Logger
	now      func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the clock used for node creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a new Manager with the given dependencies.
func NewManager(
	resolver ports.PathResolver,
	markers ports.MarkerStore,
	liveness ports.ProcessLiveness,
	verifier ports.Verifier,
	tracer ports.Tracer,
	logger ports.Logger,
	opts ...Option,
) *Manager {
	m := &Manager{
		resolver: resolver,
		markers:  markers,
		liveness: liveness,
		verifier: verifier,
		tracer:   tracer,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create creates the node called name inside parent.
//
// With OnExistsFail an existing node is an error. OnExistsOverride removes whatever
// occupies the path and creates a fresh node. OnExistsReuse opens an existing valid
// node and creates one when the path is free. A non-empty directory without a
// node marker is never adopted.
func (m *Manager) Create(ctx context.Context, parent, name string, opts CreateOptions) (*Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := m.resolver.Resolve(parent, name)
	if err != nil {
		return nil, err
	}
	m.warnUnsafe("node", name)

	occupied, err := m.occupied(path)
	if err != nil {
		return nil, err
	}

	if occupied {
		isNode := m.resolver.IsValidNode(path)
		switch {
		case opts.OnExists == domain.OnExistsOverride:
			m.logger.Warn("overriding " + path + ": all of its contents are deleted")
			if err := os.RemoveAll(path); err != nil {
				return nil, zerr.With(zerr.Wrap(err, "failed to remove existing node"), "path", path)
			}
		case !isNode:
			return nil, zerr.With(zerr.Wrap(domain.ErrNotANode, "path is in use by something else"), "path", path)
		case opts.OnExists == domain.OnExistsReuse:
			return m.Open(ctx, path, OpenOptions{Class: opts.Class})
		default:
			return nil, zerr.With(zerr.Wrap(domain.ErrAlreadyExists, "cannot create node"), "path", path)
		}
	}

	meta := domain.NodeMetadata{Name: name, Class: opts.Class, CreatedAt: m.now()}
	if err := os.MkdirAll(path, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create node directory"), "path", path)
	}
	if err := m.markers.WriteNodeMarker(ctx, path, meta); err != nil {
		return nil, err
	}

	m.logger.Debug("created node " + path)
	return &Node{manager: m, path: path, meta: meta}, nil
}

// Open opens the node at path. path may also point at the node marker file itself.
func (m *Manager) Open(ctx context.Context, path string, opts OpenOptions) (*Node, error) {
	path = filepath.Clean(path)
	if filepath.Base(path) == domain.NodeMarkerName {
		path = filepath.Dir(path)
	}

	meta, err := m.markers.ReadNodeMarker(ctx, path)
	switch {
	case errors.Is(err, domain.ErrMarkerNotFound):
		return nil, zerr.With(zerr.Wrap(domain.ErrNotANode, "no node marker"), "path", path)
	case errors.Is(err, domain.ErrCorruptMarker):
		return nil, errors.Join(zerr.With(zerr.Wrap(domain.ErrCorruptNode, "cannot open node"), "path", path), err)
	case err != nil:
		return nil, err
	}

	node := &Node{manager: m, path: path, meta: meta}
	if opts.Class != "" {
		if err := node.CheckClass(opts.Class); err != nil {
			return nil, err
		}
	}
	return node, nil
}

// occupied reports whether something other than an empty directory exists at path.
func (m *Manager) occupied(path string) (bool, error) {
	info, err := os.Lstat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, zerr.With(zerr.Wrap(err, "failed to inspect path"), "path", path)
	case !info.IsDir():
		return true, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return false, zerr.With(zerr.Wrap(err, "failed to inspect path"), "path", path)
	}
	return len(entries) > 0, nil
}

func (m *Manager) warnUnsafe(kind, name string) {
	if unsafe := domain.UnsafeCharacters(name); len(unsafe) > 0 {
		m.logger.Warn(kind + " name " + `"` + name + `" contains characters better avoided in paths: ` +
			strings.Join(unsafe, " "))
	}
}
