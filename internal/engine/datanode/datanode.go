package datanode

import (
	"context"
	"errors"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/datanode/internal/core/domain"
	"go.trai.ch/zerr"
)

// Node is a handle to one data node directory.
type Node struct {
	manager *Manager
	path    string
	meta    domain.NodeMetadata
}

// Path returns the directory of the node.
func (n *Node) Path() string { return n.path }

// Name returns the directory name of the node.
func (n *Node) Name() string { return filepath.Base(n.path) }

// Metadata returns the identity record read from the node marker.
func (n *Node) Metadata() domain.NodeMetadata { return n.meta }

// Class returns the class recorded when the node was created, if any.
func (n *Node) Class() string { return n.meta.Class }

// Entry returns the listing row of the node.
func (n *Node) Entry() domain.NodeEntry {
	return domain.NodeEntry{Name: n.Name(), Path: n.path, Class: n.meta.Class}
}

// CheckClass fails with domain.ErrClassMismatch unless the node is of class.
func (n *Node) CheckClass(class string) error {
	if n.meta.Class == class {
		return nil
	}
	return zerr.With(zerr.With(zerr.With(zerr.Wrap(domain.ErrClassMismatch, "unexpected node class"),
		"path", n.path), "expected", class), "actual", n.meta.Class)
}

// Parent returns the node that contains this one, or nil for a top-level node.
// A node created by a task lives in <parent>/<task>/subdatanodes/<name>.
func (n *Node) Parent(ctx context.Context) (*Node, error) {
	dir := filepath.Dir(n.path)
	candidate := dir
	if !n.manager.resolver.IsValidNode(candidate) {
		if filepath.Base(dir) != domain.SubnodesDirName {
			return nil, nil //nolint:nilnil // a top-level node has no parent
		}
		candidate = filepath.Dir(filepath.Dir(dir))
		if !n.manager.resolver.IsValidNode(candidate) {
			return nil, nil //nolint:nilnil // a top-level node has no parent
		}
	}
	return n.manager.Open(ctx, candidate, OpenOptions{})
}

// Pseudopath returns the names of the node and its ancestors joined by "/",
// starting at the top-level node.
func (n *Node) Pseudopath(ctx context.Context) (string, error) {
	names := []string{n.Name()}
	for cur := n; ; {
		parent, err := cur.Parent(ctx)
		if err != nil {
			return "", err
		}
		if parent == nil {
			break
		}
		names = append(names, parent.Name())
		cur = parent
	}
	slices.Reverse(names)
	return strings.Join(names, "/"), nil
}

// ensureValid fails with domain.ErrNotANode once the node marker is gone, for example
// after the node was removed by another process.
func (n *Node) ensureValid() error {
	if n.manager.resolver.IsValidNode(n.path) {
		return nil
	}
	return zerr.With(zerr.Wrap(domain.ErrNotANode, "node marker is gone"), "path", n.path)
}

// TaskPath returns the directory of the task called name.
func (n *Node) TaskPath(name string) (string, error) {
	return n.manager.resolver.TaskDir(n.path, name)
}

// CompletedTaskPath returns the directory of the task called name and fails with
// domain.ErrTasksNotCompleted unless it completed.
func (n *Node) CompletedTaskPath(ctx context.Context, name string) (string, error) {
	if err := n.CheckTasksCompleted(ctx, name); err != nil {
		return "", err
	}
	return n.TaskPath(name)
}

// TaskState returns the state of the task called name.
func (n *Node) TaskState(ctx context.Context, name string) (domain.TaskState, error) {
	if err := n.ensureValid(); err != nil {
		return domain.TaskState{}, err
	}
	path, err := n.TaskPath(name)
	if err != nil {
		return domain.TaskState{}, err
	}
	return n.manager.markers.ReadTaskState(ctx, path)
}

// WasTaskCompleted reports whether the task called name completed.
func (n *Node) WasTaskCompleted(ctx context.Context, name string) (bool, error) {
	state, err := n.TaskState(ctx, name)
	if err != nil {
		return false, err
	}
	return state.Status == domain.TaskCompleted, nil
}

// CheckTasksCompleted fails with domain.ErrTasksNotCompleted listing every task
// of names that did not complete.
func (n *Node) CheckTasksCompleted(ctx context.Context, names ...string) error {
	var missing []string
	for _, name := range names {
		done, err := n.WasTaskCompleted(ctx, name)
		if err != nil {
			return err
		}
		if !done {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return zerr.With(zerr.With(zerr.Wrap(domain.ErrTasksNotCompleted, "tasks must complete first"),
		"node", n.path), "tasks", strings.Join(missing, ", "))
}

// ListTasks yields the tasks of the node in lexicographic order.
// Child node directories are not tasks and are skipped. Directories without a task
// marker are yielded as foreign.
func (n *Node) ListTasks(ctx context.Context) iter.Seq2[domain.TaskEntry, error] {
	return func(yield func(domain.TaskEntry, error) bool) {
		if err := n.ensureValid(); err != nil {
			yield(domain.TaskEntry{}, err)
			return
		}
		for dir, err := range n.manager.resolver.Subdirectories(n.path, nil) {
			if err == nil {
				err = ctx.Err()
			}
			if err != nil {
				yield(domain.TaskEntry{}, err)
				return
			}
			if n.manager.resolver.IsValidNode(dir) {
				continue
			}

			state, err := n.manager.markers.ReadTaskState(ctx, dir)
			entry := domain.TaskEntry{Name: filepath.Base(dir), Path: dir, State: state}
			if !yield(entry, err) {
				return
			}
		}
	}
}

// ListChildNodes yields the nodes directly inside this node in lexicographic order.
// A child that cannot be opened is yielded as an error and the listing continues.
func (n *Node) ListChildNodes(ctx context.Context) iter.Seq2[*Node, error] {
	return n.manager.nodesIn(ctx, n.path)
}

// SubnodesOfTask returns the nodes created by the completed task called name.
func (n *Node) SubnodesOfTask(ctx context.Context, name string) ([]*Node, error) {
	path, err := n.CompletedTaskPath(ctx, name)
	if err != nil {
		return nil, err
	}

	var nodes []*Node
	for child, err := range n.manager.nodesIn(ctx, n.manager.resolver.SubnodesDir(path)) {
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, child)
	}
	return nodes, nil
}

// DeclareTask records each task of names as never started. Tasks with a marker are left alone.
func (n *Node) DeclareTask(ctx context.Context, names ...string) error {
	if err := n.ensureValid(); err != nil {
		return err
	}
	for _, name := range names {
		path, err := n.TaskPath(name)
		if err != nil {
			return err
		}
		n.manager.warnUnsafe("task", name)
		if err := n.manager.markers.DeclareTask(ctx, path); err != nil {
			return err
		}
	}
	return nil
}

// RemoveTask deletes the task called name with all of its data.
func (n *Node) RemoveTask(ctx context.Context, name string) error {
	if err := n.ensureValid(); err != nil {
		return err
	}
	path, err := n.TaskPath(name)
	if err != nil {
		return err
	}
	n.manager.logger.Warn("removing task " + path + ": all of its data is deleted")
	return n.manager.markers.RemoveTask(ctx, path)
}

// Remove deletes the node with all of its tasks and child nodes.
// It refuses while one of its tasks is held by a live owner.
func (n *Node) Remove(ctx context.Context) error {
	for entry, err := range n.ListTasks(ctx) {
		if err != nil {
			return err
		}
		if entry.State.Status == domain.TaskRunning && !entry.State.Stale {
			return zerr.With(zerr.With(zerr.Wrap(domain.ErrAlreadyRunning, "cannot remove a node with a running task"),
				"node", n.path), "task", entry.Name)
		}
	}

	n.manager.logger.Warn("removing node " + n.path + ": all of its contents are deleted")
	if err := os.RemoveAll(n.path); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to remove node"), "path", n.path)
	}
	return nil
}

// nodesIn yields the valid nodes directly inside dir. A missing dir yields nothing.
func (m *Manager) nodesIn(ctx context.Context, dir string) iter.Seq2[*Node, error] {
	return func(yield func(*Node, error) bool) {
		if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
			return
		}
		for sub, err := range m.resolver.Subdirectories(dir, nil) {
			if err == nil {
				err = ctx.Err()
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !m.resolver.IsValidNode(sub) {
				continue
			}
			if !yield(m.Open(ctx, sub, OpenOptions{})) {
				return
			}
		}
	}
}
