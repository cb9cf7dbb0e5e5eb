// Package audit walks data node hierarchies and reports the tasks that need attention.
package audit

import (
	"context"
	"errors"
	"iter"
	"os"
	"path/filepath"

	"go.trai.ch/datanode/internal/core/domain"
	"go.trai.ch/datanode/internal/core/ports"
	"go.trai.ch/zerr"
)

// RootPseudopath is the pseudopath reported for tasks of the audit root itself.
const RootPseudopath = "."

// Options configures a walk.
type Options struct {
	// Ignore lists glob patterns of directory names that are not entered.
	Ignore []string
}

// Auditor finds incomplete tasks below a root directory. It never modifies the tree.
type Auditor struct {
	resolver ports.PathResolver
	markers  ports.MarkerStore
	logger   ports.Logger
}

// NewAuditor creates a new Auditor.
func NewAuditor(resolver ports.PathResolver, markers ports.MarkerStore, logger ports.Logger) *Auditor {
	return &Auditor{resolver: resolver, markers: markers, logger: logger}
}

// FindIncomplete yields every running, failed or corrupt task below root.
//
// The walk is depth-first and pre-order with siblings in lexicographic order. Inside a
// node every subdirectory is either a child node, which is entered, or a task, which is
// reported when incomplete and whose subnode directory is entered afterwards. Directories
// above the first node are searched for nodes. Errors are yielded and the walk goes on
// with the next sibling.
func (a *Auditor) FindIncomplete(ctx context.Context, root string, opts Options) iter.Seq2[domain.IncompleteTask, error] {
	return func(yield func(domain.IncompleteTask, error) bool) {
		w := walk{Auditor: a, ctx: ctx, ignore: opts.Ignore, yield: yield}
		root = filepath.Clean(root)
		if a.resolver.IsValidNode(root) {
			w.node(root, RootPseudopath)
			return
		}
		w.search(root, "")
	}
}

// Collect runs FindIncomplete to the end. It returns every finding together with the
// joined walk errors.
func (a *Auditor) Collect(ctx context.Context, root string, opts Options) ([]domain.IncompleteTask, error) {
	var (
		found []domain.IncompleteTask
		errs  []error
	)
	for task, err := range a.FindIncomplete(ctx, root, opts) {
		if err != nil {
			errs = append(errs, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		found = append(found, task)
	}
	return found, errors.Join(errs...)
}

type walk struct {
	*Auditor
	ctx    context.Context
	ignore []string
	yield  func(domain.IncompleteTask, error) bool
	// stopped is set once the consumer stops ranging or the context is done.
	stopped bool
}

func (w *walk) emit(task domain.IncompleteTask, err error) {
	if !w.stopped && !w.yield(task, err) {
		w.stopped = true
	}
}

// subdirs yields the subdirectories of dir and reports listing errors.
func (w *walk) subdirs(dir string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for sub, err := range w.resolver.Subdirectories(dir, w.ignore) {
			if w.stopped {
				return
			}
			if err == nil {
				err = w.ctx.Err()
			}
			if err != nil {
				w.emit(domain.IncompleteTask{}, err)
				if w.ctx.Err() != nil {
					w.stopped = true
				}
				return
			}
			if !yield(sub) {
				return
			}
		}
	}
}

// search looks for nodes below a directory that is not a node itself.
func (w *walk) search(dir, pseudo string) {
	for sub := range w.subdirs(dir) {
		name := join(pseudo, filepath.Base(sub))
		if w.resolver.IsValidNode(sub) {
			w.node(sub, name)
		} else {
			w.search(sub, name)
		}
	}
}

// node audits the node at path and everything below it.
func (w *walk) node(path, pseudo string) {
	if _, err := w.markers.ReadNodeMarker(w.ctx, path); err != nil {
		if errors.Is(err, domain.ErrCorruptMarker) {
			err = errors.Join(zerr.With(zerr.Wrap(domain.ErrCorruptNode, "cannot audit node"), "path", path), err)
		}
		w.emit(domain.IncompleteTask{}, err)
		return
	}

	for sub := range w.subdirs(path) {
		if w.resolver.IsValidNode(sub) {
			w.node(sub, join(pseudo, filepath.Base(sub)))
			continue
		}
		w.task(sub, pseudo)
	}
}

func (w *walk) task(path, pseudo string) {
	state, err := w.markers.ReadTaskState(w.ctx, path)
	if err != nil {
		w.emit(domain.IncompleteTask{}, err)
		return
	}
	if state.Status.Incomplete() {
		w.logger.Debug("incomplete task " + path + " is " + state.Status.String())
		w.emit(domain.IncompleteTask{Node: pseudo, Name: filepath.Base(path), Path: path, State: state}, nil)
	}

	subnodes := w.resolver.SubnodesDir(path)
	if !isDir(subnodes) {
		return
	}
	for sub := range w.subdirs(subnodes) {
		if w.resolver.IsValidNode(sub) {
			w.node(sub, join(pseudo, filepath.Base(sub)))
		}
	}
}

func join(pseudo, name string) string {
	if pseudo == "" || pseudo == RootPseudopath {
		return name
	}
	return pseudo + "/" + name
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
