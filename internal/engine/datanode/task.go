package datanode

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.trai.ch/datanode/internal/core/domain"
	"go.trai.ch/datanode/internal/core/ports"
	"go.trai.ch/zerr"
)

// TaskSpanName is the name of the span that covers one task run.
const TaskSpanName = "datanode.task"

// TaskOptions configures how a task is started and finalized.
type TaskOptions struct {
	// Redo allows running a task that already completed.
	Redo bool
	// KeepOldData keeps the files of a previous run instead of clearing the task directory.
	KeepOldData bool
	// AllowedErrors are causes that still finalize the task as completed.
	AllowedErrors []error
	// CheckClass, when set, must match the class of the node.
	CheckClass string
	// RequiredTasks must have completed before the task may start.
	RequiredTasks []string
	// ExpectedOutputs are paths, relative to the task directory, that must exist on success.
	ExpectedOutputs []string
}

// Task is a scoped handle on a running task. It must be closed exactly once.
type Task struct {
	node  *Node
	name  string
	token domain.LockToken
	opts  TaskOptions
	ctx   context.Context
	span  ports.Span

	mu     sync.Mutex
	closed bool
}

// HandleTask starts the task called name and returns its handle.
// It fails with domain.ErrTaskBusy when another live owner, including this process,
// is running the task.
func (n *Node) HandleTask(ctx context.Context, name string, opts TaskOptions) (*Task, error) {
	m := n.manager

	if err := n.ensureValid(); err != nil {
		return nil, err
	}
	if opts.CheckClass != "" {
		if err := n.CheckClass(opts.CheckClass); err != nil {
			return nil, err
		}
	}
	if err := n.CheckTasksCompleted(ctx, opts.RequiredTasks...); err != nil {
		return nil, err
	}

	path, err := n.TaskPath(name)
	if err != nil {
		return nil, err
	}
	m.warnUnsafe("task", name)

	owner, err := m.liveness.Self(ctx)
	if err != nil {
		return nil, err
	}

	token, err := m.markers.BeginTask(ctx, path, owner, ports.BeginOptions{Redo: opts.Redo})
	if errors.Is(err, domain.ErrAlreadyRunning) {
		return nil, errors.Join(zerr.With(zerr.Wrap(domain.ErrTaskBusy, "cannot start task"), "task", path), err)
	}
	if err != nil {
		return nil, err
	}

	if !opts.KeepOldData {
		if err := clearTaskDir(path); err != nil {
			ferr := m.markers.FinalizeTask(context.WithoutCancel(ctx), token, domain.OutcomeFailed, err.Error())
			return nil, errors.Join(err, ferr)
		}
	}

	spanCtx, span := m.tracer.Start(ctx, TaskSpanName,
		ports.WithAttribute("node", n.path),
		ports.WithAttribute("task", name),
		ports.WithAttribute("redo", opts.Redo),
		ports.WithAttribute("reclaimed", token.Reclaimed),
	)
	m.logger.Debug("started task " + path)

	return &Task{node: n, name: name, token: token, opts: opts, ctx: spanCtx, span: span}, nil
}

// RunTask runs fn inside the task called name and finalizes the task when fn returns.
// A nil result completes the task. An error, a cancelled context or a panic fails it.
// Panics are re-raised after the task has been finalized.
func (n *Node) RunTask(ctx context.Context, name string, opts TaskOptions, fn func(context.Context, *Task) error) error {
	task, err := n.HandleTask(ctx, name, opts)
	if err != nil {
		return err
	}

	finished := false
	defer func() {
		if finished {
			return
		}
		r := recover()
		cause := zerr.With(zerr.New("task panicked"), "panic", r)
		if r == nil {
			cause = zerr.New("task goroutine exited")
		}
		_ = task.Close(cause)
		if r != nil {
			panic(r)
		}
	}()

	cause := fn(task.Context(), task)
	if cause == nil {
		cause = ctx.Err()
	}
	finished = true
	return task.Close(cause)
}

// Path returns the task directory.
func (t *Task) Path() string { return t.token.TaskPath }

// Name returns the task name.
func (t *Task) Name() string { return t.name }

// Node returns the node the task belongs to.
func (t *Task) Node() *Node { return t.node }

// Context returns the context of the task run, carrying its span.
func (t *Task) Context() context.Context { return t.ctx }

// Output returns a writer whose content is recorded on the task span.
func (t *Task) Output() io.Writer { return t.span }

// CreateSubnode creates a node inside the subnode directory of the task.
func (t *Task) CreateSubnode(ctx context.Context, name string, opts CreateOptions) (*Node, error) {
	dir := t.node.manager.resolver.SubnodesDir(t.Path())
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create subnode directory"), "path", dir)
	}
	return t.node.manager.Create(ctx, dir, name, opts)
}

// Close finalizes the task. A nil cause, or one matching an allowed error, completes
// the task unless expected outputs are missing. Any other cause fails it and its text
// is recorded. The cause is returned, joined with any error raised while finalizing.
func (t *Task) Close(cause error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return zerr.With(zerr.Wrap(domain.ErrHandleClosed, "task already finalized"), "task", t.Path())
	}
	t.closed = true

	m := t.node.manager
	outcome := domain.OutcomeCompleted
	detail := ""
	var outputsErr error

	switch {
	case cause != nil && !t.allowed(cause):
		outcome = domain.OutcomeFailed
		detail = cause.Error()
	case len(t.opts.ExpectedOutputs) > 0:
		missing, err := m.verifier.VerifyOutputs(t.Path(), t.opts.ExpectedOutputs)
		switch {
		case err != nil:
			outputsErr = err
		case len(missing) > 0:
			outputsErr = zerr.With(zerr.Wrap(domain.ErrMissingOutputs, "missing "+strings.Join(missing, ", ")),
				"task", t.Path())
		}
		if outputsErr != nil {
			outcome = domain.OutcomeFailed
			detail = outputsErr.Error()
		}
	}

	ferr := m.markers.FinalizeTask(context.WithoutCancel(t.ctx), t.token, outcome, detail)

	t.span.SetAttribute("outcome", outcome.String())
	result := errors.Join(cause, outputsErr)
	if ferr != nil {
		result = errors.Join(result, zerr.With(zerr.Wrap(domain.ErrLockLost, "cannot finalize task"), "task", t.Path()), ferr)
	}
	if outcome == domain.OutcomeFailed || ferr != nil {
		t.span.RecordError(errors.Join(cause, outputsErr, ferr))
	}
	t.span.End()

	if ferr == nil {
		m.logger.Debug("task " + t.Path() + " " + outcome.String())
	}

	if outputsErr == nil && ferr == nil {
		return cause
	}
	return result
}

func (t *Task) allowed(cause error) bool {
	for _, target := range t.opts.AllowedErrors {
		if errors.Is(cause, target) {
			return true
		}
	}
	return false
}

// clearTaskDir removes everything in a task directory except its marker and guard files,
// so that its contents belong to the latest run only.
func clearTaskDir(path string) error {
	entries, err := os.ReadDir(path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to read task directory"), "task", path)
	}
	for _, entry := range entries {
		if entry.Name() == domain.TaskMarkerName || strings.HasPrefix(entry.Name(), domain.TaskLockName) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(path, entry.Name())); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to clear old task data"), "task", path)
		}
	}
	return nil
}
