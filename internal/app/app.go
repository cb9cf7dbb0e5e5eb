// Package app implements the application layer for datanode.
package app

import (
	"context"
	"errors"
	"io"
	"os"
	"strconv"

	"go.trai.ch/datanode/internal/adapters/detector" //nolint:depguard // Wired in app layer
	"go.trai.ch/datanode/internal/adapters/report"   //nolint:depguard // Wired in app layer
	"go.trai.ch/datanode/internal/adapters/watcher"  //nolint:depguard // Wired in app layer
	"go.trai.ch/datanode/internal/core/domain"
	"go.trai.ch/datanode/internal/core/ports"
	"go.trai.ch/datanode/internal/engine/audit"
	"go.trai.ch/datanode/internal/engine/datanode"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

const (
	// EnvNode is set to the node directory for commands run inside a task.
	EnvNode = "DATANODE_NODE"
	// EnvTask is set to the task directory for commands run inside a task.
	EnvTask = "DATANODE_TASK"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	manager      *datanode.Manager
	auditor      *audit.Auditor
	executor     ports.Executor
	watcher      ports.Watcher
	logger       ports.Logger
	stdout       io.Writer
	stderr       io.Writer
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	manager *datanode.Manager,
	auditor *audit.Auditor,
	executor ports.Executor,
	w ports.Watcher,
	log ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		manager:      manager,
		auditor:      auditor,
		executor:     executor,
		watcher:      w,
		logger:       log,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
	}
}

// WithOutput redirects the results and the output of task commands.
// This is primarily used for testing.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// CreateOptions configuration for the Create method.
type CreateOptions struct {
	Class    string
	OnExists string
	Output   string
}

// Create creates the node called name inside parent and prints it.
func (a *App) Create(ctx context.Context, parent, name string, opts CreateOptions) error {
	onExists, err := domain.ParseOnExists(opts.OnExists)
	if err != nil {
		return err
	}
	renderer, _, err := a.setup(opts.Output)
	if err != nil {
		return err
	}

	node, err := a.manager.Create(ctx, parent, name, datanode.CreateOptions{Class: opts.Class, OnExists: onExists})
	if err != nil {
		return err
	}
	return renderer.Created(node.Entry())
}

// ListOptions configuration for the Tasks and Children methods.
type ListOptions struct {
	Class  string
	Output string
}

// Tasks prints the tasks of the node at path.
func (a *App) Tasks(ctx context.Context, path string, opts ListOptions) error {
	renderer, _, err := a.setup(opts.Output)
	if err != nil {
		return err
	}
	node, err := a.manager.Open(ctx, path, datanode.OpenOptions{Class: opts.Class})
	if err != nil {
		return err
	}

	var entries []domain.TaskEntry
	for entry, err := range node.ListTasks(ctx) {
		if err != nil {
			return err
		}
		entries = append(entries, entry)
	}
	return renderer.Tasks(node.Path(), entries)
}

// Children prints the child nodes of the node at path. Children that cannot be
// opened are logged and skipped.
func (a *App) Children(ctx context.Context, path string, opts ListOptions) error {
	renderer, _, err := a.setup(opts.Output)
	if err != nil {
		return err
	}
	node, err := a.manager.Open(ctx, path, datanode.OpenOptions{Class: opts.Class})
	if err != nil {
		return err
	}

	var children []domain.NodeEntry
	for child, err := range node.ListChildNodes(ctx) {
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			a.logger.Error(err)
			continue
		}
		children = append(children, child.Entry())
	}
	return renderer.Children(node.Path(), children)
}

// Declare records tasks of the node at path as never started.
func (a *App) Declare(ctx context.Context, path string, tasks []string) error {
	node, err := a.manager.Open(ctx, path, datanode.OpenOptions{})
	if err != nil {
		return err
	}
	if err := node.DeclareTask(ctx, tasks...); err != nil {
		return err
	}
	a.logger.Info("declared " + pluralize(len(tasks), "task") + " in " + node.Path())
	return nil
}

// RunOptions configuration for the Run method.
type RunOptions struct {
	Redo            bool
	KeepOldData     bool
	Class           string
	RequiredTasks   []string
	ExpectedOutputs []string
	Output          string
}

// Run runs command inside the task called task of the node at path. The command
// runs in the task directory and its output is recorded on the task span.
func (a *App) Run(ctx context.Context, path, task string, command []string, opts RunOptions) error {
	if len(command) == 0 {
		return domain.ErrCommandRequired
	}
	renderer, _, err := a.setup(opts.Output)
	if err != nil {
		return err
	}
	node, err := a.manager.Open(ctx, path, datanode.OpenOptions{})
	if err != nil {
		return err
	}

	taskOpts := datanode.TaskOptions{
		Redo:            opts.Redo,
		KeepOldData:     opts.KeepOldData,
		CheckClass:      opts.Class,
		RequiredTasks:   opts.RequiredTasks,
		ExpectedOutputs: opts.ExpectedOutputs,
	}
	runErr := node.RunTask(ctx, task, taskOpts, func(ctx context.Context, t *datanode.Task) error {
		cmd := domain.Command{
			Args: command,
			Dir:  t.Path(),
			Env:  []string{EnvNode + "=" + node.Path(), EnvTask + "=" + t.Path()},
		}
		return a.executor.Execute(ctx, cmd, io.MultiWriter(a.stdout, t.Output()), io.MultiWriter(a.stderr, t.Output()))
	})

	state, err := node.TaskState(ctx, task)
	if err != nil {
		return errors.Join(runErr, err)
	}
	taskPath, _ := node.TaskPath(task)
	if err := renderer.TaskFinished(domain.TaskEntry{Name: task, Path: taskPath, State: state}); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

// AuditOptions configuration for the Audit method.
type AuditOptions struct {
	Watch            bool
	FailOnIncomplete bool
	Output           string
}

// Audit prints the incomplete tasks below each of roots. Without roots the configured
// root is audited. In watch mode the audit is repeated whenever the trees change until
// ctx is cancelled.
func (a *App) Audit(ctx context.Context, roots []string, opts AuditOptions) error {
	renderer, settings, err := a.setup(opts.Output)
	if err != nil {
		return err
	}
	if len(roots) == 0 {
		roots = []string{settings.Root}
	}

	found, err := a.auditRoots(ctx, renderer, roots, settings)
	if err != nil {
		return err
	}
	if opts.Watch {
		return a.watch(ctx, renderer, roots, settings)
	}
	if opts.FailOnIncomplete && found > 0 {
		return zerr.With(zerr.Wrap(domain.ErrIncompleteTasks, "audit failed"), "count", found)
	}
	return nil
}

// auditRoots walks all roots concurrently and renders the results in the order of roots.
func (a *App) auditRoots(ctx context.Context, renderer *report.Renderer, roots []string, settings domain.Settings) (int, error) {
	results := make([][]domain.IncompleteTask, len(roots))
	walkErrs := make([]error, len(roots))

	g, gctx := errgroup.WithContext(ctx)
	for i, root := range roots {
		g.Go(func() error {
			results[i], walkErrs[i] = a.auditor.Collect(gctx, root, audit.Options{Ignore: settings.Ignore})
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	found := 0
	for i, root := range roots {
		if walkErrs[i] != nil {
			a.logger.Error(walkErrs[i])
		}
		if err := renderer.Audit(root, results[i]); err != nil {
			return found, err
		}
		found += len(results[i])
	}
	return found, nil
}

// watch re-runs the audit after every debounced burst of file system changes.
func (a *App) watch(ctx context.Context, renderer *report.Renderer, roots []string, settings domain.Settings) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, root := range roots {
		if err := a.watcher.Start(gctx, root, settings.Ignore); err != nil {
			_ = a.watcher.Stop()
			return err
		}
	}
	a.logger.Info("watching " + pluralize(len(roots), "root") + " for changes")

	refresh := make(chan struct{}, 1)
	debouncer := watcher.NewDebouncer(settings.Debounce, func([]string) {
		select {
		case refresh <- struct{}{}:
		default:
		}
	})
	defer debouncer.Stop()

	g.Go(func() error {
		for event := range a.watcher.Events() {
			debouncer.Add(event.Path)
		}
		return nil
	})

	g.Go(func() error {
		defer func() { _ = a.watcher.Stop() }()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-refresh:
				if _, err := a.auditRoots(gctx, renderer, roots, settings); err != nil {
					return err
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// RemoveOptions configuration for the Remove method.
type RemoveOptions struct {
	Task string
	Yes  bool
}

// Remove deletes the node at path, or only one of its tasks. Removal is irreversible
// and must be confirmed.
func (a *App) Remove(ctx context.Context, path string, opts RemoveOptions) error {
	if !opts.Yes {
		return domain.ErrRemovalNotConfirmed
	}
	node, err := a.manager.Open(ctx, path, datanode.OpenOptions{})
	if err != nil {
		return err
	}

	if opts.Task != "" {
		if err := node.RemoveTask(ctx, opts.Task); err != nil {
			return err
		}
		a.logger.Info("removed task " + opts.Task + " of " + node.Path())
		return nil
	}

	if err := node.Remove(ctx); err != nil {
		return err
	}
	a.logger.Info("removed " + node.Path())
	return nil
}

// setup loads the settings and creates the renderer for the requested output mode.
func (a *App) setup(flag string) (*report.Renderer, domain.Settings, error) {
	flagMode, err := domain.ParseOutputMode(flag)
	if err != nil {
		return nil, domain.Settings{}, err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, domain.Settings{}, zerr.Wrap(err, "failed to get working directory")
	}
	settings, err := a.configLoader.Load(cwd)
	if err != nil {
		return nil, domain.Settings{}, zerr.Wrap(err, "failed to load configuration")
	}

	detected := domain.OutputPlain
	if f, ok := a.stdout.(*os.File); ok {
		detected = detector.DetectEnvironment(f)
	}
	mode := detector.ResolveMode(detected, settings.Output, flagMode)
	return report.NewRenderer(a.stdout, mode), settings, nil
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
