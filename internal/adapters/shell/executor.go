// Package shell provides the executor that runs commands inside task directories.
package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/creack/pty"
	"go.trai.ch/datanode/internal/core/domain"
	"go.trai.ch/datanode/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Executor = (*Executor)(nil)

// Process represents a running command.
type Process interface {
	Wait() error
}

type ptyProcess struct {
	cmd    *exec.Cmd
	ioDone <-chan struct{}
}

func (p *ptyProcess) Wait() error {
	err := p.cmd.Wait()
	<-p.ioDone
	return err
}

type pipeProcess struct {
	cmd *exec.Cmd
}

func (p *pipeProcess) Wait() error {
	return p.cmd.Wait()
}

// Option configures an Executor.
type Option func(*Executor)

// WithPipes makes the executor use plain pipes instead of a pseudo terminal.
func WithPipes() Option {
	return func(e *Executor) {
		e.usePTY = false
	}
}

// Executor implements ports.Executor using os/exec, preferring a pseudo terminal
// so that commands keep their interactive output formatting.
type Executor struct {
	usePTY bool
}

// NewExecutor creates a new Executor.
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{usePTY: true}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start launches cmd. With a pseudo terminal, stdout and stderr are merged into stdout.
// When the pseudo terminal cannot be allocated the command is started with pipes.
func (e *Executor) Start(ctx context.Context, cmd domain.Command, stdout, stderr io.Writer) (Process, error) {
	if len(cmd.Args) == 0 {
		return nil, domain.ErrCommandRequired
	}

	name := cmd.Args[0]
	env := resolveEnvironment(os.Environ(), cmd.Env)

	executable := name
	if !filepath.IsAbs(name) && !strings.ContainsRune(name, filepath.Separator) {
		if lp, err := lookPath(name, env); err == nil {
			executable = lp
		}
	}

	build := func() *exec.Cmd {
		c := exec.CommandContext(ctx, executable, cmd.Args[1:]...) //nolint:gosec // user provided command
		c.Args[0] = name
		c.Dir = cmd.Dir
		c.Env = env
		return c
	}

	if e.usePTY {
		c := build()
		ptmx, err := pty.Start(c)
		if err == nil {
			ioDone := make(chan struct{})
			go func() {
				defer close(ioDone)
				defer func() { _ = ptmx.Close() }()
				_, _ = io.Copy(stdout, ptmx)
			}()
			return &ptyProcess{cmd: c, ioDone: ioDone}, nil
		}
		if !errors.Is(err, pty.ErrUnsupported) && !isPTYUnavailable(err) {
			return nil, startError(err, name)
		}
	}

	c := build()
	c.Stdout = stdout
	c.Stderr = stderr
	if err := c.Start(); err != nil {
		return nil, startError(err, name)
	}
	return &pipeProcess{cmd: c}, nil
}

// Execute runs cmd and waits for it to complete.
func (e *Executor) Execute(ctx context.Context, cmd domain.Command, stdout, stderr io.Writer) error {
	proc, err := e.Start(ctx, cmd, stdout, stderr)
	if err != nil {
		return err
	}

	if err := proc.Wait(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return zerr.With(zerr.With(zerr.Wrap(err, "command failed"), "command", cmd.Args[0]), "exit_code", exitCode)
	}

	return nil
}

func startError(err error, name string) error {
	return zerr.With(zerr.Wrap(err, "failed to start command"), "command", name)
}

// isPTYUnavailable reports whether err means no pseudo terminal could be opened,
// which happens in sandboxes without /dev/ptmx.
func isPTYUnavailable(err error) bool {
	var pathErr *os.PathError
	return errors.As(err, &pathErr) && strings.HasPrefix(pathErr.Path, "/dev/pt")
}

// resolveEnvironment overlays the entries of overrides on the inherited environment.
// The result is sorted by key.
func resolveEnvironment(sysEnv, overrides []string) []string {
	envMap := make(map[string]string, len(sysEnv)+len(overrides))
	for _, entries := range [][]string{sysEnv, overrides} {
		for _, entry := range entries {
			if k, v, ok := strings.Cut(entry, "="); ok && k != "" {
				envMap[k] = v
			}
		}
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	slices.Sort(result)
	return result
}

// lookPath searches for an executable in the directories named by the PATH entry of env.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if after, ok := strings.CutPrefix(e, "PATH="); ok {
			path = after
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
