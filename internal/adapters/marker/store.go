// Package marker implements the marker store: the atomic, versioned sentinel files
// that identify data nodes and record the lifecycle of their tasks.
package marker

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/datanode/internal/core/domain"
	"go.trai.ch/datanode/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.MarkerStore = (*Store)(nil)

// Store implements ports.MarkerStore on the local file system.
// Node and task markers are replaced atomically. Task transitions additionally hold the
// per-task guard file for the duration of one read-decide-write step.
type Store struct {
	liveness ports.ProcessLiveness
	logger   ports.Logger
	now      func() time.Time
	newToken func() string
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for marker timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithTokenSource overrides the generator of lock tokens.
func WithTokenSource(newToken func() string) Option {
	return func(s *Store) { s.newToken = newToken }
}

// NewStore creates a Store that uses liveness to detect stale running markers.
func NewStore(liveness ports.ProcessLiveness, logger ports.Logger, opts ...Option) *Store {
	s := &Store{
		liveness: liveness,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		newToken: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReadNodeMarker returns the metadata stored in the node marker of nodePath.
func (s *Store) ReadNodeMarker(_ context.Context, nodePath string) (domain.NodeMetadata, error) {
	path := domain.NodeMarkerPath(nodePath)

	data, err := readMarkerFile(path)
	if err != nil {
		return domain.NodeMetadata{}, err
	}

	var rec nodeRecord
	if err := decodeMarker(data, kindNode, &rec); err != nil {
		return domain.NodeMetadata{}, zerr.With(err, "path", path)
	}

	return domain.NodeMetadata{Name: rec.Name, Class: rec.Class, CreatedAt: rec.CreatedAt}, nil
}

// WriteNodeMarker atomically writes the node marker of nodePath.
func (s *Store) WriteNodeMarker(_ context.Context, nodePath string, meta domain.NodeMetadata) error {
	data, err := encodeMarker(kindNode, nodeRecord(meta))
	if err != nil {
		return err
	}

	path := domain.NodeMarkerPath(nodePath)
	if err := writeFileAtomicDurable(path, data, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrMarkerWriteFailed, err.Error()), "path", path)
	}
	return nil
}

// ReadTaskState classifies the task directory at taskPath without mutating it.
func (s *Store) ReadTaskState(ctx context.Context, taskPath string) (domain.TaskState, error) {
	info, err := os.Stat(taskPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return domain.TaskState{Status: domain.TaskAbsent}, nil
	case err != nil:
		return domain.TaskState{}, zerr.With(zerr.Wrap(domain.ErrMarkerReadFailed, err.Error()), "path", taskPath)
	case !info.IsDir():
		return domain.TaskState{Status: domain.TaskForeign}, nil
	}

	rec, err := s.readTaskRecord(taskPath)
	switch {
	case errors.Is(err, domain.ErrMarkerNotFound):
		// A guard file without a marker is left by a begin that never completed its write.
		if _, statErr := os.Stat(domain.TaskLockPath(taskPath)); statErr == nil {
			return domain.TaskState{Status: domain.TaskAbsent}, nil
		}
		return domain.TaskState{Status: domain.TaskForeign}, nil
	case errors.Is(err, domain.ErrCorruptMarker):
		return domain.TaskState{Status: domain.TaskCorrupt, Detail: corruptDetail(err)}, nil
	case err != nil:
		return domain.TaskState{}, err
	}

	state := rec.toState()
	if state.Status == domain.TaskRunning {
		alive, err := s.liveness.IsAlive(ctx, *rec.Owner)
		if err != nil {
			s.logger.Debug("cannot check owner of " + taskPath + ": " + err.Error())
			alive = true
		}
		state.Stale = !alive
	}
	return state, nil
}

// DeclareTask records a never-started task so that it shows up in listings.
func (s *Store) DeclareTask(ctx context.Context, taskPath string) error {
	return s.transition(ctx, taskPath, func(_ taskRecord, err error) error {
		if !errors.Is(err, domain.ErrMarkerNotFound) {
			// Existing markers, including corrupt ones, are left untouched.
			return nil
		}
		return s.writeTaskRecord(taskPath, taskRecord{State: statePending})
	})
}

// BeginTask moves the task into the running state under owner.
func (s *Store) BeginTask(
	ctx context.Context,
	taskPath string,
	owner domain.Owner,
	opts ports.BeginOptions,
) (domain.LockToken, error) {
	var token domain.LockToken

	err := s.transition(ctx, taskPath, func(rec taskRecord, err error) error {
		previous := domain.TaskAbsent
		reclaimed := false

		switch {
		case errors.Is(err, domain.ErrMarkerNotFound):
		case errors.Is(err, domain.ErrCorruptMarker):
			return zerr.With(err, "task", taskPath)
		case err != nil:
			return err
		default:
			previous = rec.toState().Status
		}

		switch previous {
		case domain.TaskCompleted:
			if !opts.Redo {
				return zerr.With(zerr.Wrap(domain.ErrTaskCompleted, "refusing to rerun a completed task"), "task", taskPath)
			}
		case domain.TaskRunning:
			alive, err := s.liveness.IsAlive(ctx, *rec.Owner)
			if err != nil {
				return errors.Join(
					zerr.With(zerr.Wrap(domain.ErrAlreadyRunning, "cannot prove the owner is gone"), "owner", rec.Owner.String()),
					err,
				)
			}
			if alive {
				return zerr.With(zerr.With(zerr.Wrap(domain.ErrAlreadyRunning, "task is held by a live owner"),
					"task", taskPath), "owner", rec.Owner.String())
			}
			reclaimed = true
			s.logger.Warn("reclaiming stale task " + taskPath + " from dead owner " + rec.Owner.String())
		}

		next := taskRecord{
			State:     stateRunning,
			Owner:     &owner,
			Token:     s.newToken(),
			StartedAt: s.now(),
		}
		if err := s.writeTaskRecord(taskPath, next); err != nil {
			return err
		}

		token = domain.LockToken{
			TaskPath:  taskPath,
			Token:     next.Token,
			Owner:     owner,
			StartedAt: next.StartedAt,
			Previous:  previous,
			Reclaimed: reclaimed,
		}
		return nil
	})
	if err != nil {
		return domain.LockToken{}, err
	}
	return token, nil
}

// FinalizeTask replaces the running marker held by token with the terminal marker for outcome.
func (s *Store) FinalizeTask(ctx context.Context, token domain.LockToken, outcome domain.Outcome, detail string) error {
	taskPath := token.TaskPath
	invalid := func(reason string) error {
		return zerr.With(zerr.Wrap(domain.ErrInvalidToken, reason), "task", taskPath)
	}

	return s.transition(ctx, taskPath, func(rec taskRecord, err error) error {
		switch {
		case errors.Is(err, domain.ErrMarkerNotFound):
			return invalid("task marker disappeared")
		case errors.Is(err, domain.ErrCorruptMarker):
			return errors.Join(invalid("task marker is corrupt"), err)
		case err != nil:
			return err
		}

		if rec.Token != token.Token {
			return invalid("task was taken over by another owner")
		}

		want := outcomeState(outcome)
		switch rec.State {
		case stateRunning:
		case want:
			return nil
		default:
			return invalid("task was already finalized as " + rec.State)
		}

		rec.State = want
		rec.EndedAt = s.now()
		rec.Error = ""
		if outcome == domain.OutcomeFailed {
			rec.Error = detail
		}
		return s.writeTaskRecord(taskPath, rec)
	}, withoutCreate())
}

// RemoveTask deletes the task directory unless a live owner holds it.
func (s *Store) RemoveTask(ctx context.Context, taskPath string) error {
	if _, err := os.Stat(taskPath); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return s.transition(ctx, taskPath, func(rec taskRecord, err error) error {
		if err == nil && rec.State == stateRunning {
			alive, liveErr := s.liveness.IsAlive(ctx, *rec.Owner)
			if liveErr != nil || alive {
				return zerr.With(zerr.With(zerr.Wrap(domain.ErrAlreadyRunning, "cannot remove a running task"),
					"task", taskPath), "owner", rec.Owner.String())
			}
		}
		if err := os.RemoveAll(taskPath); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to remove task"), "task", taskPath)
		}
		return nil
	})
}

type transitionConfig struct {
	create bool
}

type transitionOption func(*transitionConfig)

// withoutCreate makes a transition fail instead of creating a missing task directory.
func withoutCreate() transitionOption {
	return func(c *transitionConfig) { c.create = false }
}

// transition runs step under the task guard with the current record of the task.
// step receives domain.ErrMarkerNotFound or a corrupt-marker error instead of a record
// when there is nothing valid to read.
func (s *Store) transition(
	ctx context.Context,
	taskPath string,
	step func(rec taskRecord, err error) error,
	opts ...transitionOption,
) (err error) {
	cfg := transitionConfig{create: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if cfg.create {
		// Only the task directory itself is created; a missing parent means the node is gone.
		if err := os.Mkdir(taskPath, domain.DirPerm); err != nil && !errors.Is(err, fs.ErrExist) {
			return zerr.With(zerr.Wrap(domain.ErrMarkerWriteFailed, err.Error()), "path", taskPath)
		}
	} else if _, err := os.Stat(taskPath); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrInvalidToken, "task directory is gone"), "task", taskPath)
	}

	release, err := acquireGuard(ctx, domain.TaskLockPath(taskPath))
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrTaskGuardFailed, err.Error()), "task", taskPath)
	}
	defer func() {
		if relErr := release(); relErr != nil && err == nil && !errors.Is(relErr, fs.ErrNotExist) {
			err = zerr.With(zerr.Wrap(domain.ErrTaskGuardFailed, relErr.Error()), "task", taskPath)
		}
	}()

	rec, readErr := s.readTaskRecord(taskPath)
	return step(rec, readErr)
}

func (s *Store) readTaskRecord(taskPath string) (taskRecord, error) {
	path := domain.TaskMarkerPath(taskPath)

	data, err := readMarkerFile(path)
	if err != nil {
		return taskRecord{}, err
	}

	var rec taskRecord
	if err := decodeMarker(data, kindTask, &rec); err != nil {
		return taskRecord{}, zerr.With(err, "path", path)
	}
	if err := rec.validate(); err != nil {
		return taskRecord{}, zerr.With(err, "path", path)
	}
	return rec, nil
}

func (s *Store) writeTaskRecord(taskPath string, rec taskRecord) error {
	data, err := encodeMarker(kindTask, rec)
	if err != nil {
		return err
	}

	path := domain.TaskMarkerPath(taskPath)
	if err := writeFileAtomicDurable(path, data, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrMarkerWriteFailed, err.Error()), "path", path)
	}
	return nil
}

func readMarkerFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path) //nolint:gosec // marker paths are derived from validated node and task dirs
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.With(zerr.Wrap(domain.ErrMarkerNotFound, "no marker file"), "path", path)
		}
		return nil, zerr.With(zerr.Wrap(domain.ErrMarkerReadFailed, err.Error()), "path", path)
	}
	return data, nil
}

// corruptDetail returns the decode failure without the trailing sentinel text.
func corruptDetail(err error) string {
	return strings.TrimSuffix(err.Error(), ": "+domain.ErrCorruptMarker.Error())
}

// toState converts a decoded record into the observable task state.
func (r taskRecord) toState() domain.TaskState {
	state := domain.TaskState{
		Owner:     r.Owner,
		StartedAt: r.StartedAt,
		EndedAt:   r.EndedAt,
		Detail:    r.Error,
	}
	switch r.State {
	case stateRunning:
		state.Status = domain.TaskRunning
	case stateCompleted:
		state.Status = domain.TaskCompleted
	case stateFailed:
		state.Status = domain.TaskFailed
	default:
		state.Status = domain.TaskAbsent
	}
	return state
}
