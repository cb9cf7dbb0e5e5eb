package datanode_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/datanode/internal/adapters/fs"
	"go.trai.ch/datanode/internal/adapters/telemetry"
	"go.trai.ch/datanode/internal/core/domain"
	"go.trai.ch/datanode/internal/core/ports"
	"go.trai.ch/datanode/internal/core/ports/mocks"
	"go.trai.ch/datanode/internal/engine/datanode"
	"go.uber.org/mock/gomock"
)

var errDiverged = errors.New("loss diverged")

func taskStatus(t *testing.T, node *datanode.Node, name string) domain.TaskState {
	t.Helper()
	state, err := node.TaskState(t.Context(), name)
	require.NoError(t, err)
	return state
}

func TestTask_Lifecycle(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	node := f.create(t, f.root, "exp", datanode.CreateOptions{})

	task, err := node.HandleTask(t.Context(), "train", datanode.TaskOptions{})
	require.NoError(t, err)
	assert.Equal(t, "train", task.Name())
	assert.Equal(t, filepath.Join(node.Path(), "train"), task.Path())
	assert.Same(t, node, task.Node())

	state := taskStatus(t, node, "train")
	assert.Equal(t, domain.TaskRunning, state.Status)
	assert.Equal(t, &self, state.Owner)

	require.NoError(t, task.Close(nil))
	assert.Equal(t, domain.TaskCompleted, taskStatus(t, node, "train").Status)

	err = task.Close(nil)
	require.ErrorIs(t, err, domain.ErrHandleClosed)
	assert.Equal(t, domain.TaskCompleted, taskStatus(t, node, "train").Status)
}

func TestTask_CloseWithError(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	node := f.create(t, f.root, "exp", datanode.CreateOptions{})

	task, err := node.HandleTask(t.Context(), "train", datanode.TaskOptions{})
	require.NoError(t, err)

	err = task.Close(errDiverged)
	require.ErrorIs(t, err, errDiverged)
	assert.Equal(t, errDiverged, err)

	state := taskStatus(t, node, "train")
	assert.Equal(t, domain.TaskFailed, state.Status)
	assert.Equal(t, "loss diverged", state.Detail)
}

func TestTask_AllowedErrors(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	node := f.create(t, f.root, "exp", datanode.CreateOptions{})

	err := node.RunTask(t.Context(), "train", datanode.TaskOptions{AllowedErrors: []error{errDiverged}},
		func(context.Context, *datanode.Task) error {
			return errors.Join(errors.New("epoch 12"), errDiverged)
		})
	require.ErrorIs(t, err, errDiverged)
	assert.Equal(t, domain.TaskCompleted, taskStatus(t, node, "train").Status)
}

func TestTask_Busy(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	node := f.create(t, f.root, "exp", datanode.CreateOptions{})

	first, err := node.HandleTask(t.Context(), "train", datanode.TaskOptions{})
	require.NoError(t, err)

	_, err = node.HandleTask(t.Context(), "train", datanode.TaskOptions{})
	require.ErrorIs(t, err, domain.ErrTaskBusy)
	require.ErrorIs(t, err, domain.ErrAlreadyRunning)

	require.NoError(t, first.Close(nil))
	assert.Equal(t, domain.TaskCompleted, taskStatus(t, node, "train").Status)
}

func TestTask_BusyWithOtherLiveOwner(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	f.liveness.EXPECT().IsAlive(gomock.Any(), stranger).Return(true, nil).AnyTimes()
	node := f.create(t, f.root, "exp", datanode.CreateOptions{})

	path, err := node.TaskPath("train")
	require.NoError(t, err)
	_, err = f.store.BeginTask(t.Context(), path, stranger, ports.BeginOptions{})
	require.NoError(t, err)

	_, err = node.HandleTask(t.Context(), "train", datanode.TaskOptions{})
	require.ErrorIs(t, err, domain.ErrTaskBusy)
}

func TestTask_ReclaimsFromDeadOwner(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	f.allowWarnings()
	f.liveness.EXPECT().IsAlive(gomock.Any(), stranger).Return(false, nil).AnyTimes()
	node := f.create(t, f.root, "exp", datanode.CreateOptions{})

	path, err := node.TaskPath("train")
	require.NoError(t, err)
	_, err = f.store.BeginTask(t.Context(), path, stranger, ports.BeginOptions{})
	require.NoError(t, err)
	writeFile(t, filepath.Join(path, "partial.ckpt"), "half written")

	assert.True(t, taskStatus(t, node, "train").Stale)

	task, err := node.HandleTask(t.Context(), "train", datanode.TaskOptions{})
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(path, "partial.ckpt"))
	require.NoError(t, task.Close(nil))

	state := taskStatus(t, node, "train")
	assert.Equal(t, domain.TaskCompleted, state.Status)
	assert.Equal(t, &self, state.Owner)
}

func TestTask_Redo(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	run := func(node *datanode.Node, opts datanode.TaskOptions, file string) error {
		return node.RunTask(ctx, "train", opts, func(_ context.Context, task *datanode.Task) error {
			return os.WriteFile(filepath.Join(task.Path(), file), []byte("weights"), domain.FilePerm)
		})
	}

	t.Run("refused without intent", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)
		node := f.create(t, f.root, "exp", datanode.CreateOptions{})
		require.NoError(t, run(node, datanode.TaskOptions{}, "v1.bin"))

		err := run(node, datanode.TaskOptions{}, "v2.bin")
		require.ErrorIs(t, err, domain.ErrTaskCompleted)
		assert.FileExists(t, filepath.Join(node.Path(), "train", "v1.bin"))
	})

	t.Run("clears old data", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)
		node := f.create(t, f.root, "exp", datanode.CreateOptions{})
		require.NoError(t, run(node, datanode.TaskOptions{}, "v1.bin"))

		require.NoError(t, run(node, datanode.TaskOptions{Redo: true}, "v2.bin"))
		assert.NoFileExists(t, filepath.Join(node.Path(), "train", "v1.bin"))
		assert.FileExists(t, filepath.Join(node.Path(), "train", "v2.bin"))
	})

	t.Run("keeps old data", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)
		node := f.create(t, f.root, "exp", datanode.CreateOptions{})
		require.NoError(t, run(node, datanode.TaskOptions{}, "v1.bin"))

		require.NoError(t, run(node, datanode.TaskOptions{Redo: true, KeepOldData: true}, "v2.bin"))
		assert.FileExists(t, filepath.Join(node.Path(), "train", "v1.bin"))
		assert.FileExists(t, filepath.Join(node.Path(), "train", "v2.bin"))
	})
}

func TestTask_ClearsDataLeftBeforeFirstRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		prepare func(t *testing.T, node *datanode.Node)
	}{
		{
			name: "declared task",
			prepare: func(t *testing.T, node *datanode.Node) {
				require.NoError(t, node.DeclareTask(t.Context(), "train"))
			},
		},
		{
			name: "directory without marker",
			prepare: func(t *testing.T, node *datanode.Node) {
				require.NoError(t, os.Mkdir(filepath.Join(node.Path(), "train"), domain.DirPerm))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t, nil)
			node := f.create(t, f.root, "exp", datanode.CreateOptions{})
			tt.prepare(t, node)
			stale := filepath.Join(node.Path(), "train", "stale.csv")
			writeFile(t, stale, "a,b")
			writeFile(t, filepath.Join(node.Path(), "train", "cache", "shard-0"), "x")

			require.NoError(t, node.RunTask(t.Context(), "train", datanode.TaskOptions{},
				func(_ context.Context, task *datanode.Task) error {
					assert.NoFileExists(t, stale)
					assert.NoDirExists(t, filepath.Join(task.Path(), "cache"))
					return nil
				}))
			assert.FileExists(t, domain.TaskMarkerPath(filepath.Join(node.Path(), "train")))
			assert.Equal(t, domain.TaskCompleted, taskStatus(t, node, "train").Status)
		})
	}

	t.Run("kept on request", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)
		node := f.create(t, f.root, "exp", datanode.CreateOptions{})
		require.NoError(t, node.DeclareTask(t.Context(), "train"))
		stale := filepath.Join(node.Path(), "train", "stale.csv")
		writeFile(t, stale, "a,b")

		require.NoError(t, node.RunTask(t.Context(), "train", datanode.TaskOptions{KeepOldData: true},
			func(context.Context, *datanode.Task) error { return nil }))
		assert.FileExists(t, stale)
	})
}

func TestNode_RefusesTasksOnceMarkerIsGone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		breakNode func(t *testing.T, node *datanode.Node)
	}{
		{
			name: "marker deleted",
			breakNode: func(t *testing.T, node *datanode.Node) {
				require.NoError(t, os.Remove(domain.NodeMarkerPath(node.Path())))
			},
		},
		{
			name: "directory removed",
			breakNode: func(t *testing.T, node *datanode.Node) {
				require.NoError(t, os.RemoveAll(node.Path()))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t, nil)
			ctx := t.Context()
			node := f.create(t, f.root, "exp", datanode.CreateOptions{})
			require.NoError(t, node.DeclareTask(ctx, "prepare"))
			tt.breakNode(t, node)

			_, err := node.HandleTask(ctx, "train", datanode.TaskOptions{})
			require.ErrorIs(t, err, domain.ErrNotANode)

			err = node.RunTask(ctx, "train", datanode.TaskOptions{}, func(context.Context, *datanode.Task) error {
				t.Error("task body must not run")
				return nil
			})
			require.ErrorIs(t, err, domain.ErrNotANode)

			require.ErrorIs(t, node.DeclareTask(ctx, "evaluate"), domain.ErrNotANode)
			require.ErrorIs(t, node.RemoveTask(ctx, "prepare"), domain.ErrNotANode)

			_, err = node.TaskState(ctx, "prepare")
			require.ErrorIs(t, err, domain.ErrNotANode)

			var listErr error
			for _, err := range node.ListTasks(ctx) {
				if err != nil {
					listErr = err
					break
				}
			}
			require.ErrorIs(t, listErr, domain.ErrNotANode)

			assert.NoDirExists(t, filepath.Join(node.Path(), "train"))
			assert.NoDirExists(t, filepath.Join(node.Path(), "evaluate"))
			assert.NoFileExists(t, domain.NodeMarkerPath(node.Path()))
		})
	}
}

func TestTask_RetryAfterFailure(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	node := f.create(t, f.root, "exp", datanode.CreateOptions{})

	err := node.RunTask(t.Context(), "train", datanode.TaskOptions{}, func(context.Context, *datanode.Task) error {
		return errDiverged
	})
	require.ErrorIs(t, err, errDiverged)
	assert.Equal(t, domain.TaskFailed, taskStatus(t, node, "train").Status)

	err = node.RunTask(t.Context(), "train", datanode.TaskOptions{}, func(context.Context, *datanode.Task) error {
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskCompleted, taskStatus(t, node, "train").Status)
}

func TestTask_Preconditions(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	node := f.create(t, f.root, "exp", datanode.CreateOptions{Class: "sweep"})

	_, err := node.HandleTask(t.Context(), "train", datanode.TaskOptions{CheckClass: "training"})
	require.ErrorIs(t, err, domain.ErrClassMismatch)

	_, err = node.HandleTask(t.Context(), "train", datanode.TaskOptions{RequiredTasks: []string{"prepare"}})
	require.ErrorIs(t, err, domain.ErrTasksNotCompleted)

	_, err = node.HandleTask(t.Context(), ".train", datanode.TaskOptions{})
	require.ErrorIs(t, err, domain.ErrInvalidName)

	assert.Equal(t, domain.TaskAbsent, taskStatus(t, node, "train").Status)
	assert.NoDirExists(t, filepath.Join(node.Path(), "train"))
}

func TestTask_ExpectedOutputs(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	node := f.create(t, f.root, "exp", datanode.CreateOptions{})
	opts := datanode.TaskOptions{ExpectedOutputs: []string{"metrics.json", "plots/*.png"}}

	err := node.RunTask(t.Context(), "evaluate", opts, func(_ context.Context, task *datanode.Task) error {
		writeFile(t, filepath.Join(task.Path(), "metrics.json"), "{}")
		return nil
	})
	require.ErrorIs(t, err, domain.ErrMissingOutputs)

	state := taskStatus(t, node, "evaluate")
	assert.Equal(t, domain.TaskFailed, state.Status)
	assert.Contains(t, state.Detail, "missing plots/*.png")
	assert.NotContains(t, state.Detail, "metrics.json")

	err = node.RunTask(t.Context(), "evaluate", opts, func(_ context.Context, task *datanode.Task) error {
		writeFile(t, filepath.Join(task.Path(), "metrics.json"), "{}")
		writeFile(t, filepath.Join(task.Path(), "plots", "roc.png"), "png")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskCompleted, taskStatus(t, node, "evaluate").Status)
}

func TestTask_OutputVerificationError(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	errPattern := errors.New("syntax error in pattern")
	verifier := mocks.NewMockVerifier(gomock.NewController(t))
	manager := datanode.NewManager(fs.NewResolver(fs.NewWalker()), f.store, f.liveness, verifier,
		telemetry.NewNoOpTracer(), f.logger)

	node, err := manager.Create(t.Context(), f.root, "exp", datanode.CreateOptions{})
	require.NoError(t, err)
	opts := datanode.TaskOptions{ExpectedOutputs: []string{"plots/[.png"}}
	verifier.EXPECT().
		VerifyOutputs(filepath.Join(node.Path(), "evaluate"), opts.ExpectedOutputs).
		Return(nil, errPattern)

	err = node.RunTask(t.Context(), "evaluate", opts, func(context.Context, *datanode.Task) error {
		return nil
	})
	require.ErrorIs(t, err, errPattern)

	state := taskStatus(t, node, "evaluate")
	assert.Equal(t, domain.TaskFailed, state.Status)
	assert.Equal(t, "syntax error in pattern", state.Detail)
}

func TestTask_LockLost(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	node := f.create(t, f.root, "exp", datanode.CreateOptions{})

	task, err := node.HandleTask(t.Context(), "train", datanode.TaskOptions{})
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(task.Path()))

	err = task.Close(errDiverged)
	require.ErrorIs(t, err, domain.ErrLockLost)
	require.ErrorIs(t, err, domain.ErrInvalidToken)
	require.ErrorIs(t, err, errDiverged)
}

func TestRunTask_Panic(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	node := f.create(t, f.root, "exp", datanode.CreateOptions{})

	assert.PanicsWithValue(t, "out of memory", func() {
		_ = node.RunTask(t.Context(), "train", datanode.TaskOptions{}, func(context.Context, *datanode.Task) error {
			panic("out of memory")
		})
	})

	state := taskStatus(t, node, "train")
	assert.Equal(t, domain.TaskFailed, state.Status)
	assert.Contains(t, state.Detail, "task panicked")
}

func TestRunTask_Goexit(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	node := f.create(t, f.root, "exp", datanode.CreateOptions{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = node.RunTask(context.Background(), "train", datanode.TaskOptions{}, func(context.Context, *datanode.Task) error {
			runtime.Goexit()
			return nil
		})
	}()
	<-done

	assert.Equal(t, domain.TaskFailed, taskStatus(t, node, "train").Status)
}

func TestRunTask_Cancelled(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	node := f.create(t, f.root, "exp", datanode.CreateOptions{})

	ctx, cancel := context.WithCancel(t.Context())
	err := node.RunTask(ctx, "train", datanode.TaskOptions{}, func(context.Context, *datanode.Task) error {
		cancel()
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, domain.TaskFailed, taskStatus(t, node, "train").Status)
}

func TestTask_Span(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	tracer := mocks.NewMockTracer(ctrl)
	span := mocks.NewMockSpan(ctrl)
	f := newFixture(t, tracer)
	node := f.create(t, f.root, "exp", datanode.CreateOptions{})

	tracer.EXPECT().Start(gomock.Any(), datanode.TaskSpanName, gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string, opts ...ports.SpanOption) (context.Context, ports.Span) {
			var cfg ports.SpanConfig
			for _, opt := range opts {
				opt(&cfg)
			}
			assert.Equal(t, "train", cfg.Attributes["task"])
			assert.Equal(t, node.Path(), cfg.Attributes["node"])
			return ctx, span
		})
	span.EXPECT().Write([]byte("epoch 1\n")).Return(8, nil)
	span.EXPECT().SetAttribute("outcome", "failed")
	span.EXPECT().RecordError(gomock.Any())
	span.EXPECT().End()

	err := node.RunTask(t.Context(), "train", datanode.TaskOptions{}, func(_ context.Context, task *datanode.Task) error {
		_, err := task.Output().Write([]byte("epoch 1\n"))
		require.NoError(t, err)
		return errDiverged
	})
	require.ErrorIs(t, err, errDiverged)
}
