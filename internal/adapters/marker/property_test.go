package marker_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"go.trai.ch/datanode/internal/adapters/marker"
	"go.trai.ch/datanode/internal/core/domain"
	"go.trai.ch/datanode/internal/core/ports"
	"pgregory.net/rapid"
)

// deadOwners is a liveness fake that reports every owner in the set as dead.
type deadOwners map[int]bool

func (d deadOwners) Self(context.Context) (domain.Owner, error) { return ownerA, nil }

func (d deadOwners) IsAlive(_ context.Context, owner domain.Owner) (bool, error) {
	return !d[owner.PID], nil
}

type quietLogger struct{}

func (quietLogger) Debug(string) {}
func (quietLogger) Info(string)  {}
func (quietLogger) Warn(string)  {}
func (quietLogger) Error(error)  {}

func TestStore_NodeMarkerRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := marker.NewStore(deadOwners{}, quietLogger{})

	rapid.Check(t, func(t *rapid.T) {
		meta := domain.NodeMetadata{
			Name:      rapid.StringMatching(`[a-zA-Z0-9][a-zA-Z0-9 _.-]{0,40}`).Draw(t, "name"),
			Class:     rapid.StringMatching(`[a-z_]{0,12}`).Draw(t, "class"),
			CreatedAt: time.Unix(rapid.Int64Range(0, 4_000_000_000).Draw(t, "created"), 0).UTC(),
		}

		if err := store.WriteNodeMarker(context.Background(), dir, meta); err != nil {
			t.Fatalf("write: %v", err)
		}
		got, err := store.ReadNodeMarker(context.Background(), dir)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if got.Name != meta.Name || got.Class != meta.Class || !got.CreatedAt.Equal(meta.CreatedAt) {
			t.Fatalf("round trip mismatch: wrote %+v, read %+v", meta, got)
		}
	})
}

// TestStore_TaskStateMachine drives random begin/finalize/crash sequences against one task
// and checks the observed state against a model after every step.
func TestStore_TaskStateMachine(t *testing.T) {
	root := t.TempDir()
	iteration := 0

	rapid.Check(t, func(t *rapid.T) {
		iteration++
		task := filepath.Join(root, fmt.Sprintf("task-%d", iteration))
		dead := deadOwners{}
		store := marker.NewStore(dead, quietLogger{})
		ctx := context.Background()

		model := domain.TaskAbsent
		var held *domain.LockToken
		nextPID := 1

		steps := rapid.IntRange(1, 12).Draw(t, "steps")
		for range steps {
			switch rapid.SampledFrom([]string{"begin", "finalize", "crash"}).Draw(t, "action") {
			case "begin":
				redo := held == nil && model == domain.TaskCompleted && rapid.Bool().Draw(t, "withRedo")
				owner := domain.Owner{Host: "h", PID: nextPID}
				nextPID++
				token, err := store.BeginTask(ctx, task, owner, ports.BeginOptions{Redo: redo})
				switch {
				case model == domain.TaskRunning:
					if !errors.Is(err, domain.ErrAlreadyRunning) {
						t.Fatalf("expected ErrAlreadyRunning, got %v", err)
					}
				case model == domain.TaskCompleted && !redo:
					if !errors.Is(err, domain.ErrTaskCompleted) {
						t.Fatalf("expected ErrTaskCompleted, got %v", err)
					}
				default:
					if err != nil {
						t.Fatalf("begin: %v", err)
					}
					held = &token
					model = domain.TaskRunning
				}
			case "finalize":
				if held == nil {
					continue
				}
				outcome := domain.OutcomeCompleted
				if rapid.Bool().Draw(t, "failed") {
					outcome = domain.OutcomeFailed
				}
				if err := store.FinalizeTask(ctx, *held, outcome, "detail"); err != nil {
					t.Fatalf("finalize: %v", err)
				}
				held = nil
				model = outcome.Status()
			case "crash":
				if held == nil {
					continue
				}
				dead[held.Owner.PID] = true
				held = nil
				// A dead owner's marker is running until someone reclaims it.
				model = domain.TaskAbsent
			}

			state, err := store.ReadTaskState(ctx, task)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			switch {
			case held == nil && state.Status == domain.TaskRunning:
				if !state.Stale {
					t.Fatalf("running task without a holder must be stale")
				}
			case state.Status != model:
				t.Fatalf("state %s, model %s", state.Status, model)
			}
		}
	})
}
