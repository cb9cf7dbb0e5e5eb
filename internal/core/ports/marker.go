package ports

import (
	"context"

	"go.trai.ch/datanode/internal/core/domain"
)

// BeginOptions tunes how a task is started.
type BeginOptions struct {
	// Redo allows restarting a task that already completed.
	Redo bool
}

// MarkerStore reads and writes the sentinel files that encode node identity and task state.
// Every mutation is a single-file atomic replace.
//
//go:generate mockgen -source=marker.go -destination=mocks/mock_marker.go -package=mocks
type MarkerStore interface {
	// ReadNodeMarker returns the metadata of the node at nodePath.
	// It returns domain.ErrMarkerNotFound when no marker exists and domain.ErrCorruptMarker
	// when the marker cannot be decoded.
	ReadNodeMarker(ctx context.Context, nodePath string) (domain.NodeMetadata, error)

	// WriteNodeMarker atomically writes the node marker inside nodePath.
	WriteNodeMarker(ctx context.Context, nodePath string, meta domain.NodeMetadata) error

	// ReadTaskState classifies the task directory at taskPath.
	ReadTaskState(ctx context.Context, taskPath string) (domain.TaskState, error)

	// DeclareTask records a task as never started, creating its directory if needed.
	// It does nothing when the task already has a marker.
	DeclareTask(ctx context.Context, taskPath string) error

	// BeginTask atomically moves a task into the running state under owner.
	// It returns domain.ErrAlreadyRunning when a live owner holds the task.
	BeginTask(ctx context.Context, taskPath string, owner domain.Owner, opts BeginOptions) (domain.LockToken, error)

	// FinalizeTask atomically replaces the running marker held by token with the terminal marker.
	// It is idempotent for the same token and outcome and returns domain.ErrInvalidToken otherwise.
	FinalizeTask(ctx context.Context, token domain.LockToken, outcome domain.Outcome, detail string) error

	// RemoveTask deletes the task directory unless a live owner is running it.
	RemoveTask(ctx context.Context, taskPath string) error
}
