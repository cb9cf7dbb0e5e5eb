package ports

import (
	"context"

	"go.trai.ch/datanode/internal/core/domain"
)

// ProcessLiveness is the host capability used to decide whether a running marker is stale.
//
//go:generate mockgen -source=liveness.go -destination=mocks/mock_liveness.go -package=mocks
type ProcessLiveness interface {
	// Self describes the current process as a task owner.
	Self(ctx context.Context) (domain.Owner, error)

	// IsAlive reports whether owner is still running. Implementations return true
	// whenever they cannot prove the owner dead.
	IsAlive(ctx context.Context, owner domain.Owner) (bool, error)
}
