package liveness

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/datanode/internal/core/ports"
)

// NodeID is the unique identifier for the process liveness Graft node.
const NodeID graft.ID = "adapter.liveness"

func init() {
	graft.Register(graft.Node[ports.ProcessLiveness]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ProcessLiveness, error) {
			return NewChecker(), nil
		},
	})
}
