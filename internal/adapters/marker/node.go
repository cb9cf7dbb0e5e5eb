package marker

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/datanode/internal/adapters/liveness"
	"go.trai.ch/datanode/internal/adapters/logger"
	"go.trai.ch/datanode/internal/core/ports"
)

// NodeID is the unique identifier for the marker store Graft node.
const NodeID graft.ID = "adapter.marker_store"

func init() {
	graft.Register(graft.Node[ports.MarkerStore]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{liveness.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.MarkerStore, error) {
			live, err := graft.Dep[ports.ProcessLiveness](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewStore(live, log), nil
		},
	})
}
