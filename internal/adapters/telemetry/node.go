package telemetry

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/datanode/internal/adapters/logger"
	"go.trai.ch/datanode/internal/core/ports"
)

// TracerNodeID is the unique identifier for the tracer Graft node.
const TracerNodeID graft.ID = "adapter.tracer"

func init() {
	graft.Register(graft.Node[ports.Tracer]{
		ID:        TracerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.Tracer, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			NewProvider(log)
			return NewOTelTracer(InstrumentationName), nil
		},
	})
}
