package datanode

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/datanode/internal/adapters/fs"        //nolint:depguard // Wired in engine wiring
	"go.trai.ch/datanode/internal/adapters/liveness"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/datanode/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/datanode/internal/adapters/marker"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/datanode/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/datanode/internal/core/ports"
)

// NodeID is the unique identifier for the data node manager Graft node.
const NodeID graft.ID = "engine.datanode"

func init() {
	graft.Register(graft.Node[*Manager]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			fs.ResolverNodeID,
			marker.NodeID,
			liveness.NodeID,
			fs.VerifierNodeID,
			telemetry.TracerNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Manager, error) {
			resolver, err := graft.Dep[ports.PathResolver](ctx)
			if err != nil {
				return nil, err
			}

			markers, err := graft.Dep[ports.MarkerStore](ctx)
			if err != nil {
				return nil, err
			}

			live, err := graft.Dep[ports.ProcessLiveness](ctx)
			if err != nil {
				return nil, err
			}

			verifier, err := graft.Dep[ports.Verifier](ctx)
			if err != nil {
				return nil, err
			}

			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewManager(resolver, markers, live, verifier, tracer, log), nil
		},
	})
}
