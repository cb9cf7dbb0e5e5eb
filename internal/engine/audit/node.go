package audit

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/datanode/internal/adapters/fs"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/datanode/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/datanode/internal/adapters/marker" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/datanode/internal/core/ports"
)

// NodeID is the unique identifier for the auditor Graft node.
const NodeID graft.ID = "engine.audit"

func init() {
	graft.Register(graft.Node[*Auditor]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.ResolverNodeID, marker.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Auditor, error) {
			resolver, err := graft.Dep[ports.PathResolver](ctx)
			if err != nil {
				return nil, err
			}

			markers, err := graft.Dep[ports.MarkerStore](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewAuditor(resolver, markers, log), nil
		},
	})
}
