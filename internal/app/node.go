package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/datanode/internal/adapters/config"  //nolint:depguard // Wired in app layer
	"go.trai.ch/datanode/internal/adapters/logger"  //nolint:depguard // Wired in app layer
	"go.trai.ch/datanode/internal/adapters/shell"   //nolint:depguard // Wired in app layer
	"go.trai.ch/datanode/internal/adapters/watcher" //nolint:depguard // Wired in app layer
	"go.trai.ch/datanode/internal/core/ports"
	"go.trai.ch/datanode/internal/engine/audit"
	"go.trai.ch/datanode/internal/engine/datanode"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			datanode.NodeID,
			audit.NodeID,
			shell.NodeID,
			watcher.NodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewComponents(app, log), nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	manager, err := graft.Dep[*datanode.Manager](ctx)
	if err != nil {
		return nil, err
	}

	auditor, err := graft.Dep[*audit.Auditor](ctx)
	if err != nil {
		return nil, err
	}

	executor, err := graft.Dep[ports.Executor](ctx)
	if err != nil {
		return nil, err
	}

	w, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, manager, auditor, executor, w, log), nil
}
