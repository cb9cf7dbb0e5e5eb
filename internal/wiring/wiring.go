// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/datanode/internal/adapters/config"
	_ "go.trai.ch/datanode/internal/adapters/fs"
	_ "go.trai.ch/datanode/internal/adapters/liveness"
	_ "go.trai.ch/datanode/internal/adapters/logger"
	_ "go.trai.ch/datanode/internal/adapters/marker"
	_ "go.trai.ch/datanode/internal/adapters/shell"
	_ "go.trai.ch/datanode/internal/adapters/telemetry"
	_ "go.trai.ch/datanode/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/datanode/internal/app"
	_ "go.trai.ch/datanode/internal/engine/audit"
	_ "go.trai.ch/datanode/internal/engine/datanode"
)
