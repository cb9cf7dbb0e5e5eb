package ports

import "go.trai.ch/datanode/internal/core/domain"

// ConfigLoader defines the interface for loading the tool configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load discovers the configuration file by walking up from cwd.
	// When no file is found the default settings are returned.
	Load(cwd string) (domain.Settings, error)
}
