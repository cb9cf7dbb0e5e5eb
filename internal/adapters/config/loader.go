// Package config provides the configuration loader for datanode.
package config

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"slices"
	"time"

	"go.trai.ch/datanode/internal/core/domain"
	"go.trai.ch/datanode/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// supportedVersions lists the accepted values of the `version` key.
var supportedVersions = []string{"", "1"}

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
	FS     FileSystem
}

// NewLoader creates a new Loader reading from the local file system.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger, FS: NewOSFS()}
}

// NewLoaderWithFS creates a new Loader reading from fsys.
func NewLoaderWithFS(logger ports.Logger, fsys FileSystem) *Loader {
	return &Loader{Logger: logger, FS: fsys}
}

// Load discovers datanode.yaml by walking up from cwd and merges it over the defaults.
// When no file is found, the defaults are returned with Root resolved against cwd.
func (l *Loader) Load(cwd string) (domain.Settings, error) {
	settings := domain.DefaultSettings()

	configPath, found := l.findConfiguration(cwd)
	if !found {
		settings.Root = filepath.Clean(cwd)
		return settings, nil
	}

	var file Datanodefile
	if err := l.readAndUnmarshalYAML(configPath, &file); err != nil {
		return domain.Settings{}, err
	}

	return l.apply(settings, configPath, &file)
}

func (l *Loader) findConfiguration(cwd string) (string, bool) {
	currentDir := cwd
	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if info, err := l.FS.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", false
		}
		currentDir = parentDir
	}
}

func (l *Loader) apply(settings domain.Settings, configPath string, file *Datanodefile) (domain.Settings, error) {
	parseErr := func(msg string) error {
		return zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, msg), "path", configPath)
	}

	if !slices.Contains(supportedVersions, file.Version) {
		return domain.Settings{}, zerr.With(parseErr("unsupported config version"), "version", file.Version)
	}

	settings.ConfigPath = configPath
	settings.Root = resolveRoot(configPath, file.Root)

	if file.Ignore != nil {
		for _, pattern := range file.Ignore {
			if _, err := filepath.Match(pattern, ""); err != nil {
				return domain.Settings{}, zerr.With(parseErr("invalid ignore pattern"), "pattern", pattern)
			}
		}
		settings.Ignore = file.Ignore
	}

	mode, err := domain.ParseOutputMode(file.Output)
	if err != nil {
		return domain.Settings{}, zerr.With(err, "path", configPath)
	}
	settings.Output = mode

	if file.Watch != nil && file.Watch.Debounce != "" {
		debounce, err := time.ParseDuration(file.Watch.Debounce)
		if err != nil || debounce < 0 {
			return domain.Settings{}, zerr.With(parseErr("invalid watch.debounce"), "value", file.Watch.Debounce)
		}
		settings.Debounce = debounce
	}

	l.Logger.Debug("loaded configuration from " + configPath)
	return settings, nil
}

// resolveRoot resolves the configured root relative to the directory of the config file.
func resolveRoot(configPath, configuredRoot string) string {
	configDir := filepath.Dir(configPath)
	if configuredRoot == "" {
		return filepath.Clean(configDir)
	}
	if filepath.IsAbs(configuredRoot) {
		return filepath.Clean(configuredRoot)
	}
	return filepath.Clean(filepath.Join(configDir, configuredRoot))
}

// readAndUnmarshalYAML reads a YAML file and strictly unmarshals it into target.
func (l *Loader) readAndUnmarshalYAML(configPath string, target *Datanodefile) error {
	data, err := l.FS.ReadFile(configPath)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, err.Error()), "path", configPath)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, err.Error()), "path", configPath)
	}

	return nil
}
