package config

// Datanodefile represents the structure of the datanode.yaml configuration file.
type Datanodefile struct {
	Version string    `yaml:"version"`
	Root    string    `yaml:"root"`
	Ignore  []string  `yaml:"ignore"`
	Output  string    `yaml:"output"`
	Watch   *WatchDTO `yaml:"watch"`
}

// WatchDTO configures `audit --watch`.
type WatchDTO struct {
	Debounce string `yaml:"debounce"`
}
