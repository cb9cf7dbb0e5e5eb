package domain

import (
	"strings"
	"time"

	"go.trai.ch/zerr"
)

// DefaultDebounce is the watch debounce window used when none is configured.
const DefaultDebounce = 500 * time.Millisecond

// OutputMode selects how listings and audits are rendered.
type OutputMode string

const (
	// OutputAuto picks pretty output on a terminal and plain output otherwise.
	OutputAuto OutputMode = "auto"
	// OutputPretty renders coloured output with status icons.
	OutputPretty OutputMode = "pretty"
	// OutputPlain renders uncoloured, line-oriented output.
	OutputPlain OutputMode = "plain"
	// OutputJSON renders one JSON document per result.
	OutputJSON OutputMode = "json"
)

// ParseOutputMode parses an output mode name; empty means auto.
func ParseOutputMode(s string) (OutputMode, error) {
	switch mode := OutputMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case "":
		return OutputAuto, nil
	case OutputAuto, OutputPretty, OutputPlain, OutputJSON:
		return mode, nil
	default:
		return "", zerr.With(zerr.Wrap(ErrInvalidOutputMode, "cannot parse output mode"), "value", s)
	}
}

// Settings is the resolved configuration of the tool.
type Settings struct {
	// ConfigPath is the file the settings were read from, empty when defaults are used.
	ConfigPath string
	// Root is the default root node for audits.
	Root string
	// Ignore lists glob patterns of directory names that walks skip.
	Ignore []string
	// Output is the default output mode.
	Output OutputMode
	// Debounce is the window used to coalesce file system events while watching.
	Debounce time.Duration
}

// DefaultSettings returns the settings used when no configuration file is found.
func DefaultSettings() Settings {
	return Settings{
		Root:     ".",
		Ignore:   []string{".git", ".jj", "node_modules"},
		Output:   OutputAuto,
		Debounce: DefaultDebounce,
	}
}

// Command is an external program run inside a task directory.
type Command struct {
	Args []string
	Dir  string
	Env  []string
}
