// Package detector provides environment detection for output mode selection.
package detector

import (
	"os"

	"go.trai.ch/datanode/internal/core/domain"
	"golang.org/x/term"
)

// DetectEnvironment returns the output mode that suits f.
// Terminals get pretty output unless the CI environment variable is set.
func DetectEnvironment(f *os.File) domain.OutputMode {
	isTTY := f != nil && term.IsTerminal(int(f.Fd())) //nolint:gosec // file descriptors fit in int
	return detect(isTTY, os.Getenv("CI"))
}

func detect(isTTY bool, ci string) domain.OutputMode {
	isCI := ci == "true" || ci == "1"
	if !isTTY || isCI {
		return domain.OutputPlain
	}
	return domain.OutputPretty
}

// ResolveMode picks the effective output mode. An explicit flag wins over the
// configured mode; auto in either place defers to the detected mode.
func ResolveMode(autoDetected, configured, flag domain.OutputMode) domain.OutputMode {
	for _, mode := range []domain.OutputMode{flag, configured} {
		if mode != "" && mode != domain.OutputAuto {
			return mode
		}
	}
	if autoDetected == "" || autoDetected == domain.OutputAuto {
		return domain.OutputPlain
	}
	return autoDetected
}
