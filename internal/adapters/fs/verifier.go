package fs

import (
	"os"
	"path/filepath"

	"go.trai.ch/datanode/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Verifier = (*Verifier)(nil)

// Verifier provides functionality to verify the existence of files.
type Verifier struct{}

// NewVerifier creates a new Verifier.
func NewVerifier() *Verifier {
	return &Verifier{}
}

// VerifyOutputs returns the outputs, relative to dir, that do not exist.
// Each output may be a glob; a glob without matches counts as missing.
func (v *Verifier) VerifyOutputs(dir string, outputs []string) ([]string, error) {
	var missing []string
	for _, output := range outputs {
		path := filepath.Join(dir, output)

		matches, err := filepath.Glob(path)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to glob output"), "path", path)
		}
		if len(matches) > 0 {
			continue
		}

		if _, err := os.Lstat(path); err != nil {
			if os.IsNotExist(err) {
				missing = append(missing, output)
				continue
			}
			return nil, zerr.With(zerr.Wrap(err, "failed to stat output"), "path", path)
		}
	}
	return missing, nil
}
