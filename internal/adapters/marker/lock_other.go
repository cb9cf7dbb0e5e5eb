//go:build !unix && !windows

package marker

import (
	"context"
	"errors"
	"os"
	"time"

	"go.trai.ch/datanode/internal/core/domain"
)

const (
	// guardPollInterval is how often a contended guard is retried.
	guardPollInterval = 5 * time.Millisecond

	// staleGuardAge is the age after which a held guard is treated as left behind by a
	// crashed process. A transition holds the guard for one read and one atomic write.
	staleGuardAge = 30 * time.Second
)

// acquireGuard creates the guard file at path and then takes an exclusive lock by
// creating a sibling file with O_EXCL. The sibling is removed on release, and taken
// over once it is older than staleGuardAge.
func acquireGuard(ctx context.Context, path string) (func() error, error) {
	guard, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, domain.FilePerm) //nolint:gosec // guard path is derived from a validated task dir
	if err != nil {
		return nil, err
	}
	_ = guard.Close()

	held := path + ".held"
	for {
		f, err := os.OpenFile(held, os.O_CREATE|os.O_EXCL|os.O_WRONLY, domain.FilePerm) //nolint:gosec // see above
		if err == nil {
			_ = f.Close()
			break
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, err
		}
		if info, statErr := os.Stat(held); statErr == nil && time.Since(info.ModTime()) > staleGuardAge {
			_ = os.Remove(held)
			continue
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(guardPollInterval):
		}
	}

	return func() error {
		return os.Remove(held)
	}, nil
}
