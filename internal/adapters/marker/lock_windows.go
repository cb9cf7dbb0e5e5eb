//go:build windows

package marker

import (
	"context"
	"errors"
	"os"
	"time"

	"go.trai.ch/datanode/internal/core/domain"
	"golang.org/x/sys/windows"
)

// guardPollInterval is how often a contended guard is retried.
const guardPollInterval = 5 * time.Millisecond

// acquireGuard takes an exclusive LockFileEx lock on the first byte of the guard file
// at path, creating it if needed. Windows releases the lock when the handle's process
// exits, so a crash never leaves the guard held.
func acquireGuard(ctx context.Context, path string) (func() error, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, domain.FilePerm) //nolint:gosec // guard path is derived from a validated task dir
	if err != nil {
		return nil, err
	}

	handle := windows.Handle(f.Fd())
	overlapped := new(windows.Overlapped)
	for {
		err = windows.LockFileEx(handle, windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY, 0, 1, 0, overlapped)
		if err == nil {
			break
		}
		if !errors.Is(err, windows.ERROR_LOCK_VIOLATION) {
			_ = f.Close()
			return nil, err
		}

		select {
		case <-ctx.Done():
			_ = f.Close()
			return nil, ctx.Err()
		case <-time.After(guardPollInterval):
		}
	}

	return func() error {
		unlockErr := windows.UnlockFileEx(handle, 0, 1, 0, overlapped)
		return errors.Join(unlockErr, f.Close())
	}, nil
}
