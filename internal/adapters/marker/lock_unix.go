//go:build unix

package marker

import (
	"context"
	"errors"
	"os"
	"time"

	"go.trai.ch/datanode/internal/core/domain"
	"golang.org/x/sys/unix"
)

// guardPollInterval is how often a contended guard is retried.
const guardPollInterval = 5 * time.Millisecond

// acquireGuard takes an exclusive advisory lock on the guard file at path, creating it
// if needed. The kernel drops the lock when the process dies, so a crash never leaves
// the guard held.
func acquireGuard(ctx context.Context, path string) (func() error, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, domain.FilePerm) //nolint:gosec // guard path is derived from a validated task dir
	if err != nil {
		return nil, err
	}

	fd := int(f.Fd()) //nolint:gosec // file descriptors fit in int
	for {
		err = unix.Flock(fd, unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			break
		}
		if !errors.Is(err, unix.EWOULDBLOCK) && !errors.Is(err, unix.EINTR) {
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
		unlockErr := unix.Flock(fd, unix.LOCK_UN)
		return errors.Join(unlockErr, f.Close())
	}, nil
}
