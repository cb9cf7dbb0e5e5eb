// Package liveness decides whether the owner recorded in a running task marker still exists.
package liveness

import (
	"context"
	"math"
	"os"

	"github.com/shirou/gopsutil/v3/process"
	"go.trai.ch/datanode/internal/core/domain"
	"go.trai.ch/datanode/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ProcessLiveness = (*Checker)(nil)

// Checker implements ports.ProcessLiveness with the process table of the local host.
// Owners on other hosts can never be proven dead and are always reported alive.
type Checker struct {
	hostname func() (string, error)
	pid      int
}

// NewChecker creates a Checker for the current process.
func NewChecker() *Checker {
	return &Checker{hostname: os.Hostname, pid: os.Getpid()}
}

// Self describes the current process as a task owner.
func (c *Checker) Self(ctx context.Context) (domain.Owner, error) {
	host, err := c.hostname()
	if err != nil {
		return domain.Owner{}, zerr.Wrap(domain.ErrLivenessCheckFailed, err.Error())
	}

	start, err := createTime(ctx, c.pid)
	if err != nil {
		return domain.Owner{}, zerr.With(zerr.Wrap(domain.ErrLivenessCheckFailed, err.Error()), "pid", c.pid)
	}

	return domain.Owner{Host: host, PID: c.pid, ProcessStart: start}, nil
}

// IsAlive reports whether owner is still running. A pid that exists but belongs to a
// process started at a different time is a recycled pid and counts as dead.
func (c *Checker) IsAlive(ctx context.Context, owner domain.Owner) (bool, error) {
	host, err := c.hostname()
	if err != nil {
		return true, zerr.Wrap(domain.ErrLivenessCheckFailed, err.Error())
	}
	if owner.Host != host {
		return true, nil
	}
	if owner.PID <= 0 || owner.PID > math.MaxInt32 {
		return false, nil
	}

	exists, err := process.PidExistsWithContext(ctx, int32(owner.PID))
	if err != nil {
		return true, zerr.With(zerr.Wrap(domain.ErrLivenessCheckFailed, err.Error()), "owner", owner.String())
	}
	if !exists {
		return false, nil
	}
	if owner.ProcessStart == 0 {
		return true, nil
	}

	start, err := createTime(ctx, owner.PID)
	if err != nil {
		// The process may have exited between the two checks.
		if gone, _ := process.PidExistsWithContext(ctx, int32(owner.PID)); !gone {
			return false, nil
		}
		return true, zerr.With(zerr.Wrap(domain.ErrLivenessCheckFailed, err.Error()), "owner", owner.String())
	}
	return start == owner.ProcessStart, nil
}

// createTime returns the start time of pid in Unix milliseconds.
func createTime(ctx context.Context, pid int) (int64, error) {
	p, err := process.NewProcessWithContext(ctx, int32(pid)) //nolint:gosec // pid range is checked by callers
	if err != nil {
		return 0, err
	}
	return p.CreateTimeWithContext(ctx)
}
