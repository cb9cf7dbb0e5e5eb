//go:build unix || windows

package marker_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/datanode/internal/adapters/marker"
	"go.trai.ch/datanode/internal/core/domain"
	"go.trai.ch/datanode/internal/core/ports"
)

func TestAcquireGuard_IsExclusive(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), domain.TaskLockName)

	release, err := marker.AcquireGuard(t.Context(), path)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()
	_, err = marker.AcquireGuard(ctx, path)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, release())

	again, err := marker.AcquireGuard(t.Context(), path)
	require.NoError(t, err)
	require.NoError(t, again())
}

func TestStore_LeftoverGuardFileDoesNotBlock(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	task := filepath.Join(t.TempDir(), "train")
	require.NoError(t, os.Mkdir(task, domain.DirPerm))
	require.NoError(t, os.WriteFile(domain.TaskLockPath(task), nil, domain.FilePerm))

	ctx, cancel := context.WithTimeout(t.Context(), 2*time.Second)
	defer cancel()
	token, err := f.store.BeginTask(ctx, task, ownerA, ports.BeginOptions{})
	require.NoError(t, err)
	require.NoError(t, f.store.FinalizeTask(ctx, token, domain.OutcomeCompleted, ""))

	state, err := f.store.ReadTaskState(t.Context(), task)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskCompleted, state.Status)
}
