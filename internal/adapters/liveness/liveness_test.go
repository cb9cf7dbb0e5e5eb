package liveness_test

import (
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/datanode/internal/adapters/liveness"
	"go.trai.ch/datanode/internal/core/domain"
)

func TestChecker_Self(t *testing.T) {
	t.Parallel()

	checker := liveness.NewChecker()
	owner, err := checker.Self(t.Context())
	require.NoError(t, err)

	host, err := os.Hostname()
	require.NoError(t, err)

	assert.Equal(t, host, owner.Host)
	assert.Equal(t, os.Getpid(), owner.PID)
	assert.Positive(t, owner.ProcessStart)
}

func TestChecker_IsAlive(t *testing.T) {
	t.Parallel()

	checker := liveness.NewCheckerWithHost("worker-1", os.Getpid())
	self, err := checker.Self(t.Context())
	require.NoError(t, err)

	tests := []struct {
		name  string
		owner domain.Owner
		want  bool
	}{
		{
			name:  "current process",
			owner: self,
			want:  true,
		},
		{
			name:  "current process without start time",
			owner: domain.Owner{Host: "worker-1", PID: self.PID},
			want:  true,
		},
		{
			name:  "recycled pid",
			owner: domain.Owner{Host: "worker-1", PID: self.PID, ProcessStart: self.ProcessStart - 60_000},
			want:  false,
		},
		{
			name:  "other host is never proven dead",
			owner: domain.Owner{Host: "worker-2", PID: 1 << 30},
			want:  true,
		},
		{
			name:  "invalid pid",
			owner: domain.Owner{Host: "worker-1", PID: -4},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			alive, err := checker.IsAlive(t.Context(), tt.owner)
			require.NoError(t, err)
			assert.Equal(t, tt.want, alive)
		})
	}
}

func TestChecker_IsAlive_ExitedProcess(t *testing.T) {
	t.Parallel()

	cmd := exec.Command("sh", "-c", "exit 0")
	require.NoError(t, cmd.Run())

	checker := liveness.NewCheckerWithHost("worker-1", os.Getpid())
	alive, err := checker.IsAlive(t.Context(), domain.Owner{
		Host:         "worker-1",
		PID:          cmd.ProcessState.Pid(),
		ProcessStart: 1,
	})
	require.NoError(t, err)
	assert.False(t, alive)
}
