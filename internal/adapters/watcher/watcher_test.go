package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/datanode/internal/adapters/watcher"
	"go.trai.ch/datanode/internal/core/domain"
	"go.trai.ch/datanode/internal/core/ports"
	"go.trai.ch/datanode/internal/core/ports/mocks"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
)

func TestConvertEvent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     string
		op       fsnotify.Op
		wantOp   ports.WatchOp
		relevant bool
	}{
		{name: "marker write", path: "/r/t/.task_marker", op: fsnotify.Write, wantOp: ports.OpWrite, relevant: true},
		{name: "marker rename target", path: "/r/t/.task_marker", op: fsnotify.Create, wantOp: ports.OpCreate, relevant: true},
		{name: "directory removed", path: "/r/t", op: fsnotify.Remove, wantOp: ports.OpRemove, relevant: true},
		{name: "renamed", path: "/r/t", op: fsnotify.Rename, wantOp: ports.OpRename, relevant: true},
		{name: "guard file", path: "/r/t/" + domain.TaskLockName, op: fsnotify.Write},
		{name: "atomic temp file", path: "/r/t/.task_marker.tmp.12345", op: fsnotify.Create},
		{name: "chmod only", path: "/r/t/.task_marker", op: fsnotify.Chmod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			event, relevant := watcher.ConvertEvent(tt.path, tt.op)
			assert.Equal(t, tt.relevant, relevant)
			if tt.relevant {
				assert.Equal(t, tt.wantOp, event.Operation)
				assert.Equal(t, tt.path, event.Path)
			}
		})
	}
}

func TestWatcher_ReportsMarkerChanges(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	root := t.TempDir()
	taskDir := filepath.Join(root, "train")
	require.NoError(t, os.Mkdir(taskDir, domain.DirPerm))
	require.NoError(t, os.Mkdir(filepath.Join(root, "scratch"), domain.DirPerm))

	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()

	w, err := watcher.NewWatcher(mockLogger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx, root, []string{"scratch"}))

	received := make(chan ports.WatchEvent, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for event := range w.Events() {
			received <- event
		}
	}()

	require.NoError(t, os.WriteFile(filepath.Join(root, "scratch", "ignored"), []byte("x"), domain.FilePerm))
	marker := domain.TaskMarkerPath(taskDir)
	require.NoError(t, os.WriteFile(marker, []byte("{}"), domain.FilePerm))

	deadline := time.After(5 * time.Second)
	for found := false; !found; {
		select {
		case event := <-received:
			assert.NotContains(t, event.Path, "scratch")
			found = event.Path == marker
		case <-deadline:
			t.Fatal("marker change was not reported")
		}
	}

	cancel()
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
	<-done
}
