package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/datanode/internal/adapters/fs"
	"go.trai.ch/datanode/internal/core/domain"
	"pgregory.net/rapid"
)

func mustCreateDir(t *testing.T, root, rel string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(root, rel), domain.DirPerm))
}

func mustCreateFile(t *testing.T, root, rel string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(root, rel), []byte("x"), domain.FilePerm))
}

func collect(t *testing.T, walker *fs.Walker, dir string, ignores []string) []string {
	t.Helper()
	var dirs []string
	for path, err := range walker.Subdirectories(dir, ignores) {
		require.NoError(t, err)
		dirs = append(dirs, filepath.Base(path))
	}
	return dirs
}

func TestWalker_Subdirectories(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	mustCreateDir(t, root, "b_task")
	mustCreateDir(t, root, "a_task")
	mustCreateDir(t, root, "c_task/nested")
	mustCreateDir(t, root, ".git")
	mustCreateDir(t, root, "node_modules")
	mustCreateFile(t, root, "notes.txt")
	mustCreateFile(t, root, domain.NodeMarkerName)

	walker := fs.NewWalker()

	t.Run("lexicographic and direct children only", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, []string{"a_task", "b_task", "c_task", "node_modules"}, collect(t, walker, root, nil))
	})

	t.Run("ignore globs", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, []string{"a_task", "c_task"}, collect(t, walker, root, []string{"node_*", "b_*"}))
	})

	t.Run("restartable", func(t *testing.T) {
		t.Parallel()
		seq := walker.Subdirectories(root, nil)
		var first, second []string
		for path := range seq {
			first = append(first, path)
		}
		for path := range seq {
			second = append(second, path)
		}
		assert.Equal(t, first, second)
	})

	t.Run("early stop", func(t *testing.T) {
		t.Parallel()
		var seen []string
		for path := range walker.Subdirectories(root, nil) {
			seen = append(seen, path)
			break
		}
		assert.Len(t, seen, 1)
	})
}

func TestWalker_Subdirectories_MissingDir(t *testing.T) {
	t.Parallel()

	walker := fs.NewWalker()
	for _, err := range walker.Subdirectories(filepath.Join(t.TempDir(), "missing"), nil) {
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	}
}

func TestResolver_Resolve(t *testing.T) {
	t.Parallel()

	resolver := fs.NewResolver(fs.NewWalker())

	path, err := resolver.Resolve("/data", "experiment 1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data", "experiment 1"), path)

	for _, bad := range []string{"", "..", "a/b", ".node_marker", "subdatanodes"} {
		_, err := resolver.Resolve("/data", bad)
		require.ErrorIs(t, err, domain.ErrInvalidName, "name %q", bad)
	}
}

func TestResolver_Resolve_IsPure(t *testing.T) {
	resolver := fs.NewResolver(fs.NewWalker())

	rapid.Check(t, func(t *rapid.T) {
		root := rapid.StringMatching(`/[a-z]{1,6}(/[a-z]{1,6}){0,3}`).Draw(t, "root")
		name := rapid.StringMatching(`[a-zA-Z0-9][a-zA-Z0-9_ -]{0,20}`).Draw(t, "name")
		if name == domain.SubnodesDirName {
			return
		}

		first, err := resolver.Resolve(root, name)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, _ := resolver.Resolve(root, name)
		if first != second || filepath.Dir(first) != filepath.Clean(root) {
			t.Fatalf("resolve(%q, %q) = %q, %q", root, name, first, second)
		}
	})
}

func TestResolver_IsValidNode(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	mustCreateDir(t, root, "node")
	mustCreateFile(t, root, filepath.Join("node", domain.NodeMarkerName))
	mustCreateDir(t, root, "plain")
	mustCreateDir(t, root, filepath.Join("weird", domain.NodeMarkerName))

	resolver := fs.NewResolver(fs.NewWalker())

	assert.True(t, resolver.IsValidNode(filepath.Join(root, "node")))
	assert.False(t, resolver.IsValidNode(filepath.Join(root, "plain")))
	assert.False(t, resolver.IsValidNode(filepath.Join(root, "weird")), "marker must be a regular file")
	assert.False(t, resolver.IsValidNode(filepath.Join(root, "missing")))
}

func TestResolver_TaskDir(t *testing.T) {
	t.Parallel()

	resolver := fs.NewResolver(fs.NewWalker())

	dir, err := resolver.TaskDir("/data/node", "train")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data/node", "train"), dir)
	assert.Equal(t, filepath.Join(dir, "subdatanodes"), resolver.SubnodesDir(dir))

	_, err = resolver.TaskDir("/data/node", ".task_marker")
	require.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestVerifier_VerifyOutputs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	mustCreateFile(t, root, "model.bin")
	mustCreateDir(t, root, "plots")
	mustCreateFile(t, root, "plots/loss.png")

	verifier := fs.NewVerifier()

	missing, err := verifier.VerifyOutputs(root, []string{"model.bin", "plots/*.png", "plots"})
	require.NoError(t, err)
	assert.Empty(t, missing)

	missing, err = verifier.VerifyOutputs(root, []string{"model.bin", "metrics.json", "plots/*.svg"})
	require.NoError(t, err)
	assert.Equal(t, []string{"metrics.json", "plots/*.svg"}, missing)
}
