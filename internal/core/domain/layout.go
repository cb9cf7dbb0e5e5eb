package domain

import "path/filepath"

const (
	// NodeMarkerName is the name of the file that identifies a directory as a data node.
	NodeMarkerName = ".node_marker"

	// TaskMarkerName is the name of the file that records the state of a task.
	TaskMarkerName = ".task_marker"

	// TaskLockName is the name of the advisory guard file used for task state transitions.
	TaskLockName = ".task_lock"

	// SubnodesDirName is the directory inside a task that holds the data nodes created by it.
	SubnodesDirName = "subdatanodes"

	// ConfigFileName is the name of the optional configuration file.
	ConfigFileName = "datanode.yaml"

	// MarkerSchemaVersion is the version written into every marker envelope.
	MarkerSchemaVersion = 1

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// NodeMarkerPath returns the path of the node marker inside nodePath.
func NodeMarkerPath(nodePath string) string {
	return filepath.Join(nodePath, NodeMarkerName)
}

// TaskMarkerPath returns the path of the task marker inside taskPath.
func TaskMarkerPath(taskPath string) string {
	return filepath.Join(taskPath, TaskMarkerName)
}

// TaskLockPath returns the path of the task guard file inside taskPath.
func TaskLockPath(taskPath string) string {
	return filepath.Join(taskPath, TaskLockName)
}

// SubnodesPath returns the directory holding the data nodes created by a task.
func SubnodesPath(taskPath string) string {
	return filepath.Join(taskPath, SubnodesDirName)
}
