package domain

import "go.trai.ch/zerr"

var (
	// ErrInvalidName is returned when a node or task name cannot be used as a directory name.
	ErrInvalidName = zerr.New("invalid name")

	// ErrAlreadyExists is returned when creating a node where a valid node already exists.
	ErrAlreadyExists = zerr.New("data node already exists")

	// ErrNotANode is returned when a directory does not carry a node marker.
	ErrNotANode = zerr.New("not a data node")

	// ErrCorruptNode is returned when a node marker is present but cannot be parsed.
	// A corrupt node is also not a valid node.
	ErrCorruptNode = zerr.Wrap(ErrNotANode, "corrupt data node marker")

	// ErrClassMismatch is returned when a node is not of the expected class.
	ErrClassMismatch = zerr.New("data node class mismatch")

	// ErrTaskBusy is returned when a task handle cannot be acquired because the task is running.
	ErrTaskBusy = zerr.New("task is busy")

	// ErrAlreadyRunning is returned by the marker store when a live owner holds the running marker.
	ErrAlreadyRunning = zerr.New("task is already running")

	// ErrTaskCompleted is returned when starting a completed task without the redo intent.
	ErrTaskCompleted = zerr.New("task already completed")

	// ErrTasksNotCompleted is returned when required tasks were not run successfully.
	ErrTasksNotCompleted = zerr.New("required tasks were not completed")

	// ErrInvalidToken is returned when finalizing with a lock token that no longer owns the task.
	ErrInvalidToken = zerr.New("invalid lock token")

	// ErrLockLost is returned when a task handle could not finalize because its lock was taken away.
	ErrLockLost = zerr.New("task lock lost")

	// ErrHandleClosed is returned when a task handle is closed more than once.
	ErrHandleClosed = zerr.New("task handle already closed")

	// ErrMissingOutputs is returned when a task finished without producing its expected outputs.
	ErrMissingOutputs = zerr.New("task expected outputs are missing")

	// ErrMarkerNotFound is returned when a marker file does not exist.
	ErrMarkerNotFound = zerr.New("marker not found")

	// ErrCorruptMarker is returned when a marker file exists but cannot be decoded.
	ErrCorruptMarker = zerr.New("corrupt marker")

	// ErrUnsupportedSchema is returned when a marker was written with an unknown schema version.
	// Such markers are treated as corrupt.
	ErrUnsupportedSchema = zerr.Wrap(ErrCorruptMarker, "unsupported marker schema version")

	// ErrMarkerWriteFailed is returned when a marker cannot be written atomically.
	ErrMarkerWriteFailed = zerr.New("failed to write marker")

	// ErrMarkerReadFailed is returned when a marker cannot be read from disk.
	ErrMarkerReadFailed = zerr.New("failed to read marker")

	// ErrTaskGuardFailed is returned when the per-task transition guard cannot be acquired.
	ErrTaskGuardFailed = zerr.New("failed to acquire task guard")

	// ErrLivenessCheckFailed is returned when the owner of a task cannot be inspected.
	ErrLivenessCheckFailed = zerr.New("failed to check process liveness")

	// ErrIncompleteTasks is returned by audits that are asked to fail when incomplete tasks exist.
	ErrIncompleteTasks = zerr.New("incomplete tasks found")

	// ErrInvalidOnExists is returned when an on-exists policy cannot be parsed.
	ErrInvalidOnExists = zerr.New("invalid on-exists policy, expected 'fail', 'override' or 'reuse'")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidOutputMode is returned when an output mode is not recognized.
	ErrInvalidOutputMode = zerr.New("invalid output mode, expected 'auto', 'pretty', 'plain' or 'json'")

	// ErrInvalidTaskStatus is returned when a task status name is not recognized.
	ErrInvalidTaskStatus = zerr.New("invalid task status")

	// ErrCommandRequired is returned when running a task without a command.
	ErrCommandRequired = zerr.New("a command is required")

	// ErrRemovalNotConfirmed is returned when a destructive removal was not confirmed.
	ErrRemovalNotConfirmed = zerr.New("removal is irreversible and must be confirmed with --yes")
)
