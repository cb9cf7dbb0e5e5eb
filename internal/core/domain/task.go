package domain

import (
	"fmt"
	"time"

	"go.trai.ch/zerr"
)

// TaskStatus is the lifecycle state of a task directory as observed on disk.
type TaskStatus uint8

const (
	// TaskAbsent means the task was never started.
	TaskAbsent TaskStatus = iota
	// TaskRunning means a running marker is present, held by a live or a dead owner.
	TaskRunning
	// TaskCompleted means the task finished successfully.
	TaskCompleted
	// TaskFailed means the task finished with an error.
	TaskFailed
	// TaskForeign marks a subdirectory that carries no task marker.
	TaskForeign
	// TaskCorrupt marks a task whose marker exists but cannot be decoded.
	TaskCorrupt
)

var taskStatusNames = [...]string{
	TaskAbsent:    "absent",
	TaskRunning:   "running",
	TaskCompleted: "completed",
	TaskFailed:    "failed",
	TaskForeign:   "foreign",
	TaskCorrupt:   "corrupt",
}

// String returns the lower-case name of the status.
func (s TaskStatus) String() string {
	if int(s) < len(taskStatusNames) {
		return taskStatusNames[s]
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// MarshalText encodes the status by name.
func (s TaskStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name written by MarshalText.
func (s *TaskStatus) UnmarshalText(text []byte) error {
	for status, name := range taskStatusNames {
		if name == string(text) {
			*s = TaskStatus(status) //nolint:gosec // index of a short fixed table
			return nil
		}
	}
	return zerr.With(zerr.Wrap(ErrInvalidTaskStatus, "cannot parse task status"), "value", string(text))
}

// Incomplete reports whether the status needs attention in a health audit.
func (s TaskStatus) Incomplete() bool {
	return s == TaskRunning || s == TaskFailed || s == TaskCorrupt
}

// Outcome is the terminal result recorded when a task handle is finalized.
type Outcome uint8

const (
	// OutcomeCompleted records a successful run.
	OutcomeCompleted Outcome = iota
	// OutcomeFailed records a failed run.
	OutcomeFailed
)

// Status returns the task status an outcome leads to.
func (o Outcome) Status() TaskStatus {
	if o == OutcomeCompleted {
		return TaskCompleted
	}
	return TaskFailed
}

// String returns the status name of the outcome.
func (o Outcome) String() string {
	return o.Status().String()
}

// Owner identifies the process that holds a running task.
type Owner struct {
	Host string `json:"host"`
	PID  int    `json:"pid"`
	// ProcessStart is the creation time of the process in Unix milliseconds,
	// used to tell a live owner apart from a recycled pid.
	ProcessStart int64 `json:"process_start,omitempty"`
}

// String returns the host:pid form of the owner.
func (o Owner) String() string {
	return fmt.Sprintf("%s:%d", o.Host, o.PID)
}

// TaskState is the decoded state of one task directory.
type TaskState struct {
	Status    TaskStatus `json:"status"`
	Owner     *Owner     `json:"owner,omitempty"`
	StartedAt time.Time  `json:"started_at,omitzero"`
	EndedAt   time.Time  `json:"ended_at,omitzero"`
	// Stale is set for running tasks whose owner is known to be dead.
	Stale bool `json:"stale,omitempty"`
	// Detail holds the recorded failure or the reason a marker is corrupt.
	Detail string `json:"detail,omitempty"`
}

// LockToken proves ownership of a running task between begin and finalize.
type LockToken struct {
	TaskPath  string
	Token     string
	Owner     Owner
	StartedAt time.Time
	// Previous is the status the task had before it was started.
	Previous TaskStatus
	// Reclaimed is set when the task was taken over from a dead owner.
	Reclaimed bool
}

// TaskEntry is one row of a node's task listing.
type TaskEntry struct {
	Name  string    `json:"name"`
	Path  string    `json:"path"`
	State TaskState `json:"state"`
}

// IncompleteTask is one finding of a health audit.
type IncompleteTask struct {
	// Node is the pseudopath of the owning node relative to the audit root.
	Node  string    `json:"node"`
	Name  string    `json:"task"`
	Path  string    `json:"path"`
	State TaskState `json:"state"`
}
