package models

import "time"

// ExecutionStatus is the lifecycle state of a run as reported by the backend.
type ExecutionStatus string

const (
	ExecutionStatusPending   ExecutionStatus = "pending"
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
	ExecutionStatusCanceled  ExecutionStatus = "canceled"
)

// IsTerminal reports whether no further status change is expected.
func (s ExecutionStatus) IsTerminal() bool {
	switch s {
	case ExecutionStatusCompleted, ExecutionStatusFailed, ExecutionStatusCanceled:
		return true
	default:
		return false
	}
}

// LogLevel is the severity of an execution log entry.
type LogLevel string

const (
	LogLevelInfo    LogLevel = "info"
	LogLevelError   LogLevel = "error"
	LogLevelSuccess LogLevel = "success"
)

// LogEntry is one line of an execution log.
type LogEntry struct {
	Level     LogLevel  `json:"level"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	NodeID    string    `json:"node_id,omitempty"`
}

// Execution is one run of a workflow. It is owned by the backend; the client
// only holds copies taken from status responses.
type Execution struct {
	ID          int64           `json:"id"`
	WorkflowID  int64           `json:"workflow_id"`
	Status      ExecutionStatus `json:"status"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	Logs        []LogEntry      `json:"execution_logs"`
	Error       string          `json:"error,omitempty"`
}

// Duration returns CompletedAt - StartedAt when both are known.
func (e *Execution) Duration() (time.Duration, bool) {
	if e.StartedAt.IsZero() || e.CompletedAt == nil || e.CompletedAt.IsZero() {
		return 0, false
	}

	return e.CompletedAt.Sub(e.StartedAt), true
}
