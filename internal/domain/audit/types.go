package audit

import "time"

// Outcome represents how a tool call ended.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFailure  Outcome = "failure"
	OutcomeRejected Outcome = "rejected"
)

// Entry is one row of execution history.
// Entries are immutable: once recorded they are never updated or deleted.
type Entry struct {
	ID          string        `json:"id"`
	Tool        string        `json:"tool"`
	Outcome     Outcome       `json:"outcome"`
	Argv        []string      `json:"argv"`
	ExitCode    *int          `json:"exit_code,omitempty"`
	StdoutBytes int           `json:"stdout_bytes"`
	StderrBytes int           `json:"stderr_bytes"`
	Truncated   bool          `json:"truncated"`
	Duration    time.Duration `json:"duration_ns"`
	Errors      []string      `json:"errors,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
}

// detail is the JSON document stored in execution_history.detail.
type detail struct {
	Errors []string `json:"errors,omitempty"`
}
