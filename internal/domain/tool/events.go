package tool

import (
	"time"

	"github.com/google/uuid"
)

// ExecutionEvent is published on eventbus.TopicCommandExecuted after the
// executor returns, whatever the exit status.
type ExecutionEvent struct {
	ID          string
	Tool        string
	Argv        []string
	ExitCode    int
	Success     bool
	Truncated   bool
	StdoutBytes int
	StderrBytes int
	Duration    time.Duration
	StartedAt   time.Time
}

// RejectionEvent is published on eventbus.TopicCommandRejected when a call
// never reaches the executor because its arguments were invalid.
type RejectionEvent struct {
	ID        string
	Tool      string
	Errors    []string
	StartedAt time.Time
}

func newEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
