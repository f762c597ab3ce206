// Package audit keeps an append-only history of tool calls in SQLite.
//
// The registry never writes here directly: it publishes events on the
// eventbus and HistoryService.Start consumes them, so a slow disk cannot
// hold up a tool reply.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nick-pape/mcp-custom-command-line/internal/domain/tool"
	"github.com/nick-pape/mcp-custom-command-line/internal/infra/eventbus"
)

// DefaultListLimit bounds ListRecent when the caller passes a non-positive limit.
const DefaultListLimit = 50

// MaxListLimit is the largest page ListRecent returns.
const MaxListLimit = 500

// timeLayout is fixed width so started_at sorts correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var ErrEntryIDRequired = errors.New("history entry id is required")

// HistoryService provides execution history.
// All operations are append-only; no updates or deletes are supported.
type HistoryService struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewHistoryService creates a history service on a migrated database.
func NewHistoryService(db *sql.DB, logger *slog.Logger) *HistoryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryService{db: db, logger: logger}
}

// Record appends one entry.
func (s *HistoryService) Record(ctx context.Context, e *Entry) error {
	if e == nil || e.ID == "" {
		return ErrEntryIDRequired
	}
	argv := e.Argv
	if argv == nil {
		argv = []string{}
	}
	argvJSON, err := json.Marshal(argv)
	if err != nil {
		return fmt.Errorf("audit: encode argv: %w", err)
	}
	detailJSON, err := json.Marshal(detail{Errors: e.Errors})
	if err != nil {
		return fmt.Errorf("audit: encode detail: %w", err)
	}

	var exitCode sql.NullInt64
	if e.ExitCode != nil {
		exitCode = sql.NullInt64{Int64: int64(*e.ExitCode), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO execution_history (
			id, tool, outcome, argv, exit_code, stdout_bytes, stderr_bytes,
			truncated, duration_ms, detail, started_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID,
		e.Tool,
		string(e.Outcome),
		string(argvJSON),
		exitCode,
		e.StdoutBytes,
		e.StderrBytes,
		boolToInt(e.Truncated),
		e.Duration.Milliseconds(),
		string(detailJSON),
		e.StartedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("audit: insert %s: %w", e.ID, err)
	}
	return nil
}

// ListRecent returns the newest entries first. An empty tool matches all tools.
func (s *HistoryService) ListRecent(ctx context.Context, toolName string, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tool, outcome, argv, exit_code, stdout_bytes, stderr_bytes,
		       truncated, duration_ms, detail, started_at
		FROM execution_history
		WHERE (? = '' OR tool = ?)
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, toolName, toolName, limit)
	if err != nil {
		return nil, fmt.Errorf("audit: list: %w", err)
	}
	defer rows.Close()

	out := make([]*Entry, 0)
	for rows.Next() {
		e, scanErr := scanEntry(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Start consumes execution events from bus until ctx is done or the bus is
// closed. Write failures are logged and do not stop the loop.
func (s *HistoryService) Start(ctx context.Context, bus eventbus.EventBus) {
	executed := bus.Subscribe(eventbus.TopicCommandExecuted)
	rejected := bus.Subscribe(eventbus.TopicCommandRejected)

	for executed != nil || rejected != nil {
		var evt eventbus.Event
		var ok bool
		select {
		case <-ctx.Done():
			return
		case evt, ok = <-executed:
			if !ok {
				executed = nil
				continue
			}
		case evt, ok = <-rejected:
			if !ok {
				rejected = nil
				continue
			}
		}

		entry := EntryFromEvent(evt)
		if entry == nil {
			continue
		}
		if err := s.Record(ctx, entry); err != nil {
			s.logger.Error("failed to record execution history", "tool", entry.Tool, "error", err)
		}
	}
}

// EntryFromEvent converts a registry event to a history entry. It returns
// nil for payloads it does not understand.
func EntryFromEvent(evt eventbus.Event) *Entry {
	switch p := evt.Payload.(type) {
	case tool.ExecutionEvent:
		outcome := OutcomeFailure
		if p.Success {
			outcome = OutcomeSuccess
		}
		code := p.ExitCode
		return &Entry{
			ID:          p.ID,
			Tool:        p.Tool,
			Outcome:     outcome,
			Argv:        append([]string(nil), p.Argv...),
			ExitCode:    &code,
			StdoutBytes: p.StdoutBytes,
			StderrBytes: p.StderrBytes,
			Truncated:   p.Truncated,
			Duration:    p.Duration,
			StartedAt:   p.StartedAt,
		}
	case tool.RejectionEvent:
		return &Entry{
			ID:        p.ID,
			Tool:      p.Tool,
			Outcome:   OutcomeRejected,
			Errors:    append([]string(nil), p.Errors...),
			StartedAt: p.StartedAt,
		}
	default:
		return nil
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(scan rowScanner) (*Entry, error) {
	var (
		e          Entry
		outcome    string
		argvRaw    string
		exitCode   sql.NullInt64
		truncated  int
		durationMS int64
		detailRaw  string
		startedRaw string
	)
	if err := scan.Scan(
		&e.ID,
		&e.Tool,
		&outcome,
		&argvRaw,
		&exitCode,
		&e.StdoutBytes,
		&e.StderrBytes,
		&truncated,
		&durationMS,
		&detailRaw,
		&startedRaw,
	); err != nil {
		return nil, err
	}

	e.Outcome = Outcome(outcome)
	e.Truncated = truncated == 1
	e.Duration = time.Duration(durationMS) * time.Millisecond
	if exitCode.Valid {
		v := int(exitCode.Int64)
		e.ExitCode = &v
	}
	_ = json.Unmarshal([]byte(argvRaw), &e.Argv)

	var d detail
	if err := json.Unmarshal([]byte(detailRaw), &d); err == nil {
		e.Errors = d.Errors
	}
	if ts, err := time.Parse(timeLayout, startedRaw); err == nil {
		e.StartedAt = ts
	}
	return &e, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
