package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/dustin/go-humanize"
)

// SpawnFailureExitCode is reported when the process could not be started at
// all. A child that was started but ended by a signal, including a timeout
// kill, also reports it; those results keep the captured output and carry a
// note at the end of Stderr naming the cause.
const SpawnFailureExitCode = -1

// Executor spawns declared commands. It holds only immutable settings and
// is safe for concurrent use; each Execute call is independent.
type Executor struct {
	logger    *slog.Logger
	maxOutput int64
	timeout   time.Duration
	env       []string
}

type Option func(*Executor) error

func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) error {
		e.logger = l
		return nil
	}
}

// WithMaxOutput caps how many bytes of each stream are kept. Zero keeps
// everything.
func WithMaxOutput(n int64) Option {
	return func(e *Executor) error {
		if n < 0 {
			return fmt.Errorf("max output must not be negative, got %d", n)
		}
		e.maxOutput = n
		return nil
	}
}

// WithTimeout kills a child that runs longer than d. Zero waits forever.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) error {
		if d < 0 {
			return fmt.Errorf("timeout must not be negative, got %s", d)
		}
		e.timeout = d
		return nil
	}
}

// WithEnv adds KEY=VALUE entries on top of the inherited environment.
func WithEnv(kv ...string) Option {
	return func(e *Executor) error {
		e.env = append(e.env, kv...)
		return nil
	}
}

func NewExecutor(opts ...Option) (*Executor, error) {
	e := &Executor{logger: slog.Default()}
	for _, o := range opts {
		if o == nil {
			continue
		}
		if err := o(e); err != nil {
			return nil, err
		}
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e, nil
}

// Execute runs cmd with the argument vector derived from params and blocks
// until the child exits. It always returns a Result: a non-zero exit is an
// unsuccessful Result carrying the real code, and a failure to start the
// process at all yields ExitCode -1 with the reason in Stderr.
//
// Callers are expected to have run Validate first. ctx contributes values
// only; cancelling it does not stop a running child.
func (e *Executor) Execute(ctx context.Context, cmd Command, params Params) (res Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = spawnFailure(fmt.Errorf("panic while running %q: %v", cmd.Name, r), time.Since(start))
			e.logger.Error("command panicked", "tool", cmd.Name, "panic", r)
		}
	}()

	program, fixed, err := SplitInvocation(cmd.Command)
	if err != nil {
		e.logger.Warn("command not runnable", "tool", cmd.Name, "error", err)
		return spawnFailure(err, time.Since(start))
	}
	args := append(append([]string(nil), fixed...), BuildArgv(cmd, params)...)

	runCtx := context.WithoutCancel(ctx)
	if e.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, e.timeout)
		defer cancel()
	}

	c := exec.CommandContext(runCtx, program, args...)
	if len(e.env) > 0 {
		c.Env = append(os.Environ(), e.env...)
	}
	if e.timeout > 0 {
		// let Wait return even if a grandchild keeps the pipes open
		c.WaitDelay = time.Second
	}
	stdout := &cappedBuffer{limit: e.maxOutput}
	stderr := &cappedBuffer{limit: e.maxOutput}
	c.Stdout = stdout
	c.Stderr = stderr

	e.logger.Debug("spawning command", "tool", cmd.Name, "program", program, "args", args)
	runErr := c.Run()
	elapsed := time.Since(start)

	var exitErr *exec.ExitError
	if runErr != nil && !errors.As(runErr, &exitErr) {
		e.logger.Warn("command failed to start", "tool", cmd.Name, "program", program, "error", runErr)
		return spawnFailure(runErr, elapsed)
	}

	res = Result{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		Truncated: stdout.truncated || stderr.truncated,
		Duration:  elapsed,
	}
	if exitErr != nil {
		res.ExitCode = exitErr.ExitCode()
	}
	switch {
	case e.timeout > 0 && errors.Is(runCtx.Err(), context.DeadlineExceeded):
		res.ExitCode = SpawnFailureExitCode
		res.Stderr += fmt.Sprintf("\ncommand timed out after %s", e.timeout)
	case exitErr != nil && res.ExitCode == SpawnFailureExitCode:
		// killed by a signal: ProcessState renders as "signal: terminated"
		res.Stderr += fmt.Sprintf("\ncommand terminated (%s)", exitErr.ProcessState)
	}
	res.Success = res.ExitCode == 0

	e.logger.Info("command finished",
		"tool", cmd.Name,
		"exit_code", res.ExitCode,
		"duration", elapsed,
		"stdout", humanize.Bytes(uint64(len(res.Stdout))),
		"stderr", humanize.Bytes(uint64(len(res.Stderr))),
		"truncated", res.Truncated,
	)
	return res
}

func spawnFailure(err error, elapsed time.Duration) Result {
	return Result{
		Success:  false,
		Stdout:   "",
		Stderr:   err.Error(),
		ExitCode: SpawnFailureExitCode,
		Duration: elapsed,
	}
}

// cappedBuffer keeps at most limit bytes (limit <= 0 means no cap) and
// silently discards the rest so the child is never blocked or failed by a
// short write.
type cappedBuffer struct {
	buf       bytes.Buffer
	limit     int64
	truncated bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if b.limit <= 0 {
		return b.buf.Write(p)
	}
	room := b.limit - int64(b.buf.Len())
	if room <= 0 {
		if len(p) > 0 {
			b.truncated = true
		}
		return len(p), nil
	}
	if int64(len(p)) > room {
		b.buf.Write(p[:room])
		b.truncated = true
		return len(p), nil
	}
	return b.buf.Write(p)
}

func (b *cappedBuffer) String() string { return b.buf.String() }
