package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nick-pape/mcp-custom-command-line/internal/domain/command"
	"github.com/nick-pape/mcp-custom-command-line/internal/infra/eventbus"
)

var (
	ErrToolAlreadyRegistered = errors.New("tool already registered")
	ErrToolNotFound          = errors.New("tool not found")
	ErrToolNameRequired      = errors.New("tool name is required")
	ErrRunnerNotConfigured   = errors.New("tool runner not configured")
)

// Registry exposes each configured command as an MCP tool and routes calls
// through validation and execution. The command set is fixed at construction.
type Registry struct {
	logger   *slog.Logger
	runner   Runner
	bus      eventbus.EventBus
	commands map[string]command.Command
	order    []string
}

type Option func(*Registry)

func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithEventBus publishes execution and rejection events to bus.
func WithEventBus(bus eventbus.EventBus) Option {
	return func(r *Registry) { r.bus = bus }
}

func NewRegistry(commands []command.Command, runner Runner, opts ...Option) (*Registry, error) {
	if runner == nil {
		return nil, ErrRunnerNotConfigured
	}
	r := &Registry{
		logger:   slog.Default(),
		runner:   runner,
		commands: make(map[string]command.Command, len(commands)),
		order:    make([]string, 0, len(commands)),
	}
	for _, o := range opts {
		if o != nil {
			o(r)
		}
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}

	for _, cmd := range commands {
		name := strings.TrimSpace(cmd.Name)
		if name == "" {
			return nil, ErrToolNameRequired
		}
		if _, exists := r.commands[name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrToolAlreadyRegistered, name)
		}
		cmd.Name = name
		r.commands[name] = cmd
		r.order = append(r.order, name)
	}
	return r, nil
}

// Get returns the declaration behind a tool name.
func (r *Registry) Get(name string) (command.Command, error) {
	cmd, ok := r.commands[name]
	if !ok {
		return command.Command{}, fmt.Errorf("%w: %q", ErrToolNotFound, name)
	}
	return cmd, nil
}

// Names lists tool names in configuration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Len is the number of registered tools.
func (r *Registry) Len() int { return len(r.order) }

// Tools builds the MCP tool definitions in configuration order.
func (r *Registry) Tools() []*mcp.Tool {
	out := make([]*mcp.Tool, 0, len(r.order))
	for _, name := range r.order {
		cmd := r.commands[name]
		out = append(out, &mcp.Tool{
			Name:        cmd.Name,
			Description: cmd.Description,
			InputSchema: InputSchema(cmd),
		})
	}
	return out
}

// Register adds every tool to server.
func (r *Registry) Register(server *mcp.Server) {
	for _, t := range r.Tools() {
		name := t.Name
		server.AddTool(t, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var raw json.RawMessage
			if req != nil && req.Params != nil {
				raw = req.Params.Arguments
			}
			return r.Call(ctx, name, raw)
		})
		r.logger.Debug("registered tool", "tool", name)
	}
}

// Call handles one tool invocation. Invalid arguments produce an error
// reply without running anything; every executed call produces a reply
// rendered from its Result. Only an unknown tool name is returned as an error.
func (r *Registry) Call(ctx context.Context, name string, raw json.RawMessage) (*mcp.CallToolResult, error) {
	cmd, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	started := time.Now().UTC()

	params, errs, err := command.DecodeAndValidate(cmd, raw)
	if err != nil {
		errs = []string{err.Error()}
	}
	if len(errs) > 0 {
		r.logger.Info("tool call rejected", "tool", name, "errors", errs)
		r.publish(eventbus.TopicCommandRejected, RejectionEvent{
			ID:        newEventID(),
			Tool:      name,
			Errors:    errs,
			StartedAt: started,
		})
		return RenderRejection(errs), nil
	}

	res := r.runner.Execute(ctx, cmd, params)

	r.publish(eventbus.TopicCommandExecuted, ExecutionEvent{
		ID:          newEventID(),
		Tool:        name,
		Argv:        command.BuildArgv(cmd, params),
		ExitCode:    res.ExitCode,
		Success:     res.Success,
		Truncated:   res.Truncated,
		StdoutBytes: len(res.Stdout),
		StderrBytes: len(res.Stderr),
		Duration:    res.Duration,
		StartedAt:   started,
	})
	return RenderResult(res), nil
}

func (r *Registry) publish(topic eventbus.Topic, payload any) {
	if r.bus == nil {
		return
	}
	r.bus.Publish(topic, payload)
}
