package tool

import (
	"context"

	"github.com/nick-pape/mcp-custom-command-line/internal/domain/command"
)

// Runner defines the runtime contract the registry forwards validated calls to.
// *command.Executor satisfies it.
type Runner interface {
	Execute(ctx context.Context, cmd command.Command, params command.Params) command.Result
}

// RunnerFunc adapts a plain function to Runner.
type RunnerFunc func(ctx context.Context, cmd command.Command, params command.Params) command.Result

func (f RunnerFunc) Execute(ctx context.Context, cmd command.Command, params command.Params) command.Result {
	return f(ctx, cmd, params)
}
