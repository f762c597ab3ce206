// mcp-command-line exposes configured command-line programs as MCP tools.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/nick-pape/mcp-custom-command-line/internal/version"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run dispatches to a subcommand and returns the process exit code.
// serve is the default when the first argument is a flag or absent.
func run(args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		switch args[0] {
		case "--version", "-v", "version":
			fmt.Fprintln(out, version.String()) //nolint:errcheck
			return exitOK
		case "--help", "-h", "help":
			printHelp(out)
			return exitOK
		}
	}

	sub, rest := "serve", args
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		sub, rest = args[0], args[1:]
	}

	switch sub {
	case "serve":
		return runServe(rest, errOut)
	case "validate":
		return runValidate(rest, out, errOut)
	case "list":
		return runList(rest, out, errOut)
	case "hash-token":
		return runHashToken(rest, out, errOut)
	case "issue-token":
		return runIssueToken(rest, out, errOut)
	default:
		fmt.Fprintf(errOut, "unknown command %q\n\n", sub) //nolint:errcheck
		printHelp(errOut)
		return exitUsage
	}
}

// newFlagSet returns a quiet ContinueOnError flag set; callers report
// parse errors themselves.
func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false
	return fs
}

// parseFlags parses args and maps failures to an exit code. ok is false
// when the caller should return code immediately.
func parseFlags(fs *pflag.FlagSet, args []string, errOut io.Writer) (code int, ok bool) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(errOut, "Usage of %s:\n%s", fs.Name(), fs.FlagUsages()) //nolint:errcheck
			return exitOK, false
		}
		fmt.Fprintf(errOut, "%s: %v\n", fs.Name(), err) //nolint:errcheck
		return exitUsage, false
	}
	return exitOK, true
}

func printHelp(out io.Writer) {
	helpText := `mcp-command-line - expose command-line programs as MCP tools

Usage:
  mcp-command-line [command] [options]

Commands:
  serve          Start the MCP server (default)
  validate       Check a commands configuration and exit
  list           Print the configured tools and their arguments
  hash-token     Print a bcrypt hash of an API key for MCP_API_KEY_HASHES
  issue-token    Sign a JWT with MCP_JWT_SECRET

Configuration (first match wins):
  --config <path>        JSON or YAML file; "-" reads stdin
  --config-json <json>   inline JSON document
  MCP_COMMANDS_CONFIG    inline JSON (starting with "{") or a file path

Options:
  --version    Show version information
  --help       Show this help message

Examples:
  mcp-command-line --config commands.json
  mcp-command-line serve --transport http --http-addr :8080 --config commands.yaml
  mcp-command-line validate --config commands.yaml
  mcp-command-line issue-token --subject ci-bot --ttl 12h`
	fmt.Fprintln(out, helpText) //nolint:errcheck
}
