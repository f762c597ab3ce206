package tool

import (
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nick-pape/mcp-custom-command-line/internal/domain/command"
)

const (
	labelSuccess  = "Command executed successfully"
	labelFailure  = "Command failed"
	labelRejected = "Invalid arguments"
)

// RenderResult turns an execution result into the reply sent to the client.
// The reply is flagged as an error exactly when the command did not succeed.
func RenderResult(res command.Result) *mcp.CallToolResult {
	label := labelSuccess
	if !res.Success {
		label = labelFailure
	}

	var b strings.Builder
	b.WriteString(label)
	b.WriteString("\n\n")
	b.WriteString(FormatOutput(res))
	if res.Truncated {
		b.WriteString("\n\n(output truncated)")
	}

	return &mcp.CallToolResult{
		Content:           []mcp.Content{&mcp.TextContent{Text: b.String()}},
		StructuredContent: res,
		IsError:           !res.Success,
	}
}

// FormatOutput is the STDOUT/STDERR/Exit Code block of a reply.
func FormatOutput(res command.Result) string {
	return fmt.Sprintf("STDOUT:\n%s\n\nSTDERR:\n%s\n\nExit Code: %d", res.Stdout, res.Stderr, res.ExitCode)
}

// RenderRejection is the error reply for a call that failed validation.
func RenderRejection(errs []string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: labelRejected + ": " + command.JoinErrors(errs)}},
		IsError: true,
	}
}
