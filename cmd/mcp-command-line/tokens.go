package main

import (
	"fmt"
	"io"
	"time"

	"github.com/nick-pape/mcp-custom-command-line/internal/infra/config"
	pkgauth "github.com/nick-pape/mcp-custom-command-line/pkg/auth"
)

func runHashToken(args []string, out, errOut io.Writer) int {
	fs := newFlagSet("hash-token")
	if code, ok := parseFlags(fs, args, errOut); !ok {
		return code
	}
	if fs.NArg() != 1 || fs.Arg(0) == "" {
		fmt.Fprintln(errOut, "usage: mcp-command-line hash-token <token>") //nolint:errcheck
		return exitUsage
	}

	hash, err := pkgauth.HashToken(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "hash-token: %v\n", err) //nolint:errcheck
		return exitFailure
	}
	fmt.Fprintln(out, hash) //nolint:errcheck
	return exitOK
}

func runIssueToken(args []string, out, errOut io.Writer) int {
	fs := newFlagSet("issue-token")
	subject := fs.String("subject", "", "token subject (required)")
	ttl := fs.Duration("ttl", pkgauth.DefaultTokenTTL, "token lifetime")
	if code, ok := parseFlags(fs, args, errOut); !ok {
		return code
	}
	if *ttl <= 0 {
		*ttl = pkgauth.DefaultTokenTTL
	}
	if *subject == "" {
		fmt.Fprintln(errOut, "usage: mcp-command-line issue-token --subject <name> [--ttl 24h]") //nolint:errcheck
		return exitUsage
	}

	settings, err := config.Load()
	if err != nil {
		fmt.Fprintf(errOut, "settings error: %v\n", err) //nolint:errcheck
		return exitFailure
	}
	if settings.JWTSecret == "" {
		fmt.Fprintln(errOut, "issue-token: MCP_JWT_SECRET is not set") //nolint:errcheck
		return exitFailure
	}

	token, err := pkgauth.IssueToken([]byte(settings.JWTSecret), *subject, *ttl)
	if err != nil {
		fmt.Fprintf(errOut, "issue-token: %v\n", err) //nolint:errcheck
		return exitFailure
	}
	fmt.Fprintln(out, token) //nolint:errcheck
	fmt.Fprintf(errOut, "expires %s\n", time.Now().Add(*ttl).UTC().Format(time.RFC3339)) //nolint:errcheck
	return exitOK
}
