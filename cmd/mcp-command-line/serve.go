package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/pflag"

	"github.com/nick-pape/mcp-custom-command-line/internal/api"
	"github.com/nick-pape/mcp-custom-command-line/internal/api/handlers"
	apmiddleware "github.com/nick-pape/mcp-custom-command-line/internal/api/middleware"
	"github.com/nick-pape/mcp-custom-command-line/internal/domain/audit"
	"github.com/nick-pape/mcp-custom-command-line/internal/domain/command"
	"github.com/nick-pape/mcp-custom-command-line/internal/domain/tool"
	"github.com/nick-pape/mcp-custom-command-line/internal/infra/config"
	"github.com/nick-pape/mcp-custom-command-line/internal/infra/eventbus"
	"github.com/nick-pape/mcp-custom-command-line/internal/infra/sqlite"
	"github.com/nick-pape/mcp-custom-command-line/internal/server"
	"github.com/nick-pape/mcp-custom-command-line/internal/version"
)

type serveFlags struct {
	transport string
	httpAddr  string
	logLevel  string
	logFormat string
	maxOutput string
	historyDB string
}

func runServe(args []string, errOut io.Writer) int {
	fs := newFlagSet("serve")
	src := sourceFlags(fs)
	var f serveFlags
	fs.StringVar(&f.transport, "transport", "", "stdio or http (env MCP_TRANSPORT)")
	fs.StringVar(&f.httpAddr, "http-addr", "", "listen address for the http transport (env MCP_HTTP_ADDR)")
	fs.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error (env MCP_LOG_LEVEL)")
	fs.StringVar(&f.logFormat, "log-format", "", "auto, text or json (env MCP_LOG_FORMAT)")
	fs.StringVar(&f.maxOutput, "max-output", "", "per-stream output cap such as 4MiB (env MCP_MAX_OUTPUT)")
	timeout := fs.Duration("timeout", 0, "kill commands running longer than this (env MCP_EXEC_TIMEOUT)")
	fs.StringVar(&f.historyDB, "history-db", "", "SQLite file for execution history (env MCP_HISTORY_DB)")
	if code, ok := parseFlags(fs, args, errOut); !ok {
		return code
	}

	settings, err := config.Load()
	if err == nil {
		err = applyServeFlags(&settings, fs, f, *timeout)
	}
	if err != nil {
		fmt.Fprintf(errOut, "settings error: %v\n", err) //nolint:errcheck
		return exitFailure
	}

	logger := newLogger(errOut, settings.LogLevel, settings.LogFormat)

	cmds, err := loadCommands(*src)
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		return exitFailure
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, settings, cmds, logger); err != nil {
		logger.Error("server stopped with error", "error", err)
		return exitFailure
	}
	return exitOK
}

// applyServeFlags layers explicitly set flags over env settings.
func applyServeFlags(s *config.Config, fs *pflag.FlagSet, f serveFlags, timeout time.Duration) error {
	if fs.Changed("transport") {
		s.Transport = f.transport
	}
	if fs.Changed("http-addr") {
		s.HTTPAddr = f.httpAddr
	}
	if fs.Changed("log-level") {
		if err := s.LogLevel.UnmarshalText([]byte(f.logLevel)); err != nil {
			return fmt.Errorf("--log-level: %w", err)
		}
	}
	if fs.Changed("log-format") {
		s.LogFormat = f.logFormat
	}
	if fs.Changed("max-output") {
		n, err := humanize.ParseBytes(f.maxOutput)
		if err != nil {
			return fmt.Errorf("--max-output: %w", err)
		}
		s.MaxOutput = int64(n)
	}
	if fs.Changed("timeout") {
		s.ExecTimeout = timeout
	}
	if fs.Changed("history-db") {
		s.HistoryDB = f.historyDB
	}
	return s.Validate()
}

// serve wires the components and blocks until ctx is done or the
// transport ends.
func serve(ctx context.Context, settings config.Config, cmds []command.Command, logger *slog.Logger) error {
	executor, err := command.NewExecutor(
		command.WithLogger(logger),
		command.WithMaxOutput(settings.MaxOutput),
		command.WithTimeout(settings.ExecTimeout),
		command.WithEnv(settings.ExecEnv...),
	)
	if err != nil {
		return err
	}

	bus := eventbus.New()
	registry, err := tool.NewRegistry(cmds, executor, tool.WithLogger(logger), tool.WithEventBus(bus))
	if err != nil {
		bus.Close()
		return err
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{Name: version.Name, Version: version.Version}, nil)
	registry.Register(mcpServer)
	logger.Info("tools registered", "count", registry.Len(), "tools", registry.Names())

	history, stopHistory, err := startHistory(ctx, settings.HistoryDB, bus, logger)
	if err != nil {
		bus.Close()
		return err
	}
	defer stopHistory()
	defer bus.Close()

	switch settings.Transport {
	case config.TransportHTTP:
		if !settings.AuthEnabled() && !isLoopback(settings.HTTPAddr) {
			logger.Warn("http transport is listening beyond loopback without authentication", "addr", settings.HTTPAddr)
		}
		deps := api.Deps{
			Logger:  logger,
			Server:  mcpServer,
			Tools:   registry,
			History: history,
			Auth:    apmiddleware.NewBearerAuth(settings.JWTSecret, settings.APIKeyHashes),
			Limiter: apmiddleware.NewLimiter(settings.RateLimit, settings.Burst),
			Version: version.Version,
		}
		cfg := server.DefaultConfig()
		cfg.Addr = settings.HTTPAddr
		return server.NewServer(api.NewRouter(deps), cfg, logger).Run(ctx)
	default:
		return server.RunStdio(ctx, mcpServer, logger)
	}
}

// startHistory opens the history store and starts its consumer. With no
// path it returns a nil lister. The returned stop func waits for the
// consumer to drain, so call it after bus.Close.
func startHistory(ctx context.Context, path string, bus eventbus.EventBus, logger *slog.Logger) (handlers.HistoryLister, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}
	db, err := sqlite.NewDB(path)
	if err != nil {
		return nil, nil, err
	}
	if err := sqlite.MigrateUp(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	svc := audit.NewHistoryService(db, logger)
	done := make(chan struct{})
	go func() {
		defer close(done)
		// Keep recording after ctx is cancelled so calls finishing during
		// shutdown are not lost; the loop ends when the bus closes.
		svc.Start(context.WithoutCancel(ctx), bus)
	}()
	logger.Info("execution history enabled", "path", path)

	return svc, func() {
		<-done
		closeDB(db, logger)
	}, nil
}

func closeDB(db *sql.DB, logger *slog.Logger) {
	if err := db.Close(); err != nil {
		logger.Warn("failed to close history database", "error", err)
	}
}

func isLoopback(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
