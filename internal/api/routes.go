// Package api builds the router for the streamable HTTP transport.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/time/rate"

	"github.com/nick-pape/mcp-custom-command-line/internal/api/handlers"
	apmiddleware "github.com/nick-pape/mcp-custom-command-line/internal/api/middleware"
)

// Deps are the collaborators the router serves.
type Deps struct {
	Logger *slog.Logger
	Server *mcp.Server
	Tools  handlers.ToolCounter

	// History is nil when execution history is disabled.
	History handlers.HistoryLister

	// Auth and Limiter are nil when not configured.
	Auth    *apmiddleware.BearerAuth
	Limiter *rate.Limiter

	Version string
}

// NewRouter creates and configures a new chi router.
// Public: /health. Protected (bearer auth + rate limit when configured):
// /mcp and /api/v1/*.
func NewRouter(d Deps) *chi.Mux {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	r := chi.NewRouter()

	// Global middleware (runs on all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apmiddleware.AccessLog(d.Logger))
	r.Use(middleware.Recoverer)

	// ===== PUBLIC ROUTES =====

	healthHandler := handlers.NewHealthHandler(d.Tools, d.Version)
	r.Get("/health", healthHandler.Health)

	// ===== PROTECTED ROUTES =====

	r.Group(func(r chi.Router) {
		r.Use(apmiddleware.RateLimit(d.Limiter))
		r.Use(d.Auth.Middleware)

		if d.Server != nil {
			server := d.Server
			mcpHandler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return server }, nil)
			r.Handle("/mcp", mcpHandler)
		}

		executionHandler := handlers.NewExecutionHandler(d.History, d.Logger)
		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/executions", executionHandler.ListExecutions) // GET /api/v1/executions
		})
	})

	return r
}
