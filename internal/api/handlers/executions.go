package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/nick-pape/mcp-custom-command-line/internal/domain/audit"
)

// HistoryLister is the read side of the execution history.
// audit.HistoryService satisfies this interface.
type HistoryLister interface {
	ListRecent(ctx context.Context, toolName string, limit int) ([]*audit.Entry, error)
}

type ExecutionHandler struct {
	history HistoryLister
	logger  *slog.Logger
}

func NewExecutionHandler(history HistoryLister, logger *slog.Logger) *ExecutionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecutionHandler{history: history, logger: logger}
}

// ListExecutions serves GET /api/v1/executions?limit=N&tool=NAME, newest first.
func (h *ExecutionHandler) ListExecutions(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeError(w, http.StatusNotFound, "execution history is disabled")
		return
	}

	items, err := h.history.ListRecent(r.Context(), r.URL.Query().Get("tool"), parseLimit(r))
	if err != nil {
		h.logger.Error("failed to list executions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list executions")
		return
	}

	if sub, err := getSubject(r.Context()); err == nil {
		h.logger.Debug("listed executions", "subject", sub, "count", len(items))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": items, "meta": map[string]int{"total": len(items)}})
}
