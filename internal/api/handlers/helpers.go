// Package handlers holds the JSON endpoints served next to the MCP transport.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/nick-pape/mcp-custom-command-line/internal/api/ctxkeys"
)

var errMissingSubject = errors.New("subject not found in context")

const (
	defaultPaginationLimit = 25
	maxPaginationLimit     = 500
)

// getSubject retrieves the authenticated subject injected by the auth middleware.
func getSubject(ctx context.Context) (string, error) {
	sub, ok := ctx.Value(ctxkeys.Subject).(string)
	if !ok || sub == "" {
		return "", errMissingSubject
	}
	return sub, nil
}

// parseLimit reads ?limit=N, falling back to the default for missing or
// non-positive values and clamping to the maximum.
func parseLimit(r *http.Request) int {
	limit := defaultPaginationLimit
	if lim, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && lim > 0 {
		if lim > maxPaginationLimit {
			lim = maxPaginationLimit
		}
		limit = lim
	}
	return limit
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		http.Error(w, `{"error":"failed to encode error response"}`, http.StatusInternalServerError)
	}
}
