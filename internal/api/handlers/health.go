package handlers

import "net/http"

// ToolCounter reports how many tools the server exposes.
type ToolCounter interface {
	Len() int
}

type HealthHandler struct {
	tools   ToolCounter
	version string
}

func NewHealthHandler(tools ToolCounter, version string) *HealthHandler {
	return &HealthHandler{tools: tools, version: version}
}

// Health is unauthenticated; load balancers and probes hit it.
func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	count := 0
	if h.tools != nil {
		count = h.tools.Len()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"tools":   count,
		"version": h.version,
	})
}
