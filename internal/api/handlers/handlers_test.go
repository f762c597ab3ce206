package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nick-pape/mcp-custom-command-line/internal/api/ctxkeys"
	"github.com/nick-pape/mcp-custom-command-line/internal/domain/audit"
)

type fixedCount int

func (f fixedCount) Len() int { return int(f) }

type stubHistory struct {
	entries  []*audit.Entry
	err      error
	gotTool  string
	gotLimit int
}

func (s *stubHistory) ListRecent(_ context.Context, toolName string, limit int) ([]*audit.Entry, error) {
	s.gotTool = toolName
	s.gotLimit = limit
	return s.entries, s.err
}

func TestHealth(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	NewHealthHandler(fixedCount(3), "v1.2.3").Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","tools":3,"version":"v1.2.3"}`, w.Body.String())
}

func TestListExecutions(t *testing.T) {
	t.Parallel()

	code := 0
	history := &stubHistory{entries: []*audit.Entry{
		{ID: "a", Tool: "echo", Outcome: audit.OutcomeSuccess, ExitCode: &code, Argv: []string{"--message", "hi"}},
	}}
	h := NewExecutionHandler(history, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/executions?limit=5&tool=echo", nil)
	req = req.WithContext(ctxkeys.WithValue(req.Context(), ctxkeys.Subject, "ci-bot"))
	w := httptest.NewRecorder()
	h.ListExecutions(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "echo", history.gotTool)
	assert.Equal(t, 5, history.gotLimit)

	var body struct {
		Data []audit.Entry `json:"data"`
		Meta struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Meta.Total)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "a", body.Data[0].ID)
}

func TestListExecutions_LimitClamp(t *testing.T) {
	t.Parallel()

	cases := map[string]int{
		"":            defaultPaginationLimit,
		"?limit=-4":   defaultPaginationLimit,
		"?limit=abc":  defaultPaginationLimit,
		"?limit=9999": maxPaginationLimit,
	}
	for query, want := range cases {
		history := &stubHistory{}
		w := httptest.NewRecorder()
		NewExecutionHandler(history, nil).ListExecutions(w, httptest.NewRequest(http.MethodGet, "/api/v1/executions"+query, nil))

		assert.Equal(t, http.StatusOK, w.Code, query)
		assert.Equal(t, want, history.gotLimit, query)
	}
}

func TestListExecutions_Disabled(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	NewExecutionHandler(nil, nil).ListExecutions(w, httptest.NewRequest(http.MethodGet, "/api/v1/executions", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "disabled")
}

func TestListExecutions_StoreError(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	h := NewExecutionHandler(&stubHistory{err: errors.New("disk on fire")}, nil)
	h.ListExecutions(w, httptest.NewRequest(http.MethodGet, "/api/v1/executions", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "disk on fire")
}
