package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/pondpilot/pondpilot-sub007/pkg/config"
	"github.com/pondpilot/pondpilot-sub007/pkg/engine"
	"github.com/pondpilot/pondpilot-sub007/pkg/gateway"
	"github.com/pondpilot/pondpilot-sub007/server/apierror"
	"github.com/pondpilot/pondpilot-sub007/server/types"
)

// scriptedEngine fails statements containing "boom" and answers everything
// else with a single-row result.
type scriptedEngine struct{}

func (scriptedEngine) Execute(_ context.Context, sql string) (*engine.Result, error) {
	if bytes.Contains([]byte(sql), []byte("boom")) {
		return nil, errors.New("execution failed: boom")
	}
	return &engine.Result{Columns: []string{"n"}, Rows: [][]any{{int64(1)}}}, nil
}

func newTestQueryHandler(t *testing.T) *QueryHandler {
	t.Helper()

	gw := gateway.New(scriptedEngine{}, gateway.StaticSettings(config.DefaultProxyConfig()))
	return NewQueryHandler(gw, zerolog.Nop())
}

func postQuery(t *testing.T, h *QueryHandler, body any) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	h.ExecuteQuery(rec, req)
	return rec
}

func TestExecuteQuery_Success(t *testing.T) {
	h := newTestQueryHandler(t)

	rec := postQuery(t, h, types.QueryRequest{SQL: "SELECT 1"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp types.QueryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !resp.Success {
		t.Error("Success = false")
	}
	if len(resp.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(resp.Results))
	}
	if resp.Results[0].QueryID == "" {
		t.Error("missing query ID")
	}
	if len(resp.Results[0].Rows) != 1 {
		t.Errorf("rows = %d, want 1", len(resp.Results[0].Rows))
	}
}

func TestExecuteQuery_StatementFailureReportedInBody(t *testing.T) {
	h := newTestQueryHandler(t)

	rec := postQuery(t, h, types.QueryRequest{SQL: "SELECT 1; SELECT boom; SELECT 2"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (statement failures are not HTTP errors)", rec.Code, http.StatusOK)
	}

	var resp types.QueryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Success {
		t.Error("Success = true with a failed statement")
	}
	if len(resp.Results) != 2 {
		t.Fatalf("results = %d, want 2 (stop after first failure)", len(resp.Results))
	}
	failed := resp.Results[1]
	if failed.Success || failed.Error == nil {
		t.Fatalf("failed statement not reported: %+v", failed)
	}
	if failed.Error.Code != apierror.CodeQueryFailed {
		t.Errorf("error code = %q, want %q", failed.Error.Code, apierror.CodeQueryFailed)
	}
}

func TestExecuteQuery_InvalidBody(t *testing.T) {
	h := newTestQueryHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.ExecuteQuery(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestExecuteQuery_EmptySQL(t *testing.T) {
	h := newTestQueryHandler(t)

	rec := postQuery(t, h, types.QueryRequest{SQL: ""})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
