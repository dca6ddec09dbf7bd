// Package handlers provides the HTTP handlers of the API.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pondpilot/pondpilot-sub007/pkg/failure"
	"github.com/pondpilot/pondpilot-sub007/pkg/gateway"
	"github.com/pondpilot/pondpilot-sub007/server/apierror"
	"github.com/pondpilot/pondpilot-sub007/server/types"
)

// QueryHandler executes SQL scripts through the gateway.
type QueryHandler struct {
	gw  *gateway.Gateway
	log zerolog.Logger
}

// NewQueryHandler creates a query handler.
func NewQueryHandler(gw *gateway.Gateway, log zerolog.Logger) *QueryHandler {
	return &QueryHandler{gw: gw, log: log}
}

// ExecuteQuery handles POST /api/v1/query. Statement failures are reported
// per statement in the body, not as an HTTP error: only malformed requests
// get a non-200 status.
func (h *QueryHandler) ExecuteQuery(w http.ResponseWriter, r *http.Request) {
	var req types.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, apierror.NewInvalidRequest("Invalid request body"))
		return
	}
	if req.SQL == "" {
		sendError(w, apierror.NewInvalidParameter("sql", "must not be empty"))
		return
	}

	outcomes := h.gw.ExecuteScript(r.Context(), req.SQL)

	resp := types.QueryResponse{Success: true}
	for _, out := range outcomes {
		sr := types.StatementResult{
			QueryID:   uuid.NewString(),
			Success:   out.Success,
			Attempts:  out.Attempts,
			UsedProxy: out.UsedProxy,
			Cancelled: out.Cancelled,
		}
		if out.Result != nil {
			sr.Columns = out.Result.Columns
			sr.Rows = out.Result.Rows
			sr.RowsAffected = out.Result.RowsAffected
		}
		if !out.Success {
			resp.Success = false
			sr.Error = outcomeError(out).ToResponse()
		}
		resp.Results = append(resp.Results, sr)
	}

	sendJSON(w, http.StatusOK, resp)
}

// outcomeError maps a failed outcome to a coded API error.
func outcomeError(out gateway.Outcome) *apierror.APIError {
	msg := "statement failed"
	if out.Err != nil {
		msg = out.Err.Error()
	}

	switch {
	case out.Cancelled:
		return apierror.New(apierror.CodeCancelled, msg)
	case out.ErrKind == failure.KindTimeout:
		return apierror.New(apierror.CodeTimeout, msg)
	case out.ErrKind == failure.KindCrossOrigin:
		return apierror.New(apierror.CodeAttachFailed, msg).
			WithData("kind", out.ErrKind.String())
	default:
		return apierror.New(apierror.CodeQueryFailed, msg)
	}
}

func sendJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func sendError(w http.ResponseWriter, err *apierror.APIError) {
	sendJSON(w, apierror.HTTPStatus(err.Code), err.ToResponse())
}
