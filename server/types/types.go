// Package types defines the request and response payloads of the HTTP API.
package types

import (
	"time"

	"github.com/pondpilot/pondpilot-sub007/server/apierror"
)

// QueryRequest submits a SQL script for execution.
type QueryRequest struct {
	SQL string `json:"sql"`
}

// StatementResult is the outcome of one statement in a script.
type StatementResult struct {
	QueryID      string                  `json:"queryId"`
	Success      bool                    `json:"success"`
	Columns      []string                `json:"columns,omitempty"`
	Rows         [][]any                 `json:"rows,omitempty"`
	RowsAffected int64                   `json:"rowsAffected"`
	Attempts     int                     `json:"attempts"`
	UsedProxy    bool                    `json:"usedProxy"`
	Cancelled    bool                    `json:"cancelled,omitempty"`
	Error        *apierror.ErrorResponse `json:"error,omitempty"`
}

// QueryResponse is the response to a QueryRequest.
type QueryResponse struct {
	Success bool              `json:"success"`
	Results []StatementResult `json:"results"`
}

// AttachmentInfo describes one attached database.
type AttachmentInfo struct {
	Alias      string    `json:"alias"`
	URL        string    `json:"url"`
	Proxied    bool      `json:"proxied"`
	AttachedAt time.Time `json:"attachedAt"`
}

// AttachmentsResponse lists attached databases.
type AttachmentsResponse struct {
	Success     bool             `json:"success"`
	Attachments []AttachmentInfo `json:"attachments"`
}

// ProxyConfigPayload carries the proxy settings over the API.
type ProxyConfigPayload struct {
	Behavior         string `json:"behavior"`
	ProxyBaseURL     string `json:"proxyBaseUrl"`
	CustomS3Endpoint string `json:"customS3Endpoint,omitempty"`
}

// NotificationPayload is one pending user notification.
type NotificationPayload struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	DurationMs int64     `json:"durationMs"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NotificationsResponse lists pending notifications.
type NotificationsResponse struct {
	Success       bool                  `json:"success"`
	Notifications []NotificationPayload `json:"notifications"`
}
