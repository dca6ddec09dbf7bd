// Package engine defines the execution port the gateway drives. The
// underlying analytical engine is a black box behind this interface: it
// returns tabular results or fails with a message and, when the failure
// came from a remote response, an HTTP-like status.
package engine

import (
	"context"
	"fmt"
)

// Engine executes a single SQL statement.
type Engine interface {
	Execute(ctx context.Context, sql string) (*Result, error)
}

// Result represents the result of a statement execution. Queries populate
// Columns/Rows; write statements populate RowsAffected.
type Result struct {
	Columns      []string
	Rows         [][]any
	RowsAffected int64
}

// Error is an execution failure surfaced by an engine. Status carries the
// HTTP status of the remote response that caused the failure, or zero when
// the failure never produced one, which is the shape an opaque
// cross-origin failure takes.
type Error struct {
	Msg    string
	Status int
	cause  error
}

// NewError creates an engine error with an optional HTTP-like status.
func NewError(msg string, status int) *Error {
	return &Error{Msg: msg, Status: status}
}

// WrapError wraps an underlying driver error.
func WrapError(err error, status int) *Error {
	return &Error{Msg: err.Error(), Status: status, cause: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (HTTP %d)", e.Msg, e.Status)
	}
	return e.Msg
}

// HTTPStatus returns the HTTP status associated with the failure, or zero.
func (e *Error) HTTPStatus() int {
	return e.Status
}

// Unwrap returns the underlying driver error, if any.
func (e *Error) Unwrap() error {
	return e.cause
}
