// Package apierror defines the coded error surface of the HTTP API.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// API error codes.
const (
	CodeInvalidRequest   = "001001"
	CodeQueryFailed      = "001002"
	CodeAttachFailed     = "001003"
	CodeCancelled        = "001004"
	CodeTimeout          = "001005"
	CodeNotFound         = "002001"
	CodeInvalidParameter = "000002"
	CodeInternalError    = "000001"
)

// HTTPStatus maps an error code to the HTTP status it is served with.
func HTTPStatus(code string) int {
	switch code {
	case CodeInvalidRequest, CodeInvalidParameter:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeCancelled:
		return 499 // client closed request
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// APIError is a coded, JSON-serializable error.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Is matches errors by code.
func (e *APIError) Is(target error) bool {
	var apiErr *APIError
	if errors.As(target, &apiErr) {
		return e.Code == apiErr.Code
	}
	return false
}

// WithData attaches a data field to the error.
func (e *APIError) WithData(key string, value any) *APIError {
	if e.Data == nil {
		e.Data = make(map[string]any)
	}
	e.Data[key] = value
	return e
}

// ErrorResponse is the unified JSON error body used by all handlers.
type ErrorResponse struct {
	Success bool           `json:"success"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// ToResponse converts the error to its response body.
func (e *APIError) ToResponse() *ErrorResponse {
	return &ErrorResponse{
		Success: false,
		Code:    e.Code,
		Message: e.Message,
		Data:    e.Data,
	}
}

// New creates an APIError with the given code and message.
func New(code, message string) *APIError {
	return &APIError{Code: code, Message: message}
}

// NewInvalidRequest creates an invalid-request error.
func NewInvalidRequest(message string) *APIError {
	return New(CodeInvalidRequest, message)
}

// NewInvalidParameter creates an invalid-parameter error.
func NewInvalidParameter(param, reason string) *APIError {
	return New(CodeInvalidParameter, fmt.Sprintf("Invalid parameter %q: %s", param, reason)).
		WithData("param", param)
}

// NewNotFound creates a not-found error for a resource.
func NewNotFound(resource string) *APIError {
	return New(CodeNotFound, fmt.Sprintf("Not found: %s", resource))
}

// NewInternal creates an internal error.
func NewInternal(message string) *APIError {
	return New(CodeInternalError, message)
}

// FromError converts any error to an APIError, passing existing APIErrors
// through unchanged.
func FromError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return New(CodeInternalError, err.Error())
}
