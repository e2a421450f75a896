// Package apperrors defines the error taxonomy shared by resource clients,
// the query cache and the HTTP layer.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrNotFound is returned when a single-row lookup matched nothing.
var ErrNotFound = errors.New("not found")

// RemoteOperationError is a backend call that failed. Message is safe to show
// to staff; Cause keeps the backend error for logs.
type RemoteOperationError struct {
	Message string
	Cause   error
}

func (e *RemoteOperationError) Error() string {
	return e.Message
}

func (e *RemoteOperationError) Unwrap() error {
	return e.Cause
}

// Remote wraps cause with a user-facing message.
func Remote(message string, cause error) *RemoteOperationError {
	return &RemoteOperationError{Message: message, Cause: cause}
}

// PartialCompletionError reports a multi-step write that failed after an
// earlier step committed.
type PartialCompletionError struct {
	Message string
	// Committed names the step that had already succeeded.
	Committed string
	// Failed names the step that failed.
	Failed string
	Cause  error
	// Compensated is true when the compensating action ran and succeeded.
	Compensated     bool
	CompensationErr error
}

func (e *PartialCompletionError) Error() string {
	return e.Message
}

func (e *PartialCompletionError) Unwrap() error {
	return e.Cause
}

// ConfigurationError is returned when an operation needs a credential that
// the deployment does not provide.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// ValidationError carries per-field messages for input rejected before any
// remote call.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HTTPStatus maps an error from any layer to a response status.
func HTTPStatus(err error) int {
	var (
		validation *ValidationError
		configErr  *ConfigurationError
		partial    *PartialCompletionError
		remote     *RemoteOperationError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &partial):
		return http.StatusInternalServerError
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &configErr):
		return http.StatusServiceUnavailable
	case errors.As(err, &remote):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
