package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/blazeapp-lab/blazeapp-sub000/pkg/api"
)

// ErrorType categorizes different error types
type ErrorType string

const (
	// Failures of the core operations
	ErrorTypeRead     ErrorType = "read"
	ErrorTypeWrite    ErrorType = "write"
	ErrorTypeConflict ErrorType = "conflict"

	// Transport
	ErrorTypeNetwork ErrorType = "network"
	ErrorTypeTimeout ErrorType = "timeout"

	// Authentication errors
	ErrorTypeAuth           ErrorType = "auth"
	ErrorTypeForbidden      ErrorType = "forbidden"
	ErrorTypeSessionExpired ErrorType = "session_expired"

	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeServer     ErrorType = "server"

	ErrorTypeUnknown ErrorType = "unknown"
)

// CLIError represents a structured error with context
type CLIError struct {
	Type       ErrorType
	Message    string
	Cause      error
	Suggestion string
	StatusCode int
}

// Error implements the error interface
func (e *CLIError) Error() string {
	if e.Cause != nil && e.Type != ErrorTypeUnknown {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// WithSuggestion adds a helpful suggestion to the error
func (e *CLIError) WithSuggestion(suggestion string) *CLIError {
	e.Suggestion = suggestion
	return e
}

// HasSuggestion returns true if the error has a suggestion
func (e *CLIError) HasSuggestion() bool {
	return e.Suggestion != ""
}

// Unwrap returns the underlying error
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// NewCLIError creates a new CLI error
func NewCLIError(errorType ErrorType, message string, cause error) *CLIError {
	err := &CLIError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
	var apiErr *api.APIError
	if errors.As(cause, &apiErr) {
		err.StatusCode = apiErr.StatusCode
	}
	return err
}

// ReadError is a failed query. The operation is abandoned and whatever was
// shown before stays on screen.
func ReadError(message string, cause error) *CLIError {
	err := NewCLIError(ErrorTypeRead, message, cause)
	err.Suggestion = "Nothing was changed. Try again in a moment."
	return err
}

// WriteError is a failed reaction write whose optimistic change was rolled back.
func WriteError(message string, cause error) *CLIError {
	err := NewCLIError(ErrorTypeWrite, message, cause)
	err.Suggestion = "Your change was undone. Run the command again to retry."
	return err
}

// NetworkError creates a network error
func NetworkError(message string) *CLIError {
	err := NewCLIError(ErrorTypeNetwork, message, nil)
	err.Suggestion = "Check your internet connection and backend.url, then try again."
	return err
}

// TimeoutError creates a timeout error
func TimeoutError() *CLIError {
	err := NewCLIError(ErrorTypeTimeout, "Request timed out", nil)
	err.Suggestion = "The server is taking too long to respond. Try again in a moment."
	return err
}

// AuthError creates an authentication error
func AuthError(message string) *CLIError {
	err := NewCLIError(ErrorTypeAuth, message, nil)
	err.Suggestion = "Try logging in again with 'blaze auth login'"
	return err
}

// SessionExpiredError creates a session expired error
func SessionExpiredError() *CLIError {
	err := NewCLIError(ErrorTypeSessionExpired, "Your session has expired", nil)
	err.Suggestion = "Run 'blaze auth login' to start a new session."
	return err
}

// ForbiddenError creates a forbidden error
func ForbiddenError() *CLIError {
	err := NewCLIError(ErrorTypeForbidden, "Access denied", nil)
	err.Suggestion = "The post may belong to a private account you do not follow."
	return err
}

// ValidationError creates a validation error
func ValidationError(field, reason string) *CLIError {
	message := fmt.Sprintf("Validation error: %s - %s", field, reason)
	return NewCLIError(ErrorTypeValidation, message, nil)
}

// ServerError creates a server error
func ServerError() *CLIError {
	err := NewCLIError(ErrorTypeServer, "Server error", nil)
	err.Suggestion = "The server encountered an error. Try again in a few moments."
	return err
}

// NotFoundError creates a not found error
func NotFoundError(resourceType, identifier string) *CLIError {
	return NewCLIError(ErrorTypeNotFound,
		fmt.Sprintf("%s not found: %s", resourceType, identifier),
		nil)
}

// ConflictError wraps a duplicate write.
func ConflictError(cause error) *CLIError {
	return NewCLIError(ErrorTypeConflict, "Already exists", cause)
}

// Ignorable reports whether err is a duplicate-write conflict, which callers
// treat as success and never show to the user.
func Ignorable(err error) bool {
	if err == nil {
		return false
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) && cliErr.Type == ErrorTypeConflict {
		return true
	}
	return api.IsDuplicate(err)
}

// CategorizeError converts a standard error into a CLIError
func CategorizeError(err error) *CLIError {
	if err == nil {
		return nil
	}

	// Check if it's already a CLIError
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}

	switch {
	case api.IsDuplicate(err):
		return ConflictError(err)
	case api.IsUnauthorized(err):
		return SessionExpiredError()
	case api.IsForbidden(err):
		return ForbiddenError()
	case api.IsNotFound(err):
		return NewCLIError(ErrorTypeNotFound, "Not found", err)
	case api.IsServerError(err):
		return ServerError()
	case errors.Is(err, context.DeadlineExceeded):
		return TimeoutError()
	}

	// Transport errors carry no status, fall back to the message
	errMsg := err.Error()

	switch {
	case strings.Contains(errMsg, "connection refused"), strings.Contains(errMsg, "no such host"):
		return NetworkError("Could not connect to the backend.")
	case strings.Contains(errMsg, "timeout"):
		return TimeoutError()
	default:
		return NewCLIError(ErrorTypeUnknown, errMsg, err)
	}
}

// FormatError returns a user-friendly error message
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	cliErr := CategorizeError(err)
	var sb strings.Builder

	sb.WriteString("Error")
	if cliErr.Type != ErrorTypeUnknown {
		sb.WriteString(" (")
		sb.WriteString(string(cliErr.Type))
		sb.WriteString(")")
	}
	sb.WriteString(": ")
	sb.WriteString(cliErr.Error())
	sb.WriteString("\n")

	if cliErr.HasSuggestion() {
		sb.WriteString("\nSuggestion: ")
		sb.WriteString(cliErr.Suggestion)
		sb.WriteString("\n")
	}

	return sb.String()
}
