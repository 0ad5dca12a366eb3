package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/blazeapp-lab/blazeapp-sub000/pkg/api"
)

// TestNewCLIError creates and validates a CLI error
func TestNewCLIError(t *testing.T) {
	cause := errors.New("underlying error")
	err := NewCLIError(ErrorTypeValidation, "Test error", cause)

	if err == nil {
		t.Fatal("NewCLIError returned nil")
	}

	if err.Type != ErrorTypeValidation {
		t.Errorf("Expected type %s, got %s", ErrorTypeValidation, err.Type)
	}

	if err.Message != "Test error" {
		t.Errorf("Expected message 'Test error', got '%s'", err.Message)
	}

	if err.Cause != cause {
		t.Error("Cause not set correctly")
	}
}

// TestNewCLIError_StatusFromAPIError copies the HTTP status of a wrapped API error
func TestNewCLIError_StatusFromAPIError(t *testing.T) {
	cause := fmt.Errorf("failed to add like: %w", &api.APIError{Code: "42501", StatusCode: 403})
	err := WriteError("Could not like post", cause)

	if err.StatusCode != 403 {
		t.Errorf("Expected status 403, got %d", err.StatusCode)
	}
}

// TestWithSuggestion adds suggestion to error
func TestWithSuggestion(t *testing.T) {
	err := NewCLIError(ErrorTypeValidation, "Test", nil)
	suggestion := "Try something else"

	result := err.WithSuggestion(suggestion)

	if !result.HasSuggestion() {
		t.Error("HasSuggestion returned false")
	}

	if result.Suggestion != suggestion {
		t.Errorf("Expected suggestion '%s', got '%s'", suggestion, result.Suggestion)
	}
}

// TestReadError keeps the cause in the message
func TestReadError(t *testing.T) {
	err := ReadError("failed to load feed", errors.New("connection reset"))

	if err.Type != ErrorTypeRead {
		t.Errorf("Expected type %s, got %s", ErrorTypeRead, err.Type)
	}

	if !strings.Contains(err.Error(), "failed to load feed") || !strings.Contains(err.Error(), "connection reset") {
		t.Errorf("Unexpected message %q", err.Error())
	}
}

// TestWriteError mentions the rollback
func TestWriteError(t *testing.T) {
	err := WriteError("Could not like post", errors.New("boom"))

	if err.Type != ErrorTypeWrite {
		t.Errorf("Expected type %s, got %s", ErrorTypeWrite, err.Type)
	}

	if !strings.Contains(err.Suggestion, "undone") {
		t.Error("Expected rollback suggestion")
	}
}

// TestNetworkError creates network error
func TestNetworkError(t *testing.T) {
	err := NetworkError("Connection failed")

	if err.Type != ErrorTypeNetwork {
		t.Errorf("Expected type %s, got %s", ErrorTypeNetwork, err.Type)
	}

	if !strings.Contains(err.Suggestion, "internet") {
		t.Error("Expected helpful suggestion about internet connection")
	}
}

// TestAuthError creates auth error
func TestAuthError(t *testing.T) {
	err := AuthError("Invalid credentials")

	if err.Type != ErrorTypeAuth {
		t.Errorf("Expected type %s, got %s", ErrorTypeAuth, err.Type)
	}

	if !strings.Contains(err.Suggestion, "blaze auth login") {
		t.Error("Expected login suggestion")
	}
}

// TestValidationError creates validation error
func TestValidationError(t *testing.T) {
	err := ValidationError("email", "invalid format")

	if err.Type != ErrorTypeValidation {
		t.Errorf("Expected type %s, got %s", ErrorTypeValidation, err.Type)
	}

	if !strings.Contains(err.Message, "email") || !strings.Contains(err.Message, "invalid format") {
		t.Errorf("Unexpected message %q", err.Message)
	}
}

// TestNotFoundError creates not found error
func TestNotFoundError(t *testing.T) {
	err := NotFoundError("Post", "p1")

	if err.Type != ErrorTypeNotFound {
		t.Errorf("Expected type %s, got %s", ErrorTypeNotFound, err.Type)
	}

	if !strings.Contains(err.Message, "p1") {
		t.Error("Expected identifier in message")
	}
}

// TestIgnorable only accepts duplicate conflicts
func TestIgnorable(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"http 409", &api.APIError{StatusCode: 409}, true},
		{"unique violation", fmt.Errorf("wrapped: %w", &api.APIError{Code: "23505", StatusCode: 400}), true},
		{"conflict cli error", ConflictError(errors.New("dup")), true},
		{"server error", &api.APIError{StatusCode: 500}, false},
		{"plain", errors.New("boom"), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Ignorable(tc.err); got != tc.want {
				t.Errorf("Ignorable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

// TestCategorizeError categorizes standard and API errors
func TestCategorizeError(t *testing.T) {
	testCases := []struct {
		input    error
		expected ErrorType
		name     string
	}{
		{errors.New("dial tcp: connection refused"), ErrorTypeNetwork, "connection refused"},
		{errors.New("i/o timeout"), ErrorTypeTimeout, "timeout"},
		{context.DeadlineExceeded, ErrorTypeTimeout, "context deadline"},
		{&api.APIError{StatusCode: 401}, ErrorTypeSessionExpired, "401"},
		{&api.APIError{StatusCode: 403}, ErrorTypeForbidden, "403"},
		{&api.APIError{StatusCode: 404}, ErrorTypeNotFound, "404"},
		{&api.APIError{StatusCode: 409}, ErrorTypeConflict, "409"},
		{&api.APIError{StatusCode: 502}, ErrorTypeServer, "502"},
		{errors.New("something odd"), ErrorTypeUnknown, "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := CategorizeError(tc.input)

			if err.Type != tc.expected {
				t.Errorf("Expected type %s, got %s", tc.expected, err.Type)
			}
		})
	}
}

// TestCategorizeError_KeepsCLIError returns wrapped CLI errors unchanged
func TestCategorizeError_KeepsCLIError(t *testing.T) {
	original := ReadError("failed to load feed", nil)
	got := CategorizeError(fmt.Errorf("feed: %w", original))

	if got != original {
		t.Error("Expected the wrapped CLIError to be returned")
	}
}

// TestFormatError formats error for display
func TestFormatError(t *testing.T) {
	err := AuthError("Invalid credentials")
	formatted := FormatError(err)

	if !strings.Contains(formatted, "Error (auth): Invalid credentials") {
		t.Errorf("Unexpected formatted message %q", formatted)
	}

	if !strings.Contains(formatted, "Suggestion") {
		t.Error("Expected suggestion in formatted message")
	}
}

// TestFormatError_NoSuggestion formats error without suggestion
func TestFormatError_NoSuggestion(t *testing.T) {
	err := NewCLIError(ErrorTypeUnknown, "Some error", nil)
	formatted := FormatError(err)

	if !strings.Contains(formatted, "Some error") {
		t.Error("Expected error message in formatted output")
	}

	if strings.Contains(formatted, "Suggestion") {
		t.Error("Did not expect a suggestion")
	}
}

// TestFormatError_Nil handles nil error
func TestFormatError_Nil(t *testing.T) {
	if formatted := FormatError(nil); formatted != "" {
		t.Errorf("Expected empty string for nil error, got '%s'", formatted)
	}
}

// TestUnwrap returns underlying error
func TestUnwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := NewCLIError(ErrorTypeValidation, "Test", cause)

	if !errors.Is(err, cause) {
		t.Error("Unwrap did not return the correct underlying error")
	}
}
