package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidTeamSize, "test message: %s", "value")

	if err.Code != ErrCodeInvalidTeamSize {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidTeamSize)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_TEAM_SIZE: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeUnavailable, cause, "connect to cache")

	if err.Code != ErrCodeUnavailable {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeUnavailable)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}

	expected := "UNAVAILABLE: connect to cache: connection refused"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeInvalidFocus, "test"),
			code:     ErrCodeInvalidFocus,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidFocus, "test"),
			code:     ErrCodeNotFound,
			expected: false,
		},
		{
			name:     "wrapped by fmt",
			err:      fmt.Errorf("compose: %w", New(ErrCodeInvalidLength, "inner")),
			code:     ErrCodeInvalidLength,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeNotFound, "missing")); got != ErrCodeNotFound {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeNotFound)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %v, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeInvalidLevel, "unknown level %q", "Pro")); got != `unknown level "Pro"` {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", New(ErrCodeInvalidSection, "x"), http.StatusBadRequest},
		{"bad id", New(ErrCodeInvalidID, "x"), http.StatusBadRequest},
		{"not found", New(ErrCodeNotFound, "x"), http.StatusNotFound},
		{"unavailable", New(ErrCodeUnavailable, "x"), http.StatusServiceUnavailable},
		{"timeout", New(ErrCodeTimeout, "x"), http.StatusGatewayTimeout},
		{"internal", New(ErrCodeInternal, "x"), http.StatusInternalServerError},
		{"plain", errors.New("x"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}
