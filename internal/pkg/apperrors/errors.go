package apperrors

import (
	"errors"
	"strings"
)

// Common errors
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrUnauthorized       = errors.New("authentication required")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")

	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already registered")

	// Upstream errors
	ErrUpstreamFailure = errors.New("upstream service failure")
)

// Student errors
var (
	ErrStudentNotFound = errors.New("student not found")
)

// Password reset errors
var (
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
)

// ValidationError carries one message per violated field so the client sees
// every problem at once, not just the first.
type ValidationError struct {
	Errors []string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return ErrValidationFailed.Error()
	}
	return strings.Join(e.Errors, "; ")
}

// Unwrap makes the error match ErrValidationFailed via errors.Is
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// NewValidationError creates a ValidationError from field messages
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Errors: messages}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}
