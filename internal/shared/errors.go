package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrUnauthenticated indicates no signed-in user for the request.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrPermissionDenied indicates the current role lacks a capability.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrConflict indicates an active reservation already occupies the slot.
	ErrConflict = errors.New("reservation conflict")
	// ErrInvalidInput indicates a user-correctable validation failure.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// DeniedError carries the user-facing message for a refused capability check.
// errors.Is(err, ErrPermissionDenied) holds for every DeniedError.
type DeniedError struct {
	Message string
}

func (e *DeniedError) Error() string {
	if e.Message == "" {
		return ErrPermissionDenied.Error()
	}
	return fmt.Sprintf("permission denied: %s", e.Message)
}

// Unwrap links DeniedError into the ErrPermissionDenied chain.
func (e *DeniedError) Unwrap() error { return ErrPermissionDenied }

// Denied builds a DeniedError with the given user-facing message.
func Denied(message string) error {
	return &DeniedError{Message: message}
}
