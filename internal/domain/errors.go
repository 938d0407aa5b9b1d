package domain

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrAuth         = errors.New("authentication failed")
	ErrFetch        = errors.New("request failed")
	ErrNetwork      = errors.New("network error")
	ErrTaskNotFound = errors.New("task not found")
)

type ValidationReason string

const (
	ReasonMissingFields ValidationReason = "missing fields"
	ReasonMismatch      ValidationReason = "mismatch"
	ReasonTooShort      ValidationReason = "too short"
	ReasonInvalidEmail  ValidationReason = "invalid email"
	ReasonEmptyTitle    ValidationReason = "empty title"
	ReasonBadPriority   ValidationReason = "invalid priority"
	ReasonEmptyPatch    ValidationReason = "empty patch"
)

var validationMessages = map[ValidationReason]string{
	ReasonMissingFields: "Please fill in all fields",
	ReasonMismatch:      "Passwords do not match",
	ReasonTooShort:      "Password must be at least 6 characters long",
	ReasonInvalidEmail:  "Please enter a valid email address",
	ReasonEmptyTitle:    "Task title is required",
	ReasonBadPriority:   "Priority must be low, medium or high",
	ReasonEmptyPatch:    "Nothing to update",
}

// ValidationError is raised locally, before any request is issued.
type ValidationError struct {
	Reason ValidationReason
}

func NewValidationError(reason ValidationReason) *ValidationError {
	return &ValidationError{Reason: reason}
}

func (e *ValidationError) Error() string {
	if msg, ok := validationMessages[e.Reason]; ok {
		return msg
	}
	return string(e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// AuthError is a login or registration rejected by the server. Message is the
// server's text, passed through for display.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string        { return e.Message }
func (e *AuthError) Is(target error) bool { return target == ErrAuth }

// FetchError is a failed task operation: either a server-reported failure or a
// transport failure (kept in Err).
type FetchError struct {
	Op      string
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("Failed to %s", e.Op)
}

func (e *FetchError) Is(target error) bool { return target == ErrFetch }
func (e *FetchError) Unwrap() error        { return e.Err }

// NetworkError means no usable response was obtained.
type NetworkError struct {
	Err error
}

const networkMessage = "Network error. Please check if the server is running."

func (e *NetworkError) Error() string        { return networkMessage }
func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }
func (e *NetworkError) Unwrap() error        { return e.Err }
