package store

import (
	"errors"
	"fmt"
)

var (
	ErrJobNotFound     = errors.New("scheduled job not found")
	ErrAccountNotFound = errors.New("platform account not found")
	ErrContentNotFound = errors.New("content artifact not found")
	ErrTrendNotFound   = errors.New("trend not found")

	// ErrInvalidTransition signals a result write against a job that is
	// already terminal. Dispatch callers must treat this as "another attempt
	// already completed" and discard their own result.
	ErrInvalidTransition = errors.New("job already in a terminal state")
)

// ValidationError reports malformed creation input. The record is never
// created; the error is surfaced synchronously to the caller.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func validationErr(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
