// Package services provides the workflow persistence client used by the editor.
package services

import (
	"errors"
	"fmt"
)

// Validation errors. They are raised locally, before any request is sent.
var (
	ErrInvalidDraft       = errors.New("invalid workflow draft")
	ErrDeleteNotConfirmed = errors.New("delete not confirmed")
	ErrUnsavedWorkflow    = errors.New("workflow must be saved first")
	ErrRunInProgress      = errors.New("a run is already in progress")
	ErrWorkflowNil        = errors.New("workflow cannot be nil")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Machine readable error code
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error was raised by local validation.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidDraft) ||
		errors.Is(err, ErrDeleteNotConfirmed) ||
		errors.Is(err, ErrUnsavedWorkflow) ||
		errors.Is(err, ErrRunInProgress) ||
		errors.Is(err, ErrWorkflowNil)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
