package service

import (
	"errors"
	"fmt"
)

// Common service errors
var (
	// ErrEmptyCommand indicates an interpreter request without text.
	// API layer should map this to HTTP 400 Bad Request.
	ErrEmptyCommand = errors.New("command cannot be empty")

	ErrNilDispatcher  = errors.New("dispatcher cannot be nil")
	ErrNilHistory     = errors.New("history cannot be nil")
	ErrNilInterpreter = errors.New("interpreter cannot be nil")
)

// ServiceError wraps a failure of an AgentService operation.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "submit", "history")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a ServiceError, or nil when err is nil.
func NewServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
