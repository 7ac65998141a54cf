package task

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrCollaboratorFailure matches any *CollaboratorError via errors.Is.
	ErrCollaboratorFailure = errors.New("collaborator call failed")

	ErrNilCalendar = errors.New("calendar cannot be nil")
	ErrNilMailer   = errors.New("mailer cannot be nil")
	ErrNilHistory  = errors.New("history store cannot be nil")
	ErrNilLogger   = errors.New("logger cannot be nil")
	ErrNilTask     = errors.New("task cannot be nil")
)

// CollaboratorError reports a failed calendar, mail or interpreter call
// made while dispatching a task.
type CollaboratorError struct {
	// Collaborator names the external actor, e.g. "calendar".
	Collaborator string
	// Op names the attempted action, e.g. "schedule meeting".
	Op string
	// Cause is the error returned by the collaborator.
	Cause error
}

// Error implements the error interface.
func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Collaborator, e.Op, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *CollaboratorError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrCollaboratorFailure.
func (e *CollaboratorError) Is(target error) bool {
	return target == ErrCollaboratorFailure
}
