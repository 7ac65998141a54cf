package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrInvalidPriority is returned when a task priority falls outside
	// [MinPriority, MaxPriority]. It is raised before any side effect.
	ErrInvalidPriority = errors.New("priority must be between 1 and 5")

	// ErrEmptyDescription is returned when a task has no description text.
	ErrEmptyDescription = errors.New("task description cannot be empty")

	// ErrInvalidStatus is returned when a task carries an unknown status value.
	ErrInvalidStatus = errors.New("invalid task status")

	// ErrInvalidTransition is returned when a task that already reached a
	// terminal status is asked to transition again.
	ErrInvalidTransition = errors.New("invalid task status transition")
)
