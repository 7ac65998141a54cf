package scheduler

import "errors"

// Common errors
var (
	ErrAlreadyStarted = errors.New("scheduler already started")
	ErrStopped        = errors.New("scheduler stopped")
	ErrDuplicateJob   = errors.New("job already registered")

	ErrNilHistory = errors.New("history store cannot be nil")
	ErrNilEvents  = errors.New("event source cannot be nil")
	ErrNilMailer  = errors.New("mailer cannot be nil")
	ErrNilLogger  = errors.New("logger cannot be nil")
)
