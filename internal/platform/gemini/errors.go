package gemini

import "errors"

// Error definitions for the gemini package.
var (
	// ErrInvalidConfig indicates unusable interpreter settings.
	ErrInvalidConfig = errors.New("invalid interpreter configuration")

	// ErrInvalidResponse indicates the API answered without usable text.
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked indicates the answer was withheld by safety filters.
	ErrContentBlocked = errors.New("content blocked by safety filters")

	// ErrTransientFailure indicates the API kept failing after all retries.
	ErrTransientFailure = errors.New("transient language model failure")
)
