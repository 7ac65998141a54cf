package history

import (
	"context"
	"errors"

	"github.com/phrazzld/agent-api/internal/domain"
)

// ErrInvalidTask is returned when a task cannot be recorded.
var ErrInvalidTask = errors.New("invalid task for history")

// Store defines the interface for recording dispatched tasks.
type Store interface {
	// Append adds a task snapshot to the end of the history.
	Append(ctx context.Context, task domain.Task) error

	// List returns a snapshot of all recorded tasks in insertion order.
	List(ctx context.Context) ([]domain.Task, error)
}
