package history

import (
	"context"
	"fmt"
	"sync"

	"github.com/phrazzld/agent-api/internal/domain"
)

// MemoryStore is an in-process Store guarded by a RWMutex.
type MemoryStore struct {
	mu    sync.RWMutex
	tasks []domain.Task
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append records a copy of task.
func (s *MemoryStore) Append(ctx context.Context, task domain.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTask, err)
	}

	s.mu.Lock()
	s.tasks = append(s.tasks, task)
	s.mu.Unlock()

	return nil
}

// List returns a copy of the recorded tasks.
func (s *MemoryStore) List(ctx context.Context) ([]domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Task, len(s.tasks))
	copy(out, s.tasks)
	return out, nil
}
