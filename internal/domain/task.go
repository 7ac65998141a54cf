package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Priority bounds, inclusive.
const (
	MinPriority = 1
	MaxPriority = 5
)

// TaskType identifies which external action a task maps to.
type TaskType string

// Known task types. Anything else is treated as TaskTypeOther.
const (
	TaskTypeMeeting TaskType = "meeting"
	TaskTypeEmail   TaskType = "email"
	TaskTypeOther   TaskType = "other"
)

// ParseTaskType maps a raw type string onto a TaskType. Unknown values
// become TaskTypeOther rather than an error.
func ParseTaskType(s string) TaskType {
	switch TaskType(strings.ToLower(strings.TrimSpace(s))) {
	case TaskTypeMeeting:
		return TaskTypeMeeting
	case TaskTypeEmail:
		return TaskTypeEmail
	default:
		return TaskTypeOther
	}
}

// TaskStatus represents the lifecycle state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// IsTerminal reports whether no further transitions are allowed from s.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// Task is a unit of requested work. It is created pending and transitions
// exactly once to completed or failed.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	Description string     `json:"description"`
	Priority    int        `json:"priority"`
	Type        TaskType   `json:"type"`
	Status      TaskStatus `json:"status"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	FinishedAt  time.Time  `json:"finished_at"`
}

// NewTask creates a pending Task with a fresh ID.
//
// The description must contain non-whitespace text. Priority is not checked
// here; the dispatcher rejects it on submission.
func NewTask(description string, priority int, taskType TaskType) (*Task, error) {
	if strings.TrimSpace(description) == "" {
		return nil, ErrEmptyDescription
	}

	return &Task{
		ID:          uuid.New(),
		Description: description,
		Priority:    priority,
		Type:        taskType,
		Status:      TaskStatusPending,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// ValidatePriority checks the priority range.
func ValidatePriority(priority int) error {
	if priority < MinPriority || priority > MaxPriority {
		return fmt.Errorf("%w: got %d", ErrInvalidPriority, priority)
	}
	return nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}

	if err := ValidatePriority(t.Priority); err != nil {
		return err
	}

	switch t.Status {
	case TaskStatusPending, TaskStatusCompleted, TaskStatusFailed:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}

	return nil
}

// Complete moves a pending task to completed.
func (t *Task) Complete() error {
	return t.finish(TaskStatusCompleted, "")
}

// Fail moves a pending task to failed, recording the cause.
func (t *Task) Fail(cause error) error {
	reason := ""
	if cause != nil {
		reason = cause.Error()
	}
	return t.finish(TaskStatusFailed, reason)
}

func (t *Task) finish(status TaskStatus, reason string) error {
	if t.Status != TaskStatusPending {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, status)
	}

	t.Status = status
	t.Error = reason
	t.FinishedAt = time.Now().UTC()
	return nil
}
