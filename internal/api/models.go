package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/agent-api/internal/domain"
)

// DefaultRequestPriority applies when a meeting or email request omits one.
const DefaultRequestPriority = 1

// MeetingRequest defines the payload for POST /api/meetings.
type MeetingRequest struct {
	Title        string    `json:"title"        validate:"required"`
	Date         time.Time `json:"date"         validate:"required"`
	Participants []string  `json:"participants" validate:"required,min=1,dive,required,email"`
	Priority     *int      `json:"priority,omitempty"`
}

// EmailRequest defines the payload for POST /api/emails.
type EmailRequest struct {
	To       string `json:"to"      validate:"required,email"`
	Subject  string `json:"subject" validate:"required"`
	Body     string `json:"body"    validate:"required"`
	Priority *int   `json:"priority,omitempty"`
}

// TaskRequest defines the payload for POST /api/tasks. Priority is range
// checked by the service so the error matches every other submission path.
type TaskRequest struct {
	Description string `json:"description" validate:"required"`
	Priority    int    `json:"priority"`
	Type        string `json:"type"`
}

// CommandRequest defines the payload for POST /api/nlp.
type CommandRequest struct {
	Command string `json:"command" validate:"required"`
}

// CommandResponse is the interpreter's reply.
type CommandResponse struct {
	Response string `json:"response"`
}

// StatusResponse is the body of health checks and accepted submissions.
type StatusResponse struct {
	Status string `json:"status"`
}

// TaskResponse is the wire form of a task.
type TaskResponse struct {
	ID          uuid.UUID  `json:"id"`
	Description string     `json:"description"`
	Priority    int        `json:"priority"`
	Type        string     `json:"type"`
	Status      string     `json:"status"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

// TaskListResponse wraps the task history.
type TaskListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
}

func taskToResponse(t domain.Task) TaskResponse {
	resp := TaskResponse{
		ID:          t.ID,
		Description: t.Description,
		Priority:    t.Priority,
		Type:        string(t.Type),
		Status:      string(t.Status),
		Error:       t.Error,
		CreatedAt:   t.CreatedAt,
	}
	if !t.FinishedAt.IsZero() {
		finished := t.FinishedAt
		resp.FinishedAt = &finished
	}
	return resp
}

func priorityOrDefault(p *int) int {
	if p == nil {
		return DefaultRequestPriority
	}
	return *p
}
