package task

import (
	"context"
	"time"

	"github.com/phrazzld/agent-api/internal/domain"
)

// Calendar schedules meetings and reports upcoming events.
type Calendar interface {
	// ScheduleMeeting books a meeting for the attendees.
	ScheduleMeeting(ctx context.Context, attendees []string, start time.Time, duration time.Duration, title string) error

	// UpcomingEvents lists events that have not started yet.
	UpcomingEvents(ctx context.Context) ([]domain.CalendarEvent, error)
}

// Mailer sends email.
type Mailer interface {
	// SendEmail delivers a plain-text message.
	SendEmail(ctx context.Context, to, subject, body string) error
}

// Interpreter interprets a free-text command.
type Interpreter interface {
	// ProcessCommand returns the interpreter's response to text.
	ProcessCommand(ctx context.Context, text string) (string, error)
}
