package task

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/phrazzld/agent-api/internal/domain"
)

// MeetingCall records the arguments of one ScheduleMeeting call.
type MeetingCall struct {
	Attendees []string
	Start     time.Time
	Duration  time.Duration
	Title     string
}

// EmailCall records the arguments of one SendEmail call.
type EmailCall struct {
	To      string
	Subject string
	Body    string
}

// CalendarMock implements Calendar for testing.
type CalendarMock struct {
	mutex    sync.Mutex
	meetings []MeetingCall

	ScheduleMeetingFn func(ctx context.Context, attendees []string, start time.Time, duration time.Duration, title string) error
	UpcomingEventsFn  func(ctx context.Context) ([]domain.CalendarEvent, error)
}

// NewCalendarMock creates a CalendarMock that accepts every meeting and
// reports no upcoming events.
func NewCalendarMock() *CalendarMock {
	return &CalendarMock{
		ScheduleMeetingFn: func(context.Context, []string, time.Time, time.Duration, string) error {
			return nil
		},
		UpcomingEventsFn: func(context.Context) ([]domain.CalendarEvent, error) {
			return nil, nil
		},
	}
}

// ScheduleMeeting records the call and delegates to ScheduleMeetingFn.
func (m *CalendarMock) ScheduleMeeting(
	ctx context.Context,
	attendees []string,
	start time.Time,
	duration time.Duration,
	title string,
) error {
	m.mutex.Lock()
	m.meetings = append(m.meetings, MeetingCall{
		Attendees: append([]string(nil), attendees...),
		Start:     start,
		Duration:  duration,
		Title:     title,
	})
	m.mutex.Unlock()

	return m.ScheduleMeetingFn(ctx, attendees, start, duration, title)
}

// UpcomingEvents delegates to UpcomingEventsFn.
func (m *CalendarMock) UpcomingEvents(ctx context.Context) ([]domain.CalendarEvent, error) {
	return m.UpcomingEventsFn(ctx)
}

// Meetings returns the recorded ScheduleMeeting calls.
func (m *CalendarMock) Meetings() []MeetingCall {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return append([]MeetingCall(nil), m.meetings...)
}

// MailerMock implements Mailer for testing.
type MailerMock struct {
	mutex  sync.Mutex
	emails []EmailCall

	SendEmailFn func(ctx context.Context, to, subject, body string) error
}

// NewMailerMock creates a MailerMock that accepts every email.
func NewMailerMock() *MailerMock {
	return &MailerMock{
		SendEmailFn: func(context.Context, string, string, string) error {
			return nil
		},
	}
}

// SendEmail records the call and delegates to SendEmailFn.
func (m *MailerMock) SendEmail(ctx context.Context, to, subject, body string) error {
	m.mutex.Lock()
	m.emails = append(m.emails, EmailCall{To: to, Subject: subject, Body: body})
	m.mutex.Unlock()

	return m.SendEmailFn(ctx, to, subject, body)
}

// Emails returns the recorded SendEmail calls.
func (m *MailerMock) Emails() []EmailCall {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return append([]EmailCall(nil), m.emails...)
}

// InterpreterMock implements Interpreter for testing.
type InterpreterMock struct {
	mutex    sync.Mutex
	commands []string

	ProcessCommandFn func(ctx context.Context, text string) (string, error)
}

// NewInterpreterMock creates an InterpreterMock that echoes its input.
func NewInterpreterMock() *InterpreterMock {
	return &InterpreterMock{
		ProcessCommandFn: func(_ context.Context, text string) (string, error) {
			return fmt.Sprintf("Processed command: %s", text), nil
		},
	}
}

// ProcessCommand records the call and delegates to ProcessCommandFn.
func (m *InterpreterMock) ProcessCommand(ctx context.Context, text string) (string, error) {
	m.mutex.Lock()
	m.commands = append(m.commands, text)
	m.mutex.Unlock()

	return m.ProcessCommandFn(ctx, text)
}

// Commands returns the recorded inputs.
func (m *InterpreterMock) Commands() []string {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return append([]string(nil), m.commands...)
}
