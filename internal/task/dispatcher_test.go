package task

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/phrazzld/agent-api/internal/command"
	"github.com/phrazzld/agent-api/internal/domain"
	"github.com/phrazzld/agent-api/internal/history"
	"github.com/phrazzld/agent-api/internal/platform/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)

type dispatcherFixture struct {
	calendar    *CalendarMock
	mailer      *MailerMock
	interpreter *InterpreterMock
	history     *history.MemoryStore
	dispatcher  *Dispatcher
}

func newDispatcherFixture(t *testing.T, opts ...Option) *dispatcherFixture {
	t.Helper()

	f := &dispatcherFixture{
		calendar:    NewCalendarMock(),
		mailer:      NewMailerMock(),
		interpreter: NewInterpreterMock(),
		history:     history.NewMemoryStore(),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	base := []Option{
		WithClock(clockwork.NewFakeClockAt(fixedNow)),
		WithInterpreter(f.interpreter),
		WithMetrics(observability.NewNoopMetrics()),
	}
	d, err := NewDispatcher(f.calendar, f.mailer, f.history, logger, append(base, opts...)...)
	require.NoError(t, err)
	f.dispatcher = d

	return f
}

func (f *dispatcherFixture) listHistory(t *testing.T) []domain.Task {
	t.Helper()
	tasks, err := f.history.List(context.Background())
	require.NoError(t, err)
	return tasks
}

func newPendingTask(t *testing.T, desc string, priority int, taskType domain.TaskType) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(desc, priority, taskType)
	require.NoError(t, err)
	return task
}

func TestNewDispatcher_NilDependencies(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := history.NewMemoryStore()

	tests := []struct {
		name     string
		calendar Calendar
		mailer   Mailer
		store    history.Store
		logger   *slog.Logger
		wantErr  error
	}{
		{"nil calendar", nil, NewMailerMock(), store, logger, ErrNilCalendar},
		{"nil mailer", NewCalendarMock(), nil, store, logger, ErrNilMailer},
		{"nil history", NewCalendarMock(), NewMailerMock(), nil, logger, ErrNilHistory},
		{"nil logger", NewCalendarMock(), NewMailerMock(), store, nil, ErrNilLogger},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			d, err := NewDispatcher(tc.calendar, tc.mailer, tc.store, tc.logger)
			assert.Nil(t, d)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestDispatch_InvalidPriority(t *testing.T) {
	t.Parallel()

	for _, priority := range []int{0, 6, -1} {
		f := newDispatcherFixture(t)
		task := newPendingTask(t, "Send email to a@x.com", priority, domain.TaskTypeEmail)

		err := f.dispatcher.Dispatch(context.Background(), task)

		require.ErrorIs(t, err, domain.ErrInvalidPriority)
		assert.Equal(t, domain.TaskStatusPending, task.Status)
		assert.Empty(t, f.listHistory(t))
		assert.Empty(t, f.mailer.Emails())
		assert.Empty(t, f.calendar.Meetings())
		assert.Empty(t, f.interpreter.Commands())
	}
}

func TestDispatch_MeetingWithParsedFields(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture(t)
	task := newPendingTask(t,
		"Schedule meeting about Budget Review to team@x.com,cfo@x.com at 10:00 AM for 45 minutes",
		3, domain.TaskTypeMeeting)

	require.NoError(t, f.dispatcher.Dispatch(context.Background(), task))

	meetings := f.calendar.Meetings()
	require.Len(t, meetings, 1)
	assert.Equal(t, []string{"team@x.com", "cfo@x.com"}, meetings[0].Attendees)
	assert.Equal(t, fixedNow.Add(time.Hour), meetings[0].Start)
	assert.Equal(t, 45*time.Minute, meetings[0].Duration)
	assert.Equal(t, "Budget Review", meetings[0].Title)

	assert.Equal(t, domain.TaskStatusCompleted, task.Status)
	hist := f.listHistory(t)
	require.Len(t, hist, 1)
	assert.Equal(t, task.ID, hist[0].ID)
	assert.Equal(t, domain.TaskStatusCompleted, hist[0].Status)
}

func TestDispatch_MeetingDefaults(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture(t)
	task := newPendingTask(t, "sync up", 4, domain.TaskTypeMeeting)

	require.NoError(t, f.dispatcher.Dispatch(context.Background(), task))

	meetings := f.calendar.Meetings()
	require.Len(t, meetings, 1)
	assert.Equal(t, []string{"example@email.com"}, meetings[0].Attendees)
	assert.Equal(t, fixedNow.Add(time.Hour), meetings[0].Start)
	assert.Equal(t, 30*time.Minute, meetings[0].Duration)
	assert.Equal(t, "Meeting (Priority: 4)", meetings[0].Title)
}

func TestDispatch_MeetingStartIsUTC(t *testing.T) {
	t.Parallel()

	local := clockwork.NewFakeClockAt(fixedNow.In(time.FixedZone("UTC+5", 5*60*60)))
	f := newDispatcherFixture(t, WithClock(local))
	task := newPendingTask(t, "sync up", 1, domain.TaskTypeMeeting)

	require.NoError(t, f.dispatcher.Dispatch(context.Background(), task))

	meetings := f.calendar.Meetings()
	require.Len(t, meetings, 1)
	assert.Equal(t, time.UTC, meetings[0].Start.Location())
	assert.Equal(t, fixedNow.Add(time.Hour), meetings[0].Start)

	local.Advance(2 * time.Hour)
	next := newPendingTask(t, "sync up", 1, domain.TaskTypeMeeting)
	require.NoError(t, f.dispatcher.Dispatch(context.Background(), next))
	assert.Equal(t, fixedNow.Add(3*time.Hour), f.calendar.Meetings()[1].Start)
}

func TestDispatch_EmailParsedFields(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture(t)
	task := newPendingTask(t,
		`Send email to bob@x.com with subject "Status" and body "All green"`,
		2, domain.TaskTypeEmail)

	require.NoError(t, f.dispatcher.Dispatch(context.Background(), task))

	emails := f.mailer.Emails()
	require.Len(t, emails, 1)
	assert.Equal(t, EmailCall{To: "bob@x.com", Subject: "Status", Body: "All green"}, emails[0])
	assert.Equal(t, domain.TaskStatusCompleted, task.Status)
}

func TestDispatch_EmailDefaults(t *testing.T) {
	t.Parallel()

	t.Run("stock defaults", func(t *testing.T) {
		t.Parallel()
		f := newDispatcherFixture(t)
		task := newPendingTask(t, "ping the team", 5, domain.TaskTypeEmail)

		require.NoError(t, f.dispatcher.Dispatch(context.Background(), task))

		emails := f.mailer.Emails()
		require.Len(t, emails, 1)
		assert.Equal(t, "remantsega@gmail.com", emails[0].To)
		assert.Equal(t, "Email (Priority: 5)", emails[0].Subject)
		assert.Equal(t, "This is an automated email from the AI Agent.", emails[0].Body)
	})

	t.Run("configured fallback recipient", func(t *testing.T) {
		t.Parallel()
		f := newDispatcherFixture(t, WithDefaults(Defaults{Recipient: "ops@example.com"}))
		task := newPendingTask(t, "ping the team", 1, domain.TaskTypeEmail)

		require.NoError(t, f.dispatcher.Dispatch(context.Background(), task))

		emails := f.mailer.Emails()
		require.Len(t, emails, 1)
		assert.Equal(t, "ops@example.com", emails[0].To)
		assert.Equal(t, "This is an automated email from the AI Agent.", emails[0].Body)
	})
}

func TestDispatch_EmailFansOutToEachRecipient(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture(t)
	task := newPendingTask(t,
		`Send email to a@x.com,b@x.com with subject "Hi" and body "Yo"`,
		2, domain.TaskTypeEmail)

	require.NoError(t, f.dispatcher.Dispatch(context.Background(), task))

	assert.Equal(t, []EmailCall{
		{To: "a@x.com", Subject: "Hi", Body: "Yo"},
		{To: "b@x.com", Subject: "Hi", Body: "Yo"},
	}, f.mailer.Emails())
}

func TestDispatch_EmailStopsAtFirstFailedRecipient(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture(t)
	f.mailer.SendEmailFn = func(_ context.Context, to, _, _ string) error {
		if to == "a@x.com" {
			return errors.New("rejected")
		}
		return nil
	}
	task := newPendingTask(t, "Send email to a@x.com,b@x.com", 2, domain.TaskTypeEmail)

	err := f.dispatcher.Dispatch(context.Background(), task)

	assert.ErrorIs(t, err, ErrCollaboratorFailure)
	assert.Len(t, f.mailer.Emails(), 1)
	assert.Equal(t, domain.TaskStatusFailed, task.Status)
}

func TestDispatchWith_StructuredFieldsBypassParsing(t *testing.T) {
	t.Parallel()

	t.Run("meeting", func(t *testing.T) {
		t.Parallel()
		f := newDispatcherFixture(t)
		start := fixedNow.Add(24 * time.Hour)
		task := newPendingTask(t, "Schedule meeting about Intro to Go at 10:00 AM", 2, domain.TaskTypeMeeting)

		err := f.dispatcher.DispatchWith(context.Background(), task, &command.ParsedCommand{
			Title:     "Intro to Go",
			Attendees: []string{"a@x.com"},
			StartTime: &start,
		})

		require.NoError(t, err)
		meetings := f.calendar.Meetings()
		require.Len(t, meetings, 1)
		assert.Equal(t, "Intro to Go", meetings[0].Title)
		assert.Equal(t, []string{"a@x.com"}, meetings[0].Attendees)
		assert.Equal(t, start, meetings[0].Start)
		assert.Equal(t, 30*time.Minute, meetings[0].Duration)
	})

	t.Run("email", func(t *testing.T) {
		t.Parallel()
		f := newDispatcherFixture(t)
		task := newPendingTask(t, "Send email to someone else", 2, domain.TaskTypeEmail)

		err := f.dispatcher.DispatchWith(context.Background(), task, &command.ParsedCommand{
			Attendees: []string{"bob@x.com"},
			Subject:   "Your body scan results",
			Body:      "Line1\nSays \"hi\"",
		})

		require.NoError(t, err)
		assert.Equal(t, []EmailCall{{
			To:      "bob@x.com",
			Subject: "Your body scan results",
			Body:    "Line1\nSays \"hi\"",
		}}, f.mailer.Emails())
		assert.Equal(t, domain.TaskStatusCompleted, task.Status)
	})

	t.Run("invalid priority still rejected", func(t *testing.T) {
		t.Parallel()
		f := newDispatcherFixture(t)
		task := newPendingTask(t, "x", 1, domain.TaskTypeEmail)
		task.Priority = 7

		err := f.dispatcher.DispatchWith(context.Background(), task, &command.ParsedCommand{Attendees: []string{"a@x.com"}})

		assert.ErrorIs(t, err, domain.ErrInvalidPriority)
		assert.Empty(t, f.mailer.Emails())
		assert.Empty(t, f.listHistory(t))
	})
}

func TestDispatch_OtherTypeCompletesWithoutCollaborators(t *testing.T) {
	t.Parallel()

	for _, taskType := range []domain.TaskType{domain.TaskTypeOther, domain.ParseTaskType("reminder")} {
		f := newDispatcherFixture(t)
		task := newPendingTask(t, "water the plants", 2, taskType)

		require.NoError(t, f.dispatcher.Dispatch(context.Background(), task))

		assert.Equal(t, domain.TaskStatusCompleted, task.Status)
		assert.Empty(t, f.calendar.Meetings())
		assert.Empty(t, f.mailer.Emails())
		assert.Len(t, f.listHistory(t), 1)
	}
}

func TestDispatch_UnrecognizedTypeValueCompletes(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture(t)
	task := newPendingTask(t, "do something", 3, domain.TaskType("fax"))

	require.NoError(t, f.dispatcher.Dispatch(context.Background(), task))
	assert.Equal(t, domain.TaskStatusCompleted, task.Status)
	assert.Empty(t, f.calendar.Meetings())
	assert.Empty(t, f.mailer.Emails())
}

func TestDispatch_CollaboratorFailure(t *testing.T) {
	t.Parallel()

	t.Run("mail", func(t *testing.T) {
		t.Parallel()
		f := newDispatcherFixture(t)
		cause := errors.New("smtp unavailable")
		f.mailer.SendEmailFn = func(context.Context, string, string, string) error {
			return cause
		}
		task := newPendingTask(t, "Send email to a@x.com", 3, domain.TaskTypeEmail)

		err := f.dispatcher.Dispatch(context.Background(), task)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCollaboratorFailure)
		assert.ErrorIs(t, err, cause)

		var collabErr *CollaboratorError
		require.ErrorAs(t, err, &collabErr)
		assert.Equal(t, "mail", collabErr.Collaborator)

		assert.Equal(t, domain.TaskStatusFailed, task.Status)
		assert.Contains(t, task.Error, "smtp unavailable")

		hist := f.listHistory(t)
		require.Len(t, hist, 1)
		assert.Equal(t, domain.TaskStatusFailed, hist[0].Status)
	})

	t.Run("calendar", func(t *testing.T) {
		t.Parallel()
		f := newDispatcherFixture(t)
		f.calendar.ScheduleMeetingFn = func(context.Context, []string, time.Time, time.Duration, string) error {
			return errors.New("quota exceeded")
		}
		task := newPendingTask(t, "Schedule meeting about Plan", 3, domain.TaskTypeMeeting)

		err := f.dispatcher.Dispatch(context.Background(), task)

		var collabErr *CollaboratorError
		require.ErrorAs(t, err, &collabErr)
		assert.Equal(t, "calendar", collabErr.Collaborator)
		assert.Equal(t, domain.TaskStatusFailed, task.Status)
		assert.Len(t, f.listHistory(t), 1)
	})
}

func TestDispatch_InterpreterFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture(t)
	f.interpreter.ProcessCommandFn = func(context.Context, string) (string, error) {
		return "", errors.New("model offline")
	}
	task := newPendingTask(t, "Send email to a@x.com", 3, domain.TaskTypeEmail)

	require.NoError(t, f.dispatcher.Dispatch(context.Background(), task))

	assert.Equal(t, []string{"Send email to a@x.com"}, f.interpreter.Commands())
	assert.Len(t, f.mailer.Emails(), 1)
	assert.Equal(t, domain.TaskStatusCompleted, task.Status)
}

func TestDispatch_RejectsTerminalTask(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture(t)
	task := newPendingTask(t, "water the plants", 2, domain.TaskTypeOther)
	require.NoError(t, f.dispatcher.Dispatch(context.Background(), task))

	err := f.dispatcher.Dispatch(context.Background(), task)

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Len(t, f.listHistory(t), 1)
}

func TestDispatch_NilTask(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture(t)
	assert.ErrorIs(t, f.dispatcher.Dispatch(context.Background(), nil), ErrNilTask)
}

func TestDispatch_RecordsHistoryAfterCancellation(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	f.mailer.SendEmailFn = func(context.Context, string, string, string) error {
		cancel()
		return nil
	}
	task := newPendingTask(t, "Send email to a@x.com", 3, domain.TaskTypeEmail)

	require.NoError(t, f.dispatcher.Dispatch(ctx, task))
	assert.Len(t, f.listHistory(t), 1)
}

func TestDispatch_HistoryPreservesSubmissionOrder(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture(t)
	descs := []string{"first", "second", "third"}
	for i, desc := range descs {
		task := newPendingTask(t, desc, i+1, domain.TaskTypeOther)
		require.NoError(t, f.dispatcher.Dispatch(context.Background(), task))
	}

	hist := f.listHistory(t)
	require.Len(t, hist, len(descs))
	for i, desc := range descs {
		assert.Equal(t, desc, hist[i].Description)
	}
}

func TestCollaboratorError(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := &CollaboratorError{Collaborator: "mail", Op: "send email", Cause: cause}

	assert.Equal(t, "mail send email failed: boom", err.Error())
	assert.ErrorIs(t, err, ErrCollaboratorFailure)
	assert.ErrorIs(t, err, cause)
	assert.False(t, errors.Is(err, ErrNilTask))
}
