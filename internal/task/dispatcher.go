package task

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/phrazzld/agent-api/internal/command"
	"github.com/phrazzld/agent-api/internal/domain"
	"github.com/phrazzld/agent-api/internal/history"
	"github.com/phrazzld/agent-api/internal/platform/observability"
)

// Defaults holds the values substituted for fields the command parser
// could not extract from a description.
type Defaults struct {
	// Attendee is the single placeholder invitee for meetings without one.
	Attendee string

	// MeetingStartOffset is added to now when no start time was found.
	MeetingStartOffset time.Duration

	// MeetingDuration is used when no duration was found.
	MeetingDuration time.Duration

	// Recipient is the fallback email address.
	Recipient string

	// Body is the fallback email body.
	Body string
}

// DefaultDefaults returns the stock fallback values.
func DefaultDefaults() Defaults {
	return Defaults{
		Attendee:           "example@email.com",
		MeetingStartOffset: time.Hour,
		MeetingDuration:    30 * time.Minute,
		Recipient:          "remantsega@gmail.com",
		Body:               "This is an automated email from the AI Agent.",
	}
}

// Option customizes a Dispatcher.
type Option func(*Dispatcher)

// WithClock sets the clock used for default start times.
func WithClock(c clockwork.Clock) Option {
	return func(d *Dispatcher) {
		d.clock = c
	}
}

// WithDefaults overrides the fallback values. Zero fields keep the stock value.
func WithDefaults(defaults Defaults) Option {
	return func(d *Dispatcher) {
		if defaults.Attendee != "" {
			d.defaults.Attendee = defaults.Attendee
		}
		if defaults.MeetingStartOffset > 0 {
			d.defaults.MeetingStartOffset = defaults.MeetingStartOffset
		}
		if defaults.MeetingDuration > 0 {
			d.defaults.MeetingDuration = defaults.MeetingDuration
		}
		if defaults.Recipient != "" {
			d.defaults.Recipient = defaults.Recipient
		}
		if defaults.Body != "" {
			d.defaults.Body = defaults.Body
		}
	}
}

// WithMetrics records dispatch outcomes on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// WithInterpreter sets the interpreter consulted for audit logging.
func WithInterpreter(i Interpreter) Option {
	return func(d *Dispatcher) {
		d.interpreter = i
	}
}

// Dispatcher routes tasks to their type-specific action and records the outcome.
type Dispatcher struct {
	calendar    Calendar
	mailer      Mailer
	interpreter Interpreter
	history     history.Store
	clock       clockwork.Clock
	defaults    Defaults
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(
	calendar Calendar,
	mailer Mailer,
	store history.Store,
	logger *slog.Logger,
	opts ...Option,
) (*Dispatcher, error) {
	if calendar == nil {
		return nil, ErrNilCalendar
	}
	if mailer == nil {
		return nil, ErrNilMailer
	}
	if store == nil {
		return nil, ErrNilHistory
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	d := &Dispatcher{
		calendar: calendar,
		mailer:   mailer,
		history:  store,
		clock:    clockwork.NewRealClock(),
		defaults: DefaultDefaults(),
		logger:   logger.With("component", "task_dispatcher"),
	}
	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

// handler performs the type-specific action for a task.
type handler func(ctx context.Context, log *slog.Logger, t *domain.Task, fields command.ParsedCommand) error

// Dispatch validates t, performs its action and moves it to a terminal status.
// The action's fields are parsed from the task description.
func (d *Dispatcher) Dispatch(ctx context.Context, t *domain.Task) error {
	return d.DispatchWith(ctx, t, nil)
}

// DispatchWith is Dispatch with the action's fields supplied by the caller.
// A nil fields parses them from the task description; a non-nil fields is
// used as is, with defaults filling only its zero values.
//
// An out-of-range priority is rejected with domain.ErrInvalidPriority before
// any collaborator is called or history is touched. Otherwise the task is
// appended to history whatever the outcome, and a collaborator failure is
// returned as a *CollaboratorError after the task has been marked failed.
func (d *Dispatcher) DispatchWith(ctx context.Context, t *domain.Task, fields *command.ParsedCommand) error {
	if t == nil {
		return ErrNilTask
	}
	if err := domain.ValidatePriority(t.Priority); err != nil {
		return err
	}
	if t.Status != domain.TaskStatusPending {
		return fmt.Errorf("%w: task %s is already %s", domain.ErrInvalidTransition, t.ID, t.Status)
	}

	started := time.Now()
	log := d.logger.With(
		"task_id", t.ID,
		"task_type", t.Type,
		"priority", t.Priority,
	)
	log.InfoContext(ctx, "processing task", "structured", fields != nil)

	d.interpret(ctx, log, t)

	var resolved command.ParsedCommand
	if fields != nil {
		resolved = *fields
	} else {
		resolved = command.Parse(t.Description, d.clock.Now().UTC())
	}

	actionErr := d.handlerFor(t.Type)(ctx, log, t, resolved)
	if actionErr != nil {
		_ = t.Fail(actionErr)
		log.ErrorContext(ctx, "task failed", "error", actionErr)
	} else {
		_ = t.Complete()
		log.InfoContext(ctx, "task completed")
	}

	// The record must survive a caller that has already gone away.
	if err := d.history.Append(context.WithoutCancel(ctx), *t); err != nil {
		log.ErrorContext(ctx, "failed to record task history", "error", err)
		if actionErr == nil {
			return fmt.Errorf("failed to record task history: %w", err)
		}
	}

	d.metrics.RecordDispatch(ctx, string(t.Type), string(t.Status), time.Since(started))

	return actionErr
}

// interpret passes the description to the interpreter for the audit log.
// Its result never gates dispatch and its failure is not fatal.
func (d *Dispatcher) interpret(ctx context.Context, log *slog.Logger, t *domain.Task) {
	if d.interpreter == nil {
		return
	}

	response, err := d.interpreter.ProcessCommand(ctx, t.Description)
	if err != nil {
		log.WarnContext(ctx, "interpreter failed, continuing dispatch", "error", err)
		return
	}
	log.InfoContext(ctx, "interpreter response", "response", response)
}

// handlerFor selects the action for a task type.
func (d *Dispatcher) handlerFor(taskType domain.TaskType) handler {
	switch taskType {
	case domain.TaskTypeMeeting:
		return d.handleMeeting
	case domain.TaskTypeEmail:
		return d.handleEmail
	case domain.TaskTypeOther:
		return d.handleOther
	default:
		return d.handleOther
	}
}

func (d *Dispatcher) handleMeeting(
	ctx context.Context,
	log *slog.Logger,
	t *domain.Task,
	parsed command.ParsedCommand,
) error {
	attendees := parsed.Attendees
	if len(attendees) == 0 {
		attendees = []string{d.defaults.Attendee}
	}

	start := d.clock.Now().UTC().Add(d.defaults.MeetingStartOffset)
	if parsed.StartTime != nil {
		start = *parsed.StartTime
	}

	duration := d.defaults.MeetingDuration
	if parsed.Duration != nil {
		duration = *parsed.Duration
	}

	title := parsed.Title
	if title == "" {
		title = fmt.Sprintf("Meeting (Priority: %d)", t.Priority)
	}

	log.DebugContext(ctx, "scheduling meeting",
		"attendees", strings.Join(attendees, ","),
		"start", start,
		"duration", duration,
		"title", title,
		"time_phrase", parsed.TimePhrase)

	if err := d.calendar.ScheduleMeeting(ctx, attendees, start, duration, title); err != nil {
		return &CollaboratorError{Collaborator: "calendar", Op: "schedule meeting", Cause: err}
	}
	return nil
}

// handleEmail sends one message per recipient and stops at the first failure.
func (d *Dispatcher) handleEmail(
	ctx context.Context,
	log *slog.Logger,
	t *domain.Task,
	parsed command.ParsedCommand,
) error {
	recipients := parsed.Attendees
	if len(recipients) == 0 && parsed.To != "" {
		recipients = []string{parsed.To}
	}
	if len(recipients) == 0 {
		recipients = []string{d.defaults.Recipient}
	}

	subject := parsed.Subject
	if subject == "" {
		subject = fmt.Sprintf("Email (Priority: %d)", t.Priority)
	}

	body := parsed.Body
	if body == "" {
		body = d.defaults.Body
	}

	for _, to := range recipients {
		log.DebugContext(ctx, "sending email", "to", to, "subject", subject)

		if err := d.mailer.SendEmail(ctx, to, subject, body); err != nil {
			return &CollaboratorError{Collaborator: "mail", Op: "send email", Cause: err}
		}
	}
	return nil
}

func (d *Dispatcher) handleOther(ctx context.Context, log *slog.Logger, t *domain.Task, _ command.ParsedCommand) error {
	log.InfoContext(ctx, "no action for task type, completing", "raw_type", string(t.Type))
	return nil
}
