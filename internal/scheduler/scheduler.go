package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/phrazzld/agent-api/internal/domain"
	"github.com/phrazzld/agent-api/internal/history"
	"github.com/phrazzld/agent-api/internal/platform/observability"
)

// Job names.
const (
	JobDigest       = "daily_digest"
	JobMeetingCheck = "meeting_check"
)

// EventSource lists upcoming calendar events.
type EventSource interface {
	UpcomingEvents(ctx context.Context) ([]domain.CalendarEvent, error)
}

// Mailer sends email.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// Config controls the recurring jobs.
type Config struct {
	// DigestRecipient receives the daily digest.
	DigestRecipient string

	// DigestHour and DigestMinute set the UTC time of the daily digest.
	DigestHour   int
	DigestMinute int

	// DigestSize caps the number of tasks listed in the digest.
	DigestSize int

	// MeetingCheckInterval is the period of the meeting check.
	MeetingCheckInterval time.Duration

	// ReminderWindow is how far ahead a meeting must start to be reminded.
	ReminderWindow time.Duration

	// ReminderDedup sends at most one reminder per meeting when true.
	// When false every check inside the window sends one.
	ReminderDedup bool

	// DedupCacheSize bounds the remembered reminders.
	DedupCacheSize int
}

// DefaultConfig returns the standard schedule: a digest at 09:00 UTC and a
// meeting check every minute.
func DefaultConfig() Config {
	return Config{
		DigestRecipient:      "user@example.com",
		DigestHour:           9,
		DigestMinute:         0,
		DigestSize:           DefaultDigestSize,
		MeetingCheckInterval: time.Minute,
		ReminderWindow:       DefaultReminderWindow,
		ReminderDedup:        true,
		DedupCacheSize:       DefaultDedupCacheSize,
	}
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithTrigger replaces the default CronTrigger.
func WithTrigger(t Trigger) Option {
	return func(s *Scheduler) {
		s.trigger = t
	}
}

// WithClock sets the clock used by the meeting check.
func WithClock(c clockwork.Clock) Option {
	return func(s *Scheduler) {
		s.clock = c
	}
}

// WithMetrics records job runs and reminders on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Scheduler) {
		s.metrics = m
	}
}

// job is a registered recurring body with its overlap guard.
type job struct {
	name    string
	run     func(ctx context.Context) error
	running atomic.Bool
}

// Scheduler owns the recurring digest and meeting-check jobs.
type Scheduler struct {
	cfg       Config
	history   history.Store
	events    EventSource
	mailer    Mailer
	trigger   Trigger
	clock     clockwork.Clock
	metrics   *observability.Metrics
	logger    *slog.Logger
	reminders *reminderLog

	digest       *job
	meetingCheck *job

	mu       sync.Mutex
	started  bool
	stopped  bool
	inflight sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
}

// New creates a Scheduler. Zero-valued Config fields take their defaults.
func New(
	cfg Config,
	store history.Store,
	events EventSource,
	mailer Mailer,
	logger *slog.Logger,
	opts ...Option,
) (*Scheduler, error) {
	if store == nil {
		return nil, ErrNilHistory
	}
	if events == nil {
		return nil, ErrNilEvents
	}
	if mailer == nil {
		return nil, ErrNilMailer
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	cfg = withDefaults(cfg)

	reminders, err := newReminderLog(cfg.DedupCacheSize)
	if err != nil {
		return nil, err
	}

	s := &Scheduler{
		cfg:       cfg,
		history:   store,
		events:    events,
		mailer:    mailer,
		clock:     clockwork.NewRealClock(),
		logger:    logger.With("component", "scheduler"),
		reminders: reminders,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.trigger == nil {
		s.trigger = NewCronTrigger(logger)
	}

	s.digest = &job{name: JobDigest, run: s.sendDigest}
	s.meetingCheck = &job{name: JobMeetingCheck, run: s.checkMeetings}

	return s, nil
}

func withDefaults(cfg Config) Config {
	def := DefaultConfig()
	if cfg.DigestRecipient == "" {
		cfg.DigestRecipient = def.DigestRecipient
	}
	if cfg.DigestSize <= 0 {
		cfg.DigestSize = def.DigestSize
	}
	if cfg.MeetingCheckInterval <= 0 {
		cfg.MeetingCheckInterval = def.MeetingCheckInterval
	}
	if cfg.ReminderWindow <= 0 {
		cfg.ReminderWindow = def.ReminderWindow
	}
	if cfg.DedupCacheSize <= 0 {
		cfg.DedupCacheSize = def.DedupCacheSize
	}
	return cfg
}

// Start registers both jobs, starts the trigger and runs each job once.
//
// Jobs run with a context detached from ctx's cancellation; Stop is the only
// way to end them.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrStopped
	}
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}

	s.ctx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))

	digestSchedule := Daily(s.cfg.DigestHour, s.cfg.DigestMinute)
	checkSchedule := Every(s.cfg.MeetingCheckInterval)

	if err := s.trigger.Register(JobDigest, digestSchedule, func() { s.runJob(s.digest) }); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to register %s: %w", JobDigest, err)
	}
	if err := s.trigger.Register(JobMeetingCheck, checkSchedule, func() { s.runJob(s.meetingCheck) }); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to register %s: %w", JobMeetingCheck, err)
	}

	s.trigger.Start()
	s.started = true
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "scheduler started",
		"digest_schedule", digestSchedule.String(),
		"meeting_check_schedule", checkSchedule.String(),
		"reminder_dedup", s.cfg.ReminderDedup)

	s.runJob(s.digest)
	s.runJob(s.meetingCheck)

	return nil
}

// Stop halts the trigger and waits for running jobs. No job body starts
// after Stop returns. Calling Stop more than once is safe.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	started := s.started
	s.mu.Unlock()

	s.logger.Info("scheduler stopping")

	if started {
		<-s.trigger.Stop().Done()
	}
	s.inflight.Wait()

	if s.cancel != nil {
		s.cancel()
	}

	s.logger.Info("scheduler stopped")
}

// runJob executes j unless the scheduler is stopped or j is already running.
// Errors and panics are logged and never propagate.
func (s *Scheduler) runJob(j *job) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.inflight.Add(1)
	ctx := s.ctx
	s.mu.Unlock()
	defer s.inflight.Done()

	log := s.logger.With("job", j.name)

	if !j.running.CompareAndSwap(false, true) {
		log.WarnContext(ctx, "previous run still in progress, skipping")
		s.metrics.RecordJobRun(ctx, j.name, "skipped")
		return
	}
	defer j.running.Store(false)

	defer func() {
		if r := recover(); r != nil {
			log.ErrorContext(ctx, "job panicked", "panic", fmt.Sprint(r))
			s.metrics.RecordJobRun(ctx, j.name, "panic")
		}
	}()

	started := time.Now()
	if err := j.run(ctx); err != nil {
		log.ErrorContext(ctx, "job failed", "error", err, "duration", time.Since(started))
		s.metrics.RecordJobRun(ctx, j.name, "error")
		return
	}

	log.DebugContext(ctx, "job completed", "duration", time.Since(started))
	s.metrics.RecordJobRun(ctx, j.name, "ok")
}

// sendDigest emails the highest-priority pending tasks.
func (s *Scheduler) sendDigest(ctx context.Context) error {
	tasks, err := s.history.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list task history: %w", err)
	}

	top := TopPending(tasks, s.cfg.DigestSize)
	body := FormatDigest(top)

	if err := s.mailer.SendEmail(ctx, s.cfg.DigestRecipient, DigestSubject, body); err != nil {
		return fmt.Errorf("failed to send digest: %w", err)
	}

	s.metrics.RecordReminder(ctx, "digest")
	s.logger.InfoContext(ctx, "daily digest sent",
		"recipient", s.cfg.DigestRecipient,
		"tasks", len(top))
	return nil
}

// checkMeetings reminds the user of every meeting starting within the window.
func (s *Scheduler) checkMeetings(ctx context.Context) error {
	events, err := s.events.UpcomingEvents(ctx)
	if err != nil {
		return fmt.Errorf("failed to list upcoming events: %w", err)
	}

	now := s.clock.Now().UTC()
	var errs []error
	for _, ev := range events {
		if !InReminderWindow(ev, now, s.cfg.ReminderWindow) {
			continue
		}
		if s.cfg.ReminderDedup && s.reminders.seen(ev) {
			continue
		}

		if err := s.mailer.SendEmail(ctx, s.cfg.DigestRecipient, ReminderSubject, FormatReminder(ev)); err != nil {
			errs = append(errs, fmt.Errorf("failed to send reminder for %q: %w", ev.Title, err))
			continue
		}

		if s.cfg.ReminderDedup {
			s.reminders.mark(ev, now)
		}
		s.metrics.RecordReminder(ctx, "meeting")
		s.logger.InfoContext(ctx, "meeting reminder sent",
			"title", ev.Title,
			"start", ev.StartTime)
	}

	return errors.Join(errs...)
}
