package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Schedule describes when a job fires, in UTC.
type Schedule struct {
	spec string
}

// Daily fires once a day at hour:minute UTC.
func Daily(hour, minute int) Schedule {
	return Schedule{spec: fmt.Sprintf("%d %d * * *", minute, hour)}
}

// Every fires at a fixed interval. Whole-minute intervals that divide an hour
// are aligned to the clock; anything else runs relative to Start.
func Every(d time.Duration) Schedule {
	if d >= time.Minute && d%time.Minute == 0 {
		if minutes := int(d / time.Minute); 60%minutes == 0 {
			if minutes == 1 {
				return Schedule{spec: "* * * * *"}
			}
			return Schedule{spec: fmt.Sprintf("*/%d * * * *", minutes)}
		}
	}
	return Schedule{spec: "@every " + d.String()}
}

// String returns the cron expression.
func (s Schedule) String() string {
	return s.spec
}

// Trigger fires registered functions according to their schedules.
type Trigger interface {
	// Register adds fn under name. It must be called before Start.
	Register(name string, schedule Schedule, fn func()) error

	// Start begins firing. It does not block.
	Start()

	// Stop halts firing. The returned context is done once every running
	// function has returned.
	Stop() context.Context
}

// CronTrigger is a Trigger backed by robfig/cron.
type CronTrigger struct {
	mu      sync.Mutex
	cron    *cron.Cron
	entries map[string]cron.EntryID
	logger  *slog.Logger
}

// NewCronTrigger creates a CronTrigger evaluating schedules in UTC.
func NewCronTrigger(logger *slog.Logger) *CronTrigger {
	logger = logger.With("component", "cron_trigger")
	cronLog := cronLogger{logger: logger}

	parser := cron.NewParser(
		cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
	)

	return &CronTrigger{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLocation(time.UTC),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.SkipIfStillRunning(cronLog)),
		),
		entries: make(map[string]cron.EntryID),
		logger:  logger,
	}
}

// Register implements Trigger.
func (t *CronTrigger) Register(name string, schedule Schedule, fn func()) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.entries[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, name)
	}

	id, err := t.cron.AddFunc(schedule.String(), fn)
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", schedule, name, err)
	}
	t.entries[name] = id

	t.logger.Debug("registered job", "job", name, "schedule", schedule.String())
	return nil
}

// Start implements Trigger.
func (t *CronTrigger) Start() {
	t.cron.Start()
}

// Stop implements Trigger.
func (t *CronTrigger) Stop() context.Context {
	return t.cron.Stop()
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append([]interface{}{"error", err}, keysAndValues...)...)
}

// ManualTrigger is a Trigger that fires only when Fire is called.
type ManualTrigger struct {
	mu        sync.Mutex
	jobs      map[string]func()
	schedules map[string]Schedule
	started   bool
	stopped   bool
	running   sync.WaitGroup
}

// NewManualTrigger creates an empty ManualTrigger.
func NewManualTrigger() *ManualTrigger {
	return &ManualTrigger{
		jobs:      make(map[string]func()),
		schedules: make(map[string]Schedule),
	}
}

// Register implements Trigger.
func (t *ManualTrigger) Register(name string, schedule Schedule, fn func()) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.jobs[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, name)
	}
	t.jobs[name] = fn
	t.schedules[name] = schedule
	return nil
}

// Start implements Trigger.
func (t *ManualTrigger) Start() {
	t.mu.Lock()
	t.started = true
	t.mu.Unlock()
}

// Stop implements Trigger.
func (t *ManualTrigger) Stop() context.Context {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		t.running.Wait()
		cancel()
	}()
	return ctx
}

// Fire runs the named job synchronously, as the schedule would. It reports
// false when the job is unknown or the trigger is not running.
func (t *ManualTrigger) Fire(name string) bool {
	t.mu.Lock()
	fn, ok := t.jobs[name]
	if !ok || !t.started || t.stopped {
		t.mu.Unlock()
		return false
	}
	t.running.Add(1)
	t.mu.Unlock()

	defer t.running.Done()
	fn()
	return true
}

// Schedule returns the schedule registered under name.
func (t *ManualTrigger) Schedule(name string) (Schedule, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.schedules[name]
	return s, ok
}
