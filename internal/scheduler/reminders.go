package scheduler

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/phrazzld/agent-api/internal/domain"
)

const (
	// ReminderSubject is the subject of a meeting reminder email.
	ReminderSubject = "Meeting Reminder"

	// DefaultReminderWindow is how far ahead of a meeting the reminder fires.
	DefaultReminderWindow = 15 * time.Minute

	// DefaultDedupCacheSize bounds the set of remembered reminders.
	DefaultDedupCacheSize = 1024
)

// FormatReminder renders the reminder body for ev.
func FormatReminder(ev domain.CalendarEvent) string {
	return fmt.Sprintf("Reminder: You have a meeting '%s' starting at %s",
		ev.Title, ev.StartTime.UTC().Format(time.TimeOnly))
}

// InReminderWindow reports whether ev starts after now and no later than
// window from now.
func InReminderWindow(ev domain.CalendarEvent, now time.Time, window time.Duration) bool {
	until := ev.StartTime.Sub(now)
	return until > 0 && until <= window
}

// reminderLog remembers which reminders were already sent.
type reminderLog struct {
	sent *lru.Cache[string, time.Time]
}

func newReminderLog(size int) (*reminderLog, error) {
	if size <= 0 {
		size = DefaultDedupCacheSize
	}
	cache, err := lru.New[string, time.Time](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create reminder cache: %w", err)
	}
	return &reminderLog{sent: cache}, nil
}

func (r *reminderLog) seen(ev domain.CalendarEvent) bool {
	return r.sent.Contains(reminderKey(ev))
}

func (r *reminderLog) mark(ev domain.CalendarEvent, at time.Time) {
	r.sent.Add(reminderKey(ev), at)
}

func reminderKey(ev domain.CalendarEvent) string {
	return ev.Title + "|" + ev.StartTime.UTC().Format(time.RFC3339Nano)
}
