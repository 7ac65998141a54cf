package scheduler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/phrazzld/agent-api/internal/domain"
)

const (
	// DigestSubject is the subject of the daily digest email.
	DigestSubject = "Daily Task Reminder"

	// DefaultDigestSize is the number of tasks listed in a digest.
	DefaultDigestSize = 5

	digestHeader   = "Here are your top priority tasks for today:"
	digestNoneLine = "No pending tasks"
)

// TopPending returns up to limit pending tasks ordered by priority, highest
// first. Ties keep their history order.
func TopPending(tasks []domain.Task, limit int) []domain.Task {
	pending := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Status == domain.TaskStatusPending {
			pending = append(pending, t)
		}
	}

	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].Priority > pending[j].Priority
	})

	if limit >= 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending
}

// FormatDigest renders the digest body for the given tasks.
func FormatDigest(tasks []domain.Task) string {
	var b strings.Builder
	b.WriteString(digestHeader)
	b.WriteString("\n")

	if len(tasks) == 0 {
		b.WriteString(digestNoneLine)
		return b.String()
	}

	lines := make([]string, len(tasks))
	for i, t := range tasks {
		lines[i] = fmt.Sprintf("%d. %s (Priority: %d)", i+1, t.Description, t.Priority)
	}
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}
