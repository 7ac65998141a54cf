package command

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultStartOffset is the start time resolved whenever a time phrase such
// as "at 10:00 AM" is present. The literal clock value is not parsed; any
// matching phrase resolves to now plus this offset.
const DefaultStartOffset = time.Hour

// ParsedCommand holds the optional fields extracted from a description.
// Zero values mean the field was not found.
type ParsedCommand struct {
	Attendees []string
	StartTime *time.Time
	Duration  *time.Duration
	Title     string
	To        string
	Subject   string
	Body      string

	// TimePhrase is the raw time text that caused StartTime to be set.
	TimePhrase string
}

var (
	recipientRe = regexp.MustCompile(`(?i)\bto\s+(\S+)`)
	timeRe      = regexp.MustCompile(`(?i)\bat\s+(\d{1,2}:\d{2}(?:\s*(?:AM|PM))?)`)
	durationRe  = regexp.MustCompile(`(?i)\bfor\s+(\d+)\s+minutes?\b`)
	titleRe     = regexp.MustCompile(`(?i)\bmeeting\s+about\s+(.+)`)
	subjectRe   = regexp.MustCompile(`(?i)\bsubject\s+(.+)`)
	bodyRe      = regexp.MustCompile(`(?i)\bbody\s+(.+)`)

	// titleStopRe marks where a following clause begins inside a title capture.
	titleStopRe = regexp.MustCompile(
		`(?i)\s+(?:to\s+\S|at\s+\d{1,2}:\d{2}|for\s+\d+\s+minutes?\b|subject\s|body\s)`,
	)
	// subjectStopRe marks where the body clause begins inside a subject capture.
	subjectStopRe = regexp.MustCompile(`(?i)\s+(?:and\s+)?body\s`)
)

// Parse extracts a ParsedCommand from description. now is the reference
// instant for the default start time.
func Parse(description string, now time.Time) ParsedCommand {
	var cmd ParsedCommand

	if m := recipientRe.FindStringSubmatch(description); m != nil {
		cmd.To = m[1]
		cmd.Attendees = splitRecipients(m[1])
	}

	if m := timeRe.FindStringSubmatch(description); m != nil {
		start := now.Add(DefaultStartOffset)
		cmd.StartTime = &start
		cmd.TimePhrase = strings.TrimSpace(m[1])
	}

	if m := durationRe.FindStringSubmatch(description); m != nil {
		if minutes, err := strconv.Atoi(m[1]); err == nil {
			d := time.Duration(minutes) * time.Minute
			cmd.Duration = &d
		}
	}

	if m := titleRe.FindStringSubmatch(description); m != nil {
		cmd.Title = cutAt(m[1], titleStopRe)
	}

	if m := subjectRe.FindStringSubmatch(description); m != nil {
		cmd.Subject = cutAt(m[1], subjectStopRe)
	}

	if m := bodyRe.FindStringSubmatch(description); m != nil {
		cmd.Body = unquote(strings.TrimSpace(m[1]))
	}

	return cmd
}

// splitRecipients splits a comma-separated recipient token, dropping empties.
func splitRecipients(token string) []string {
	parts := strings.Split(token, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// cutAt truncates s where stop first matches, then trims space and quotes.
func cutAt(s string, stop *regexp.Regexp) string {
	if loc := stop.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	return unquote(strings.TrimSpace(s))
}

// unquote strips one pair of matching surrounding quotes.
func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
