package command

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var refTime = time.Date(2025, 8, 10, 8, 30, 0, 0, time.UTC)

func TestParseMeetingDescription(t *testing.T) {
	t.Parallel()

	cmd := Parse("Schedule meeting about Budget Review to team@x.com at 10:00 AM for 45 minutes", refTime)

	assert.Equal(t, []string{"team@x.com"}, cmd.Attendees)
	assert.Equal(t, "team@x.com", cmd.To)
	require.NotNil(t, cmd.Duration)
	assert.Equal(t, 45*time.Minute, *cmd.Duration)
	assert.Equal(t, "Budget Review", cmd.Title)

	// The literal 10:00 AM is not honoured; the time phrase resolves to the default offset.
	require.NotNil(t, cmd.StartTime)
	assert.Equal(t, refTime.Add(DefaultStartOffset), *cmd.StartTime)
	assert.Equal(t, "10:00 AM", cmd.TimePhrase)
}

func TestParseTimePhraseAlwaysDefaults(t *testing.T) {
	t.Parallel()

	for _, phrase := range []string{"at 9:15", "at 11:45 PM", "AT 07:00am"} {
		cmd := Parse("call the bank "+phrase, refTime)
		require.NotNil(t, cmd.StartTime, phrase)
		assert.Equal(t, refTime.Add(time.Hour), *cmd.StartTime, phrase)
	}

	cmd := Parse("call the bank later", refTime)
	assert.Nil(t, cmd.StartTime)
	assert.Empty(t, cmd.TimePhrase)
}

func TestParseMultipleAttendees(t *testing.T) {
	t.Parallel()

	cmd := Parse("invite to alice@x.com,bob@x.com, now", refTime)
	assert.Equal(t, []string{"alice@x.com", "bob@x.com"}, cmd.Attendees)
	assert.Equal(t, "alice@x.com,bob@x.com,", cmd.To)
}

func TestParseEmailDescription(t *testing.T) {
	t.Parallel()

	cmd := Parse(`Send email to bob@example.com with subject "Quarterly numbers" and body "Please review the attached."`, refTime)

	assert.Equal(t, "bob@example.com", cmd.To)
	assert.Equal(t, "Quarterly numbers", cmd.Subject)
	assert.Equal(t, "Please review the attached.", cmd.Body)
	assert.Empty(t, cmd.Title)
	assert.Nil(t, cmd.Duration)
}

func TestParseSubjectAndBodyUnquoted(t *testing.T) {
	t.Parallel()

	cmd := Parse("subject Lunch plans body see you at noon", refTime)
	assert.Equal(t, "Lunch plans", cmd.Subject)
	assert.Equal(t, "see you at noon", cmd.Body)
}

func TestParseCaseInsensitiveAnchors(t *testing.T) {
	t.Parallel()

	cmd := Parse("MEETING ABOUT Roadmap FOR 30 MINUTES", refTime)
	assert.Equal(t, "Roadmap", cmd.Title)
	require.NotNil(t, cmd.Duration)
	assert.Equal(t, 30*time.Minute, *cmd.Duration)
}

func TestParseFirstMatchWins(t *testing.T) {
	t.Parallel()

	cmd := Parse("forward to first@x.com then to second@x.com for 10 minutes for 20 minutes", refTime)
	assert.Equal(t, "first@x.com", cmd.To)
	require.NotNil(t, cmd.Duration)
	assert.Equal(t, 10*time.Minute, *cmd.Duration)
}

func TestParseRequiresWordBoundary(t *testing.T) {
	t.Parallel()

	// "into" and "chat" must not be read as "to" / "at".
	cmd := Parse("put notes into folder and chat 10:00", refTime)
	assert.Empty(t, cmd.To)
	assert.Nil(t, cmd.Attendees)
	assert.Nil(t, cmd.StartTime)
}

func TestParseNoMatches(t *testing.T) {
	t.Parallel()

	cmd := Parse("water the plants", refTime)
	assert.Equal(t, ParsedCommand{}, cmd)
}

func TestParseTitleRunsToEndOfLine(t *testing.T) {
	t.Parallel()

	cmd := Parse("meeting about Hiring pipeline\nsecond line", refTime)
	assert.Equal(t, "Hiring pipeline", cmd.Title)
}
