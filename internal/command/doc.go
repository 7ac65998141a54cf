// Package command derives structured parameters (attendees, start time,
// duration, title, recipient, subject, body) from the free-text description
// of a task. Extraction is keyword pattern matching, not language
// understanding: each field is matched independently and left absent when
// its anchor is missing.
package command
