// Package task drives a submitted task to completion. The Dispatcher
// validates the task, derives structured parameters from its description,
// invokes the calendar or mail collaborator matching its type, records the
// final status transition and appends the outcome to the task history.
//
// Collaborators are consumed through the narrow Calendar, Mailer and
// Interpreter interfaces; their implementations live under
// internal/platform.
package task
