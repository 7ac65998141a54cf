// Package scheduler runs the recurring background jobs: a daily digest of the
// highest-priority pending tasks and a frequent check that reminds the user of
// meetings about to start.
//
// Jobs are registered on a Trigger. CronTrigger drives them from wall-clock
// time in production; ManualTrigger fires them on demand in tests. Every job
// skips a firing while a previous one is still running, and errors or panics
// inside a job are logged without stopping later firings.
package scheduler
