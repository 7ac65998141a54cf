// Package history keeps the ordered, append-only record of every task that
// went through dispatch. It is the source of truth for the scheduler's
// daily digest. Implementations must be safe for concurrent use and must
// return snapshots, never live references to their internal state.
package history
