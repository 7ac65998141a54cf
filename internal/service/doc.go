// Package service contains the application use cases exposed to delivery
// mechanisms such as the HTTP API.
//
// AgentService is the single boundary contract of the engine: it turns a
// submission into a domain.Task, hands it to the task dispatcher, exposes the
// task history and the language interpreter, and controls the lifecycle of
// the recurring scheduler. It depends only on interfaces, so the concrete
// collaborators (memory or PostgreSQL history, cron or manual trigger, real or
// mock adapters) are chosen by the caller.
package service
