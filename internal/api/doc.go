// Package api exposes the task engine over HTTP. Handlers translate JSON
// requests into service calls and map service errors onto status codes
// without leaking internal details.
package api
