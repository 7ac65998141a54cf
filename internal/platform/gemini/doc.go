// Package gemini provides the language interpreter backed by Google's Gemini
// API through the google.golang.org/genai client.
//
// The interpreter wraps a free-text command in a short instruction prompt and
// returns the model's text answer. Transient API failures are retried with
// exponential backoff and jitter; blocked or empty responses are returned
// immediately. Without an API key the interpreter runs offline and echoes the
// command back, so the rest of the system works in development.
package gemini
