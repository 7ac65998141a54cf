// Package config handles configuration loading, parsing, and validation.
//
// Values come from, in increasing precedence: built-in defaults, an optional
// config.yaml in the working directory, an optional .env file, and AGENT_
// prefixed environment variables (AGENT_SCHEDULER_DIGEST_HOUR maps to
// scheduler.digest_hour). The result is validated before it is returned.
package config
