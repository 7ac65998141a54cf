// Package postgres provides a PostgreSQL-backed history.Store together with
// the embedded goose migrations that create its schema.
package postgres
