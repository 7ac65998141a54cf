package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/agent-api/internal/domain"
	"github.com/phrazzld/agent-api/internal/history"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// HistoryStore implements history.Store on the task_history table.
type HistoryStore struct {
	db     DBTX
	logger *slog.Logger
}

var _ history.Store = (*HistoryStore)(nil)

// NewHistoryStore creates a HistoryStore.
func NewHistoryStore(db DBTX, logger *slog.Logger) (*HistoryStore, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &HistoryStore{db: db, logger: logger.With("component", "history_store")}, nil
}

// Append inserts a task snapshot. Rows are ordered by their sequence number
// and a task ID is recorded at most once; a repeat fails with ErrDuplicate.
func (s *HistoryStore) Append(ctx context.Context, task domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", history.ErrInvalidTask, err)
	}

	var finishedAt sql.NullTime
	if !task.FinishedAt.IsZero() {
		finishedAt = sql.NullTime{Time: task.FinishedAt.UTC(), Valid: true}
	}

	query := `
		INSERT INTO task_history (id, description, priority, type, status, error, created_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	result, err := s.db.ExecContext(ctx, query,
		task.ID,
		task.Description,
		task.Priority,
		string(task.Type),
		string(task.Status),
		task.Error,
		task.CreatedAt.UTC(),
		finishedAt,
	)
	if err != nil {
		log := s.logger.With("task_id", task.ID, "status", task.Status, "error", err)
		switch {
		case IsUniqueViolation(err):
			log.WarnContext(ctx, "task already recorded in history")
		case IsCheckConstraintViolation(err):
			log.WarnContext(ctx, "task rejected by task_history constraint")
		default:
			log.ErrorContext(ctx, "failed to append task history")
		}
		return fmt.Errorf("failed to append task history: %w", MapError(err))
	}

	if err := CheckRowsAffected(result, "task history row"); err != nil {
		return fmt.Errorf("failed to append task history: %w", err)
	}

	return nil
}

// List returns every recorded snapshot in insertion order.
func (s *HistoryStore) List(ctx context.Context) ([]domain.Task, error) {
	query := `
		SELECT id, description, priority, type, status, error, created_at, finished_at
		FROM task_history
		ORDER BY seq ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list task history: %w", MapError(err))
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		var (
			t          domain.Task
			taskType   string
			status     string
			finishedAt sql.NullTime
		)
		if err := rows.Scan(
			&t.ID,
			&t.Description,
			&t.Priority,
			&taskType,
			&status,
			&t.Error,
			&t.CreatedAt,
			&finishedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan task history row: %w", err)
		}
		t.Type = domain.TaskType(taskType)
		t.Status = domain.TaskStatus(status)
		t.CreatedAt = t.CreatedAt.UTC()
		if finishedAt.Valid {
			t.FinishedAt = finishedAt.Time.UTC()
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate task history: %w", err)
	}

	return tasks, nil
}
