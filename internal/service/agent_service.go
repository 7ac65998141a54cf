package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/phrazzld/agent-api/internal/command"
	"github.com/phrazzld/agent-api/internal/domain"
)

// SubmitRequest is a task submission.
type SubmitRequest struct {
	Description string
	Priority    int
	// Type is trimmed and lower-cased; unknown values become "other".
	Type string
	// Fields, when set, are the action's fields. Description is then only
	// recorded and never parsed.
	Fields *command.ParsedCommand
}

// TaskDispatcher performs a task and records its outcome.
type TaskDispatcher interface {
	DispatchWith(ctx context.Context, t *domain.Task, fields *command.ParsedCommand) error
}

// HistoryReader lists recorded tasks.
type HistoryReader interface {
	List(ctx context.Context) ([]domain.Task, error)
}

// Interpreter answers free-text commands.
type Interpreter interface {
	ProcessCommand(ctx context.Context, text string) (string, error)
}

// Scheduler runs the recurring jobs.
type Scheduler interface {
	Start(ctx context.Context) error
	Stop()
}

// AgentService is the boundary contract of the task engine.
type AgentService interface {
	// Submit creates a task and dispatches it synchronously.
	//
	// An out-of-range priority fails with domain.ErrInvalidPriority and no
	// task is returned. A collaborator failure returns the failed task along
	// with an error matching task.ErrCollaboratorFailure.
	Submit(ctx context.Context, req SubmitRequest) (*domain.Task, error)

	// History returns every dispatched task in submission order.
	History(ctx context.Context) ([]domain.Task, error)

	// ProcessCommand passes text to the language interpreter.
	ProcessCommand(ctx context.Context, text string) (string, error)

	// StartScheduler starts the recurring jobs.
	StartScheduler(ctx context.Context) error

	// StopScheduler stops the recurring jobs and waits for running ones.
	StopScheduler()
}

type agentServiceImpl struct {
	dispatcher  TaskDispatcher
	history     HistoryReader
	interpreter Interpreter
	scheduler   Scheduler
	logger      *slog.Logger
}

// NewAgentService creates an AgentService. scheduler may be nil, in which
// case the scheduler operations are no-ops.
func NewAgentService(
	dispatcher TaskDispatcher,
	history HistoryReader,
	interpreter Interpreter,
	scheduler Scheduler,
	logger *slog.Logger,
) (AgentService, error) {
	if dispatcher == nil {
		return nil, ErrNilDispatcher
	}
	if history == nil {
		return nil, ErrNilHistory
	}
	if interpreter == nil {
		return nil, ErrNilInterpreter
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &agentServiceImpl{
		dispatcher:  dispatcher,
		history:     history,
		interpreter: interpreter,
		scheduler:   scheduler,
		logger:      logger.With("component", "agent_service"),
	}, nil
}

// Submit implements AgentService.
func (s *agentServiceImpl) Submit(ctx context.Context, req SubmitRequest) (*domain.Task, error) {
	if err := domain.ValidatePriority(req.Priority); err != nil {
		s.logger.WarnContext(ctx, "rejected task submission",
			"error", err,
			"priority", req.Priority)
		return nil, err
	}

	t, err := domain.NewTask(req.Description, req.Priority, domain.ParseTaskType(req.Type))
	if err != nil {
		return nil, NewServiceError("submit", "invalid task", err)
	}

	if err := s.dispatcher.DispatchWith(ctx, t, req.Fields); err != nil {
		s.logger.ErrorContext(ctx, "task dispatch failed",
			"error", err,
			"task_id", t.ID,
			"status", t.Status)
		if t.Status.IsTerminal() {
			return t, NewServiceError("submit", "task failed", err)
		}
		return nil, NewServiceError("submit", "failed to dispatch task", err)
	}

	return t, nil
}

// History implements AgentService.
func (s *agentServiceImpl) History(ctx context.Context) ([]domain.Task, error) {
	tasks, err := s.history.List(ctx)
	if err != nil {
		return nil, NewServiceError("history", "failed to list task history", err)
	}
	return tasks, nil
}

// ProcessCommand implements AgentService.
func (s *agentServiceImpl) ProcessCommand(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyCommand
	}

	response, err := s.interpreter.ProcessCommand(ctx, text)
	if err != nil {
		return "", NewServiceError("process_command", "interpreter failed", err)
	}
	return response, nil
}

// StartScheduler implements AgentService.
func (s *agentServiceImpl) StartScheduler(ctx context.Context) error {
	if s.scheduler == nil {
		s.logger.InfoContext(ctx, "scheduler disabled")
		return nil
	}
	if err := s.scheduler.Start(ctx); err != nil {
		return NewServiceError("start_scheduler", "failed to start scheduler", err)
	}
	return nil
}

// StopScheduler implements AgentService.
func (s *agentServiceImpl) StopScheduler() {
	if s.scheduler == nil {
		return
	}
	s.scheduler.Stop()
}
