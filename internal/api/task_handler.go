package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/phrazzld/agent-api/internal/api/shared"
	"github.com/phrazzld/agent-api/internal/command"
	"github.com/phrazzld/agent-api/internal/platform/logger"
	"github.com/phrazzld/agent-api/internal/service"
)

// TaskHandler serves the task, command and health endpoints.
type TaskHandler struct {
	agent service.AgentService
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(agent service.AgentService) (*TaskHandler, error) {
	if agent == nil {
		return nil, errors.New("agent service cannot be nil")
	}
	return &TaskHandler{agent: agent}, nil
}

// Health handles GET /health.
func (h *TaskHandler) Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, StatusResponse{Status: "OK"})
}

// MeetingDescription renders a meeting request for the task history.
func MeetingDescription(req MeetingRequest) string {
	return fmt.Sprintf(`Schedule meeting "%s" on %s with participants: %s`,
		req.Title,
		req.Date.UTC().Format(time.RFC3339),
		strings.Join(req.Participants, ", "))
}

// EmailDescription renders an email request for the task history.
func EmailDescription(req EmailRequest) string {
	return fmt.Sprintf(`Send email to %s with subject "%s" and body "%s"`, req.To, req.Subject, req.Body)
}

// meetingFields carries the request to the calendar unparsed.
func meetingFields(req MeetingRequest) *command.ParsedCommand {
	start := req.Date.UTC()
	return &command.ParsedCommand{
		Title:     req.Title,
		Attendees: append([]string(nil), req.Participants...),
		StartTime: &start,
	}
}

// emailFields carries the request to the mailer unparsed.
func emailFields(req EmailRequest) *command.ParsedCommand {
	return &command.ParsedCommand{
		To:        req.To,
		Attendees: []string{req.To},
		Subject:   req.Subject,
		Body:      req.Body,
	}
}

// CreateMeeting handles POST /api/meetings.
func (h *TaskHandler) CreateMeeting(w http.ResponseWriter, r *http.Request) {
	var req MeetingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	h.submit(w, r, service.SubmitRequest{
		Description: MeetingDescription(req),
		Priority:    priorityOrDefault(req.Priority),
		Type:        "meeting",
		Fields:      meetingFields(req),
	}, false)
}

// SendEmail handles POST /api/emails.
func (h *TaskHandler) SendEmail(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	h.submit(w, r, service.SubmitRequest{
		Description: EmailDescription(req),
		Priority:    priorityOrDefault(req.Priority),
		Type:        "email",
		Fields:      emailFields(req),
	}, false)
}

// CreateTask handles POST /api/tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	h.submit(w, r, service.SubmitRequest{
		Description: req.Description,
		Priority:    req.Priority,
		Type:        req.Type,
	}, true)
}

// ProcessCommand handles POST /api/nlp.
func (h *TaskHandler) ProcessCommand(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	response, err := h.agent.ProcessCommand(r.Context(), req.Command)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CommandResponse{Response: response})
}

// ListTasks handles GET /api/tasks.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.agent.History(r.Context())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	resp := TaskListResponse{Tasks: make([]TaskResponse, 0, len(tasks))}
	for _, t := range tasks {
		resp.Tasks = append(resp.Tasks, taskToResponse(t))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// submit dispatches req. withTask selects a 201 task body over the 200
// status body used by the meeting and email endpoints.
func (h *TaskHandler) submit(w http.ResponseWriter, r *http.Request, req service.SubmitRequest, withTask bool) {
	t, err := h.agent.Submit(r.Context(), req)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	logger.FromContext(r.Context()).InfoContext(r.Context(), "task completed",
		"task_id", t.ID,
		"type", t.Type,
		"priority", t.Priority)

	if withTask {
		shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(*t))
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, StatusResponse{Status: "success"})
}

// decodeAndValidate writes a 400 and returns false when the body is not a
// valid v.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := shared.DecodeJSON(w, r, v); err != nil {
		if errors.Is(err, shared.ErrEmptyBody) {
			HandleAPIError(w, r, err)
			return false
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		HandleAPIError(w, r, err)
		return false
	}
	return true
}
