package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/agent-api/internal/api/shared"
	"github.com/phrazzld/agent-api/internal/domain"
	"github.com/phrazzld/agent-api/internal/service"
	"github.com/phrazzld/agent-api/internal/task"
)

// MapErrorToStatusCode maps service errors onto HTTP status codes.
func MapErrorToStatusCode(err error) int {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.Is(err, domain.ErrInvalidPriority),
		errors.Is(err, domain.ErrEmptyDescription),
		errors.Is(err, service.ErrEmptyCommand),
		errors.Is(err, shared.ErrEmptyBody),
		errors.As(err, &validationErrs):
		return http.StatusBadRequest

	case errors.Is(err, task.ErrCollaboratorFailure):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var collabErr *task.CollaboratorError
	var validationErrs validator.ValidationErrors
	switch {
	case errors.Is(err, domain.ErrInvalidPriority):
		return "Priority must be between 1 and 5"
	case errors.Is(err, domain.ErrEmptyDescription):
		return "Description is required"
	case errors.Is(err, service.ErrEmptyCommand):
		return "Command is required"
	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"
	case errors.As(err, &validationErrs):
		return SanitizeValidationError(validationErrs)
	case errors.As(err, &collabErr):
		return fmt.Sprintf("Task failed: %s service unavailable", collabErr.Collaborator)
	case errors.Is(err, task.ErrCollaboratorFailure):
		return "Task failed: external service unavailable"
	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns validator output into a short message naming
// the first failing field.
func SanitizeValidationError(errs validator.ValidationErrors) string {
	if len(errs) == 0 {
		return "Validation error"
	}
	fe := errs[0]
	return fmt.Sprintf("Invalid %s: %s", strings.ToLower(fe.Field()), getValidationTagMessage(fe.Tag()))
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the mapped status and safe message for err.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}
