package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/user"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

const unexpectedError = "An unexpected error occurred"

// kindResponses maps attendance error kinds to their status and code.
var kindResponses = []struct {
	kind   error
	status int
	code   string
}{
	{attendance.ErrConflict, http.StatusConflict, CodeConflict},
	{attendance.ErrInvalidState, http.StatusBadRequest, CodeBadRequest},
	{attendance.ErrValidation, http.StatusUnprocessableEntity, CodeValidation},
	{attendance.ErrNotFound, http.StatusNotFound, CodeNotFound},
	{attendance.ErrAuthorization, http.StatusForbidden, CodeForbidden},
}

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, "Validation failed", validationErrs.ToMap())
		return
	}

	var domainErr *attendance.Error
	if errors.As(err, &domainErr) {
		for _, kr := range kindResponses {
			if errors.Is(domainErr, kr.kind) {
				Fail(w, kr.status, kr.code, domainErr.Message, nil)
				return
			}
		}
		slog.Error("attendance error without a known kind", "error", err)
		InternalServerError(w, unexpectedError)
		return
	}

	switch {
	case errors.Is(err, user.ErrActorMissing):
		Unauthorized(w, "Authentication required")
	case errors.Is(err, user.ErrInvalidRole):
		Unauthorized(w, "Invalid token")
	case errors.Is(err, user.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, "Insufficient permissions")
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, unexpectedError)
	}
}
