package attendance

import (
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

// Error kinds. Every error returned by the attendance service matches
// exactly one of these with errors.Is.
var (
	ErrConflict      = errors.New("conflict")
	ErrInvalidState  = errors.New("invalid state")
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
	ErrAuthorization = errors.New("not authorized")
)

// Error is a domain error tagged with its kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Attendance domain errors
var (
	// Clock session
	ErrAlreadyCheckedIn  = newError(ErrConflict, "already clocked in today")
	ErrAlreadyCheckedOut = newError(ErrConflict, "already clocked out today")
	ErrEndBreakFirst     = newError(ErrConflict, "please end your break before clocking out")
	ErrNotCheckedIn      = newError(ErrInvalidState, "no check-in record found for today")
	ErrNoActiveSession   = newError(ErrInvalidState, "no active attendance record")

	// Breaks
	ErrBreakInProgress     = newError(ErrConflict, "break already in progress")
	ErrStandardBreakTaken  = newError(ErrConflict, "standard break already taken today, use an extra break for additional breaks")
	ErrNoActiveBreak       = newError(ErrInvalidState, "no active break found")
	ErrBreakReasonRequired = newError(ErrValidation, "reason is required for extra breaks")
	ErrInvalidBreakType    = newError(ErrValidation, "break type must be Standard or Extra")

	// Store
	ErrRecordExists       = newError(ErrConflict, "attendance record already exists for this user and date")
	ErrVersionConflict    = newError(ErrConflict, "attendance record was modified concurrently, reload and retry")
	ErrAttendanceNotFound = newError(ErrNotFound, "attendance record not found")

	// Access
	ErrAdminRequired = newError(ErrAuthorization, "administrator access required")
)

// ValidationFailed wraps field errors so they match both ErrValidation and
// validator.ValidationErrors.
func ValidationFailed(errs validator.ValidationErrors) error {
	return fmt.Errorf("%w: %w", ErrValidation, errs)
}

// Field returns a single-field validation error.
func Field(field, message string) error {
	return ValidationFailed(validator.ValidationErrors{{Field: field, Message: message}})
}
