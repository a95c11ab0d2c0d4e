package attendance

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

// ========================================
// SESSION DTOs
// ========================================

type ClockInRequest struct {
	Location *string `json:"location"`
}

func (r *ClockInRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Location != nil && len(strings.TrimSpace(*r.Location)) > 100 {
		errs.Add("location", "location must not exceed 100 characters")
	}

	if len(errs) > 0 {
		return ValidationFailed(errs)
	}
	return nil
}

type StartBreakRequest struct {
	Type   BreakType `json:"type"`
	Reason string    `json:"reason"`
}

// Validate defaults an empty type to Standard.
func (r *StartBreakRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Type == "" {
		r.Type = BreakStandard
	}
	if !r.Type.Valid() {
		errs.Add("type", "type must be Standard or Extra")
	}
	if r.Type == BreakExtra && validator.IsEmpty(r.Reason) {
		errs.Add("reason", "reason is required for extra breaks")
	}

	if len(errs) > 0 {
		return ValidationFailed(errs)
	}
	return nil
}

// HistoryFilter bounds a listing by inclusive YYYY-MM-DD dates.
type HistoryFilter struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (f *HistoryFilter) Validate() error {
	var errs validator.ValidationErrors
	validator.ValidateDateRange(&errs, f.StartDate, f.EndDate)
	if len(errs) > 0 {
		return ValidationFailed(errs)
	}
	return nil
}

// ========================================
// ADMIN DTOs
// ========================================

// AdminEdit carries the overridable fields shared by upsert and update-by-id.
// Times are wall-clock text ("9:00 AM", "18:30") on the record's day.
// BreakDurationMinutes replaces the whole break ledger.
type AdminEdit struct {
	CheckIn              *string `json:"check_in"`
	CheckOut             *string `json:"check_out"`
	BreakDurationMinutes *int    `json:"break_duration_minutes"`
	Notes                *string `json:"notes"`
	Location             *string `json:"location"`
}

// MaxBreakMinutes bounds an administrator-recorded break to one day.
const MaxBreakMinutes = 24 * 60

func (e *AdminEdit) validate(errs *validator.ValidationErrors) {
	if e.BreakDurationMinutes != nil {
		switch m := *e.BreakDurationMinutes; {
		case m < 0:
			errs.Add("break_duration_minutes", "break_duration_minutes must not be negative")
		case m > MaxBreakMinutes:
			errs.Add("break_duration_minutes", fmt.Sprintf("break_duration_minutes must not exceed %d", MaxBreakMinutes))
		}
	}
	if e.Location != nil && len(strings.TrimSpace(*e.Location)) > 100 {
		errs.Add("location", "location must not exceed 100 characters")
	}
}

type AdminUpsertRequest struct {
	UserID string `json:"user_id"`
	Date   string `json:"date"`
	AdminEdit
}

func (r *AdminUpsertRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs.Add("user_id", "user_id is required")
	}
	if validator.IsEmpty(r.Date) {
		errs.Add("date", "date is required")
	} else if _, ok := validator.IsValidDate(r.Date); !ok {
		errs.Add("date", "date must be in YYYY-MM-DD format")
	}
	r.AdminEdit.validate(&errs)

	if len(errs) > 0 {
		return ValidationFailed(errs)
	}
	return nil
}

type AdminUpdateRequest struct {
	AdminEdit
}

func (r *AdminUpdateRequest) Validate() error {
	var errs validator.ValidationErrors
	r.AdminEdit.validate(&errs)
	if len(errs) > 0 {
		return ValidationFailed(errs)
	}
	return nil
}

// ========================================
// RESPONSES
// ========================================

type BreakResponse struct {
	Start           time.Time  `json:"start"`
	End             *time.Time `json:"end"`
	Type            BreakType  `json:"type"`
	Reason          string     `json:"reason,omitempty"`
	DurationSeconds *int64     `json:"duration_seconds"`
}

type AttendanceResponse struct {
	ID                 string          `json:"id"`
	UserID             string          `json:"user_id"`
	Date               string          `json:"date"`
	State              SessionState    `json:"state"`
	CheckIn            *time.Time      `json:"check_in"`
	CheckOut           *time.Time      `json:"check_out"`
	Breaks             []BreakResponse `json:"breaks"`
	TotalWorkedSeconds *int64          `json:"total_worked_seconds"`
	LowTimeFlag        *bool           `json:"low_time_flag"`
	ExtraTimeFlag      *bool           `json:"extra_time_flag"`
	Location           *string         `json:"location"`
	Notes              *string         `json:"notes"`
	Version            int64           `json:"version"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func ToResponse(r Record) AttendanceResponse {
	breaks := make([]BreakResponse, 0, len(r.Breaks))
	for _, b := range r.Breaks {
		breaks = append(breaks, BreakResponse{
			Start:           b.Start,
			End:             b.End,
			Type:            b.Type,
			Reason:          b.Reason,
			DurationSeconds: b.DurationSeconds,
		})
	}
	return AttendanceResponse{
		ID:                 r.ID,
		UserID:             r.UserID,
		Date:               r.Date,
		State:              r.State(),
		CheckIn:            r.CheckIn,
		CheckOut:           r.CheckOut,
		Breaks:             breaks,
		TotalWorkedSeconds: r.TotalWorkedSeconds,
		LowTimeFlag:        r.LowTimeFlag,
		ExtraTimeFlag:      r.ExtraTimeFlag,
		Location:           r.Location,
		Notes:              r.Notes,
		Version:            r.Version,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

func ToResponses(records []Record) []AttendanceResponse {
	out := make([]AttendanceResponse, 0, len(records))
	for _, r := range records {
		out = append(out, ToResponse(r))
	}
	return out
}
