package attendance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/audit"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/user"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/timeofday"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

// AdminUpsert implements attendance.Service.
func (s *AttendanceServiceImpl) AdminUpsert(ctx context.Context, actor user.Actor, req attendance.AdminUpsertRequest) (attendance.Record, error) {
	if !actor.IsAdmin() {
		return attendance.Record{}, attendance.ErrAdminRequired
	}
	if err := req.Validate(); err != nil {
		return attendance.Record{}, err
	}

	existing, err := s.store.Get(ctx, req.UserID, req.Date)
	switch {
	case err == nil:
		return s.applyAdminEdit(ctx, actor, &existing, req.UserID, req.Date, req.AdminEdit)
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		return s.applyAdminEdit(ctx, actor, nil, req.UserID, req.Date, req.AdminEdit)
	default:
		return attendance.Record{}, fmt.Errorf("failed to get attendance record: %w", err)
	}
}

// AdminUpdateByID implements attendance.Service.
func (s *AttendanceServiceImpl) AdminUpdateByID(ctx context.Context, actor user.Actor, id string, req attendance.AdminUpdateRequest) (attendance.Record, error) {
	if !actor.IsAdmin() {
		return attendance.Record{}, attendance.ErrAdminRequired
	}
	if err := req.Validate(); err != nil {
		return attendance.Record{}, err
	}

	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return attendance.Record{}, err
	}
	return s.applyAdminEdit(ctx, actor, &existing, existing.UserID, existing.Date, req.AdminEdit)
}

// applyAdminEdit is the single create-or-update path for administrator
// overrides. Empty time strings leave the stored value untouched. A break
// duration replaces the whole ledger with one synthetic Standard break.
// Without one, the stored ledger is kept and a new check-in must not be
// later than any recorded break.
func (s *AttendanceServiceImpl) applyAdminEdit(
	ctx context.Context,
	actor user.Actor,
	existing *attendance.Record,
	userID, date string,
	edit attendance.AdminEdit,
) (attendance.Record, error) {
	day, err := time.ParseInLocation(validator.DateLayout, date, s.cfg.Location)
	if err != nil {
		return attendance.Record{}, attendance.Field("date", "date must be in YYYY-MM-DD format")
	}

	var rec attendance.Record
	var before json.RawMessage
	if existing != nil {
		rec = existing.Clone()
		before = snapshot(*existing)
	} else {
		rec = attendance.Record{UserID: userID, Date: date, Breaks: attendance.Ledger{}}
		rec.SetDerived(0, attendance.Flags{})
	}

	dayEnd := day.AddDate(0, 0, 1)

	var errs validator.ValidationErrors
	if t, ok := parseWallClock(&errs, "check_in", edit.CheckIn, day); ok {
		rec.CheckIn = &t
	}
	if t, ok := parseWallClock(&errs, "check_out", edit.CheckOut, day); ok {
		rec.CheckOut = &t
	}
	if len(errs) > 0 {
		return attendance.Record{}, attendance.ValidationFailed(errs)
	}

	if edit.Notes != nil {
		notes := *edit.Notes
		rec.Notes = &notes
	}
	if edit.Location != nil {
		location := strings.TrimSpace(*edit.Location)
		rec.Location = &location
	}

	if edit.BreakDurationMinutes != nil {
		minutes := *edit.BreakDurationMinutes
		switch {
		case minutes == 0:
			rec.Breaks = attendance.Ledger{}
		case rec.CheckIn == nil:
			errs.Add("break_duration_minutes", "a check-in time is required to record a break")
		default:
			rec.Breaks = attendance.SyntheticStandard(*rec.CheckIn, minutes)
			if end := rec.Breaks[0].End; rec.CheckOut == nil && end.After(dayEnd) {
				errs.Add("break_duration_minutes", "break must end within the attendance day")
			}
		}
	} else if rec.CheckIn != nil {
		if start, ok := rec.Breaks.EarliestStart(); ok && start.Before(*rec.CheckIn) {
			errs.Add("check_in", "check_in must not be after a recorded break; resend break_duration_minutes to replace the breaks")
		}
	}

	if rec.CheckOut != nil {
		switch {
		case rec.CheckIn == nil:
			errs.Add("check_out", "check_out requires a check-in time")
		case rec.CheckOut.Before(*rec.CheckIn):
			errs.Add("check_out", "check_out must not be before check_in")
		case rec.Breaks.HasOpen():
			errs.Add("check_out", "the open break must end before check_out is set")
		case rec.Breaks.ClosedSeconds() > int64(rec.CheckOut.Sub(*rec.CheckIn)/time.Second):
			errs.Add("break_duration_minutes", "break duration exceeds the time between check_in and check_out")
		}
	}
	if len(errs) > 0 {
		return attendance.Record{}, attendance.ValidationFailed(errs)
	}

	if err := s.derive(ctx, &rec); err != nil {
		return attendance.Record{}, err
	}

	var saved attendance.Record
	var action audit.Action
	var details string
	if existing == nil {
		saved, err = s.store.Create(ctx, rec)
		action = audit.ActionCreateAttendance
		details = "Created attendance record for " + date
	} else {
		saved, err = s.store.Update(ctx, rec, existing.Version)
		action = audit.ActionUpdateAttendance
		details = "Modified attendance record for " + date
	}
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to save attendance record: %w", err)
	}

	s.recordAudit(ctx, actor, action, saved, details, before, snapshot(saved))
	return saved, nil
}

func parseWallClock(errs *validator.ValidationErrors, field string, text *string, day time.Time) (time.Time, bool) {
	if text == nil || validator.IsEmpty(*text) {
		return time.Time{}, false
	}
	tod, err := timeofday.Parse(*text)
	if err != nil {
		var parseErr *timeofday.ParseError
		if errors.As(err, &parseErr) {
			errs.Add(field, parseErr.Reason)
		} else {
			errs.Add(field, err.Error())
		}
		return time.Time{}, false
	}
	return tod.On(day), true
}

func (s *AttendanceServiceImpl) recordAudit(
	ctx context.Context,
	actor user.Actor,
	action audit.Action,
	rec attendance.Record,
	details string,
	before, after json.RawMessage,
) {
	s.audit.Record(ctx, audit.Entry{
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		Action:     action,
		TargetType: audit.TargetAttendance,
		TargetID:   rec.ID,
		Details:    details,
		Before:     before,
		After:      after,
	})
}

func snapshot(rec attendance.Record) json.RawMessage {
	b, err := json.Marshal(attendance.ToResponse(rec))
	if err != nil {
		slog.Warn("failed to snapshot attendance record", "record_id", rec.ID, "error", err)
		return nil
	}
	return b
}
