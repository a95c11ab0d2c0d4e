package attendance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/audit"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/user"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

const (
	DefaultLocation     = "Office"
	DefaultHistoryLimit = 100
	DefaultListLimit    = 1000
)

type Config struct {
	// Location decides which calendar day "now" belongs to.
	Location     *time.Location
	Policy       FlagPolicy
	HistoryLimit int
	ListLimit    int
}

type AttendanceServiceImpl struct {
	store    attendance.RecordStore
	leaves   leave.HalfDayLookup
	audit    audit.Sink
	notifier attendance.Notifier
	clock    clock.Clock
	cfg      Config
}

// NewAttendanceService wires the engine. notifier may be nil.
func NewAttendanceService(
	store attendance.RecordStore,
	leaves leave.HalfDayLookup,
	sink audit.Sink,
	notifier attendance.Notifier,
	clk clock.Clock,
	cfg Config,
) *AttendanceServiceImpl {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Policy == (FlagPolicy{}) {
		cfg.Policy = DefaultFlagPolicy()
	}
	if cfg.HistoryLimit == 0 {
		cfg.HistoryLimit = DefaultHistoryLimit
	}
	if cfg.ListLimit == 0 {
		cfg.ListLimit = DefaultListLimit
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if clk == nil {
		clk = clock.System()
	}
	return &AttendanceServiceImpl{
		store:    store,
		leaves:   leaves,
		audit:    sink,
		notifier: notifier,
		clock:    clk,
		cfg:      cfg,
	}
}

var _ attendance.Service = (*AttendanceServiceImpl)(nil)

// ClockIn implements attendance.Service.
func (s *AttendanceServiceImpl) ClockIn(ctx context.Context, actor user.Actor, req attendance.ClockInRequest) (attendance.Record, error) {
	if err := req.Validate(); err != nil {
		return attendance.Record{}, err
	}

	now := s.clock.Now()
	date := s.dayOf(now)

	location := DefaultLocation
	if req.Location != nil && !validator.IsEmpty(*req.Location) {
		location = strings.TrimSpace(*req.Location)
	}

	rec := attendance.Record{
		UserID:   actor.ID,
		Date:     date,
		CheckIn:  &now,
		Breaks:   attendance.Ledger{},
		Location: &location,
	}
	rec.SetDerived(0, attendance.Flags{})

	// The store's (user, date) uniqueness decides concurrent clock-ins.
	created, err := s.store.Create(ctx, rec)
	if err != nil {
		if errors.Is(err, attendance.ErrRecordExists) {
			return attendance.Record{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	s.recordAudit(ctx, actor, audit.ActionClockIn, created, "Clocked in for "+date, nil, nil)
	s.notifier.SessionChanged(ctx, attendance.EventClockIn, created)
	return created, nil
}

// ClockOut implements attendance.Service.
func (s *AttendanceServiceImpl) ClockOut(ctx context.Context, actor user.Actor) (attendance.Record, error) {
	now := s.clock.Now()
	date := s.dayOf(now)

	rec, err := s.store.Get(ctx, actor.ID, date)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.Record{}, attendance.ErrNotCheckedIn
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance record: %w", err)
	}

	switch rec.State() {
	case attendance.StateNotStarted:
		return attendance.Record{}, attendance.ErrNotCheckedIn
	case attendance.StateCheckedOut:
		return attendance.Record{}, attendance.ErrAlreadyCheckedOut
	case attendance.StateOnBreak:
		return attendance.Record{}, attendance.ErrEndBreakFirst
	}

	expected := rec.Version
	next := rec.Clone()
	next.CheckOut = &now
	if err := s.derive(ctx, &next); err != nil {
		return attendance.Record{}, err
	}

	updated, err := s.store.Update(ctx, next, expected)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to update attendance record: %w", err)
	}

	s.recordAudit(ctx, actor, audit.ActionClockOut, updated, "Clocked out for "+date, nil, nil)
	s.notifier.SessionChanged(ctx, attendance.EventClockOut, updated)
	return updated, nil
}

// StartBreak implements attendance.Service.
func (s *AttendanceServiceImpl) StartBreak(ctx context.Context, actor user.Actor, req attendance.StartBreakRequest) (attendance.Record, error) {
	if err := req.Validate(); err != nil {
		return attendance.Record{}, err
	}

	now := s.clock.Now()
	date := s.dayOf(now)

	rec, err := s.store.Get(ctx, actor.ID, date)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.Record{}, attendance.ErrNoActiveSession
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance record: %w", err)
	}

	state := rec.State()
	if state == attendance.StateNotStarted || state == attendance.StateCheckedOut {
		return attendance.Record{}, attendance.ErrNoActiveSession
	}

	ledger, err := rec.Breaks.Append(now, req.Type, req.Reason)
	if err != nil {
		return attendance.Record{}, err
	}

	expected := rec.Version
	next := rec.Clone()
	next.Breaks = ledger

	updated, err := s.store.Update(ctx, next, expected)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to update attendance record: %w", err)
	}

	s.recordAudit(ctx, actor, audit.ActionBreakStart, updated, fmt.Sprintf("Started %s break for %s", req.Type, date), nil, nil)
	s.notifier.SessionChanged(ctx, attendance.EventBreakStart, updated)
	return updated, nil
}

// EndBreak implements attendance.Service.
func (s *AttendanceServiceImpl) EndBreak(ctx context.Context, actor user.Actor) (attendance.Record, error) {
	now := s.clock.Now()
	date := s.dayOf(now)

	rec, err := s.store.Get(ctx, actor.ID, date)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.Record{}, attendance.ErrNoActiveBreak
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance record: %w", err)
	}

	ledger, err := rec.Breaks.CloseOpen(now)
	if err != nil {
		return attendance.Record{}, err
	}

	expected := rec.Version
	next := rec.Clone()
	next.Breaks = ledger

	updated, err := s.store.Update(ctx, next, expected)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to update attendance record: %w", err)
	}

	s.recordAudit(ctx, actor, audit.ActionBreakEnd, updated, "Ended break for "+date, nil, nil)
	s.notifier.SessionChanged(ctx, attendance.EventBreakEnd, updated)
	return updated, nil
}

// GetToday implements attendance.Service.
func (s *AttendanceServiceImpl) GetToday(ctx context.Context, actor user.Actor) (*attendance.Record, error) {
	rec, err := s.store.Get(ctx, actor.ID, s.dayOf(s.clock.Now()))
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance record: %w", err)
	}
	if rec.NeedsReconcile() {
		rec = s.Reconcile(ctx, []attendance.Record{rec})[0]
	}
	return &rec, nil
}

// GetHistory implements attendance.Service.
func (s *AttendanceServiceImpl) GetHistory(ctx context.Context, actor user.Actor, filter attendance.HistoryFilter) ([]attendance.Record, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	records, err := s.store.List(ctx, attendance.ListFilter{
		UserID:    actor.ID,
		StartDate: filter.StartDate,
		EndDate:   filter.EndDate,
		Limit:     s.cfg.HistoryLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance history: %w", err)
	}
	return s.Reconcile(ctx, records), nil
}

// ListAll implements attendance.Service.
func (s *AttendanceServiceImpl) ListAll(ctx context.Context, actor user.Actor, filter attendance.HistoryFilter) ([]attendance.Record, error) {
	if !actor.IsAdmin() {
		return nil, attendance.ErrAdminRequired
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	records, err := s.store.List(ctx, attendance.ListFilter{
		StartDate: filter.StartDate,
		EndDate:   filter.EndDate,
		Limit:     s.cfg.ListLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	return s.Reconcile(ctx, records), nil
}

// ListToday implements attendance.Service. Records come back in check-in order.
func (s *AttendanceServiceImpl) ListToday(ctx context.Context, actor user.Actor) ([]attendance.Record, error) {
	if !actor.IsAdmin() {
		return nil, attendance.ErrAdminRequired
	}

	today := s.dayOf(s.clock.Now())
	records, err := s.store.List(ctx, attendance.ListFilter{
		StartDate: today,
		EndDate:   today,
		Limit:     s.cfg.ListLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list today's attendance: %w", err)
	}
	return s.Reconcile(ctx, records), nil
}

// derive fills worked seconds and flags once both bounds are set.
func (s *AttendanceServiceImpl) derive(ctx context.Context, rec *attendance.Record) error {
	if rec.CheckIn == nil || rec.CheckOut == nil {
		return nil
	}

	halfDay, err := s.leaves.HasApprovedHalfDay(ctx, rec.UserID, rec.Date)
	if err != nil {
		return fmt.Errorf("failed to look up half-day leave: %w", err)
	}

	worked := WorkedSeconds(*rec.CheckIn, *rec.CheckOut, rec.Breaks)
	rec.SetDerived(worked, s.cfg.Policy.Derive(worked, halfDay))
	return nil
}

func (s *AttendanceServiceImpl) dayOf(t time.Time) string {
	return t.In(s.cfg.Location).Format(validator.DateLayout)
}

type noopNotifier struct{}

func (noopNotifier) SessionChanged(context.Context, string, attendance.Record) {}
