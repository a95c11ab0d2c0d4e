package attendance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/audit"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/user"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	kolkata  = mustLocation("Asia/Kolkata")
	employee = user.Actor{ID: "emp-1", Name: "Ravi", Role: user.RoleEmployee}
	admin    = user.Actor{ID: "adm-1", Name: "Meera", Role: user.RoleAdmin}
)

func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func onDay(h, m int) time.Time {
	return time.Date(2024, 5, 1, h, m, 0, 0, kolkata)
}

type recordingSink struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (s *recordingSink) Record(_ context.Context, e audit.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
}

func (s *recordingSink) actions() []audit.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []audit.Action
	for _, e := range s.entries {
		out = append(out, e.Action)
	}
	return out
}

type recordingNotifier struct {
	events []string
}

func (n *recordingNotifier) SessionChanged(_ context.Context, event string, _ attendance.Record) {
	n.events = append(n.events, event)
}

type fixture struct {
	svc      *AttendanceServiceImpl
	store    *memory.AttendanceStore
	leaves   *memory.LeaveRequestStore
	sink     *recordingSink
	notifier *recordingNotifier
	clock    *clock.Fake
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    memory.NewAttendanceStore(),
		leaves:   memory.NewLeaveRequestStore(),
		sink:     &recordingSink{},
		notifier: &recordingNotifier{},
		clock:    clock.NewFake(onDay(9, 0)),
	}
	f.svc = NewAttendanceService(f.store, f.leaves, f.sink, f.notifier, f.clock, Config{
		Location: kolkata,
		Policy:   DefaultFlagPolicy(),
	})
	return f
}

func TestFullDaySession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	rec, err := f.svc.ClockIn(ctx, employee, attendance.ClockInRequest{})
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", rec.Date)
	assert.Equal(t, "Office", *rec.Location)
	assert.Equal(t, int64(0), *rec.TotalWorkedSeconds)
	assert.False(t, *rec.LowTimeFlag)
	assert.False(t, *rec.ExtraTimeFlag)
	assert.Equal(t, attendance.StateCheckedIn, rec.State())

	f.clock.Set(onDay(13, 0))
	rec, err = f.svc.StartBreak(ctx, employee, attendance.StartBreakRequest{Type: attendance.BreakStandard})
	require.NoError(t, err)
	assert.Equal(t, attendance.StateOnBreak, rec.State())

	f.clock.Set(onDay(13, 30))
	rec, err = f.svc.EndBreak(ctx, employee)
	require.NoError(t, err)

	f.clock.Set(onDay(18, 0))
	rec, err = f.svc.ClockOut(ctx, employee)
	require.NoError(t, err)

	require.Len(t, rec.Breaks, 1)
	assert.Equal(t, onDay(13, 0), rec.Breaks[0].Start)
	assert.Equal(t, onDay(13, 30), *rec.Breaks[0].End)
	assert.Equal(t, int64(1800), *rec.Breaks[0].DurationSeconds)
	assert.Equal(t, int64(30600), *rec.TotalWorkedSeconds)
	assert.True(t, *rec.LowTimeFlag)
	assert.False(t, *rec.ExtraTimeFlag)
	assert.Equal(t, attendance.StateCheckedOut, rec.State())
	assert.Equal(t, int64(4), rec.Version)

	assert.Equal(t, []audit.Action{
		audit.ActionClockIn, audit.ActionBreakStart, audit.ActionBreakEnd, audit.ActionClockOut,
	}, f.sink.actions())
	assert.Equal(t, []string{
		attendance.EventClockIn, attendance.EventBreakStart, attendance.EventBreakEnd, attendance.EventClockOut,
	}, f.notifier.events)
}

func TestClockIn_Conflicts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	location := "  Remote "
	rec, err := f.svc.ClockIn(ctx, employee, attendance.ClockInRequest{Location: &location})
	require.NoError(t, err)
	assert.Equal(t, "Remote", *rec.Location)

	f.clock.Advance(time.Hour)
	_, err = f.svc.ClockIn(ctx, employee, attendance.ClockInRequest{})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
	assert.ErrorIs(t, err, attendance.ErrConflict)
}

func TestClockIn_UsesBusinessDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// 20:00 UTC on 30 April is 01:30 on 1 May in Kolkata.
	f.clock.Set(time.Date(2024, 4, 30, 20, 0, 0, 0, time.UTC))
	rec, err := f.svc.ClockIn(ctx, employee, attendance.ClockInRequest{})
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", rec.Date)
}

func TestClockOut_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("not clocked in", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.ClockOut(ctx, employee)
		assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)
		assert.ErrorIs(t, err, attendance.ErrInvalidState)
	})

	t.Run("on break", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.ClockIn(ctx, employee, attendance.ClockInRequest{})
		require.NoError(t, err)
		_, err = f.svc.StartBreak(ctx, employee, attendance.StartBreakRequest{})
		require.NoError(t, err)

		_, err = f.svc.ClockOut(ctx, employee)
		assert.ErrorIs(t, err, attendance.ErrEndBreakFirst)
		assert.ErrorIs(t, err, attendance.ErrConflict)
	})

	t.Run("already clocked out", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.ClockIn(ctx, employee, attendance.ClockInRequest{})
		require.NoError(t, err)
		f.clock.Advance(8 * time.Hour)
		_, err = f.svc.ClockOut(ctx, employee)
		require.NoError(t, err)

		_, err = f.svc.ClockOut(ctx, employee)
		assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)
		assert.ErrorIs(t, err, attendance.ErrConflict)
	})
}

func TestStartBreak_SecondStandardIsConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.ClockIn(ctx, employee, attendance.ClockInRequest{})
	require.NoError(t, err)

	f.clock.Set(onDay(13, 0))
	_, err = f.svc.StartBreak(ctx, employee, attendance.StartBreakRequest{Type: attendance.BreakStandard})
	require.NoError(t, err)

	// Second start while the first is open
	_, err = f.svc.StartBreak(ctx, employee, attendance.StartBreakRequest{Type: attendance.BreakExtra, Reason: "call"})
	assert.ErrorIs(t, err, attendance.ErrBreakInProgress)

	f.clock.Set(onDay(13, 30))
	_, err = f.svc.EndBreak(ctx, employee)
	require.NoError(t, err)

	f.clock.Set(onDay(15, 0))
	_, err = f.svc.StartBreak(ctx, employee, attendance.StartBreakRequest{Type: attendance.BreakStandard})
	assert.ErrorIs(t, err, attendance.ErrStandardBreakTaken)
	assert.ErrorIs(t, err, attendance.ErrConflict)
	assert.Contains(t, err.Error(), "standard break already taken today")

	rec, err := f.svc.StartBreak(ctx, employee, attendance.StartBreakRequest{Type: attendance.BreakExtra, Reason: " pharmacy "})
	require.NoError(t, err)
	require.Len(t, rec.Breaks, 2)
	assert.Equal(t, "pharmacy", rec.Breaks[1].Reason)
}

func TestStartBreak_ExtraWithoutReasonIsValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.ClockIn(ctx, employee, attendance.ClockInRequest{})
	require.NoError(t, err)

	_, err = f.svc.StartBreak(ctx, employee, attendance.StartBreakRequest{Type: attendance.BreakExtra})
	assert.ErrorIs(t, err, attendance.ErrValidation)

	rec, err := f.svc.GetToday(ctx, employee)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Empty(t, rec.Breaks)
}

func TestStartBreak_RequiresActiveSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.StartBreak(ctx, employee, attendance.StartBreakRequest{})
	assert.ErrorIs(t, err, attendance.ErrNoActiveSession)
	assert.ErrorIs(t, err, attendance.ErrInvalidState)

	_, err = f.svc.ClockIn(ctx, employee, attendance.ClockInRequest{})
	require.NoError(t, err)
	f.clock.Advance(9 * time.Hour)
	_, err = f.svc.ClockOut(ctx, employee)
	require.NoError(t, err)

	_, err = f.svc.StartBreak(ctx, employee, attendance.StartBreakRequest{})
	assert.ErrorIs(t, err, attendance.ErrNoActiveSession)
}

func TestEndBreak_WithoutOpenBreak(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.EndBreak(ctx, employee)
	assert.ErrorIs(t, err, attendance.ErrNoActiveBreak)
	assert.ErrorIs(t, err, attendance.ErrInvalidState)

	_, err = f.svc.ClockIn(ctx, employee, attendance.ClockInRequest{})
	require.NoError(t, err)
	_, err = f.svc.EndBreak(ctx, employee)
	assert.ErrorIs(t, err, attendance.ErrNoActiveBreak)
}

func TestGetToday_NoRecord(t *testing.T) {
	f := newFixture(t)
	rec, err := f.svc.GetToday(context.Background(), employee)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestGetToday_ReconcilesLegacyRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.clock.Set(onDay(19, 0))
	f.store.Put(legacyRecord(employee.ID, "2024-05-01", onDay(9, 0), onDay(18, 0)))

	rec, err := f.svc.GetToday(ctx, employee)
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.NotNil(t, rec.TotalWorkedSeconds)
	require.NotNil(t, rec.LowTimeFlag)
	require.NotNil(t, rec.ExtraTimeFlag)
	assert.Equal(t, int64(32400-1800), *rec.TotalWorkedSeconds)
	assert.True(t, *rec.LowTimeFlag)
	assert.False(t, *rec.ExtraTimeFlag)
	assert.Equal(t, 1, f.store.Writes())

	again, err := f.svc.GetToday(ctx, employee)
	require.NoError(t, err)
	assert.Equal(t, rec, again)
	assert.Equal(t, 1, f.store.Writes())
}

func TestClockOut_HalfDayLeaveLowersThreshold(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.leaves.Create(ctx, leave.LeaveRequest{
		UserID:       employee.ID,
		StartDate:    "2024-05-01",
		EndDate:      "2024-05-01",
		DurationType: leave.LeaveDurationHalfDayAfternoon,
		Status:       leave.LeaveRequestStatusApproved,
	})
	require.NoError(t, err)

	_, err = f.svc.ClockIn(ctx, employee, attendance.ClockInRequest{})
	require.NoError(t, err)
	f.clock.Set(onDay(14, 0))
	rec, err := f.svc.ClockOut(ctx, employee)
	require.NoError(t, err)

	assert.Equal(t, int64(5*3600), *rec.TotalWorkedSeconds)
	assert.False(t, *rec.LowTimeFlag)
	assert.False(t, *rec.ExtraTimeFlag)
}

// staleStore hands out a record whose version has already moved on, as a
// concurrent writer would leave it.
type staleStore struct {
	*memory.AttendanceStore
}

func (s staleStore) Get(ctx context.Context, userID, date string) (attendance.Record, error) {
	rec, err := s.AttendanceStore.Get(ctx, userID, date)
	if err != nil {
		return rec, err
	}
	rec.Version--
	return rec, nil
}

func TestBreakMutation_LosingWriterGetsConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.ClockIn(ctx, employee, attendance.ClockInRequest{})
	require.NoError(t, err)
	_, err = f.svc.StartBreak(ctx, employee, attendance.StartBreakRequest{})
	require.NoError(t, err)

	stale := NewAttendanceService(staleStore{f.store}, f.leaves, f.sink, nil, f.clock, Config{Location: kolkata})
	f.clock.Advance(10 * time.Minute)
	_, err = stale.EndBreak(ctx, employee)
	assert.ErrorIs(t, err, attendance.ErrVersionConflict)
	assert.ErrorIs(t, err, attendance.ErrConflict)

	rec, err := f.svc.GetToday(ctx, employee)
	require.NoError(t, err)
	assert.True(t, rec.Breaks.HasOpen())
}

func TestListAll_RequiresAdmin(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ListAll(context.Background(), employee, attendance.HistoryFilter{})
	assert.ErrorIs(t, err, attendance.ErrAdminRequired)
	assert.ErrorIs(t, err, attendance.ErrAuthorization)

	_, err = f.svc.ListToday(context.Background(), employee)
	assert.ErrorIs(t, err, attendance.ErrAuthorization)
}

func TestListToday_OrdersByCheckIn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	late := user.Actor{ID: "emp-2", Role: user.RoleEmployee}
	f.clock.Set(onDay(8, 0))
	_, err := f.svc.ClockIn(ctx, employee, attendance.ClockInRequest{})
	require.NoError(t, err)
	f.clock.Set(onDay(10, 0))
	_, err = f.svc.ClockIn(ctx, late, attendance.ClockInRequest{})
	require.NoError(t, err)

	records, err := f.svc.ListToday(ctx, admin)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, employee.ID, records[0].UserID)
	assert.Equal(t, late.ID, records[1].UserID)
}

func TestGetHistory_InvalidRange(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.GetHistory(context.Background(), employee, attendance.HistoryFilter{StartDate: "2024-05-10", EndDate: "2024-05-01"})
	assert.ErrorIs(t, err, attendance.ErrValidation)
}

func TestGetHistory_LimitAndOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.svc.cfg.HistoryLimit = 2

	for _, d := range []string{"2024-04-28", "2024-04-29", "2024-04-30"} {
		f.store.Put(attendance.Record{UserID: employee.ID, Date: d})
	}

	records, err := f.svc.GetHistory(ctx, employee, attendance.HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2024-04-30", records[0].Date)
	assert.Equal(t, "2024-04-29", records[1].Date)
}

func TestErrorKindsAreDistinct(t *testing.T) {
	kinds := []error{
		attendance.ErrConflict,
		attendance.ErrInvalidState,
		attendance.ErrValidation,
		attendance.ErrNotFound,
		attendance.ErrAuthorization,
	}
	for i, a := range kinds {
		for j, b := range kinds {
			assert.Equal(t, i == j, errors.Is(a, b))
		}
	}
}
