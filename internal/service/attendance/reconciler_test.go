package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func legacyRecord(userID, date string, in, out time.Time) attendance.Record {
	return attendance.Record{
		UserID:   userID,
		Date:     date,
		CheckIn:  &in,
		CheckOut: &out,
		Breaks:   attendance.Ledger{closedBreak(in.Add(4*time.Hour), 30)},
	}
}

func TestReconcile_RepairsLegacyRecordOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	seeded := f.store.Put(legacyRecord(employee.ID, "2024-04-30", onDay(9, 0).AddDate(0, 0, -1), onDay(18, 0).AddDate(0, 0, -1)))
	require.Nil(t, seeded.LowTimeFlag)

	// Act
	first, err := f.svc.GetHistory(ctx, employee, attendance.HistoryFilter{})
	require.NoError(t, err)

	// Assert
	require.Len(t, first, 1)
	require.NotNil(t, first[0].LowTimeFlag)
	require.NotNil(t, first[0].ExtraTimeFlag)
	assert.Equal(t, int64(30600), *first[0].TotalWorkedSeconds)
	assert.True(t, *first[0].LowTimeFlag)
	assert.False(t, *first[0].ExtraTimeFlag)
	assert.Equal(t, 1, f.store.Writes())

	second, err := f.svc.GetHistory(ctx, employee, attendance.HistoryFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, f.store.Writes())
	assert.Equal(t, first, second)
}

func TestReconcile_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var seeded []attendance.Record
	for i, d := range []string{"2024-04-27", "2024-04-28", "2024-04-29"} {
		in := onDay(9, 0).AddDate(0, 0, -4+i)
		seeded = append(seeded, f.store.Put(legacyRecord(employee.ID, d, in, in.Add(time.Duration(7+i)*time.Hour))))
	}
	open := onDay(9, 0)
	seeded = append(seeded, f.store.Put(attendance.Record{UserID: employee.ID, Date: "2024-05-01", CheckIn: &open}))

	once := f.svc.Reconcile(ctx, seeded)
	writes := f.store.Writes()
	twice := f.svc.Reconcile(ctx, once)

	assert.Equal(t, once, twice)
	assert.Equal(t, writes, f.store.Writes())
	assert.Equal(t, 3, writes)

	// open sessions are left alone
	assert.Nil(t, once[3].LowTimeFlag)
}

// failingStore rejects updates for one record id.
type failingStore struct {
	attendance.RecordStore
	failID string
}

func (s failingStore) Update(ctx context.Context, rec attendance.Record, expected int64) (attendance.Record, error) {
	if rec.ID == s.failID {
		return attendance.Record{}, errors.New("connection reset")
	}
	return s.RecordStore.Update(ctx, rec, expected)
}

func TestReconcile_IsolatesFailures(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	bad := f.store.Put(legacyRecord("emp-1", "2024-04-29", onDay(9, 0).AddDate(0, 0, -2), onDay(18, 0).AddDate(0, 0, -2)))
	good := f.store.Put(legacyRecord("emp-1", "2024-04-30", onDay(9, 0).AddDate(0, 0, -1), onDay(18, 0).AddDate(0, 0, -1)))

	svc := NewAttendanceService(failingStore{RecordStore: f.store, failID: bad.ID}, f.leaves, f.sink, nil, f.clock, Config{Location: kolkata})

	out := svc.Reconcile(ctx, []attendance.Record{bad, good})
	require.Len(t, out, 2)
	assert.Equal(t, bad, out[0])
	assert.NotNil(t, out[1].LowTimeFlag)

	result, err := svc.Sweep(ctx, attendance.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, attendance.SweepResult{Visited: 2, Repaired: 0, Failed: 1}, result)
}

func TestSweep_RepairsAcrossUsers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.store.Put(legacyRecord("emp-1", "2024-04-30", onDay(9, 0).AddDate(0, 0, -1), onDay(19, 0).AddDate(0, 0, -1)))
	f.store.Put(legacyRecord("emp-2", "2024-04-30", onDay(9, 0).AddDate(0, 0, -1), onDay(12, 0).AddDate(0, 0, -1)))

	result, err := f.svc.Sweep(ctx, attendance.ListFilter{StartDate: "2024-04-01", EndDate: "2024-04-30"})
	require.NoError(t, err)
	assert.Equal(t, attendance.SweepResult{Visited: 2, Repaired: 2}, result)

	long, err := f.store.Get(ctx, "emp-1", "2024-04-30")
	require.NoError(t, err)
	assert.True(t, *long.ExtraTimeFlag)
	assert.False(t, *long.LowTimeFlag)

	short, err := f.store.Get(ctx, "emp-2", "2024-04-30")
	require.NoError(t, err)
	assert.True(t, *short.LowTimeFlag)

	again, err := f.svc.Sweep(ctx, attendance.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 0, again.Repaired)
}
