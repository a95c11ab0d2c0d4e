package attendance

import (
	"context"
)

// ListFilter selects records for listing. Empty fields are unconstrained.
// Results are ordered by date descending, then check-in ascending.
type ListFilter struct {
	UserID    string
	StartDate string
	EndDate   string
	Limit     int
}

// RecordStore persists attendance records. Implementations enforce
// uniqueness of (UserID, Date) and optimistic concurrency on Version.
type RecordStore interface {
	// Get returns ErrAttendanceNotFound when no record exists for the pair.
	Get(ctx context.Context, userID, date string) (Record, error)

	GetByID(ctx context.Context, id string) (Record, error)

	// Create assigns ID, Version 1 and timestamps. A duplicate (UserID, Date)
	// yields ErrRecordExists.
	Create(ctx context.Context, rec Record) (Record, error)

	// Update writes rec only if the stored version equals expectedVersion,
	// otherwise it returns ErrVersionConflict. The returned record carries
	// the incremented version.
	Update(ctx context.Context, rec Record, expectedVersion int64) (Record, error)

	List(ctx context.Context, filter ListFilter) ([]Record, error)
}

// Session event names published to Notifier.
const (
	EventClockIn    = "attendance.clock_in"
	EventClockOut   = "attendance.clock_out"
	EventBreakStart = "attendance.break_start"
	EventBreakEnd   = "attendance.break_end"
)

// Notifier receives session transitions. Delivery is best effort.
type Notifier interface {
	SessionChanged(ctx context.Context, event string, rec Record)
}
