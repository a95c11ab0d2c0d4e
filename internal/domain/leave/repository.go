package leave

import (
	"context"
)

// HalfDayLookup answers whether a user has an approved half-day leave on a date.
type HalfDayLookup interface {
	HasApprovedHalfDay(ctx context.Context, userID, date string) (bool, error)
}

// LeaveRequestRepository stores the leave requests backing HalfDayLookup.
type LeaveRequestRepository interface {
	HalfDayLookup
	Create(ctx context.Context, req LeaveRequest) (LeaveRequest, error)
}
