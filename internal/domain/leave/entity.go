package leave

import (
	"time"
)

type LeaveRequestStatus string

const (
	LeaveRequestStatusWaitingApproval LeaveRequestStatus = "waiting_approval"
	LeaveRequestStatusApproved        LeaveRequestStatus = "approved"
	LeaveRequestStatusRejected        LeaveRequestStatus = "rejected"
	LeaveRequestStatusCancelled       LeaveRequestStatus = "cancelled"
)

// LeaveDurationEnum maps to leave_duration_enum in DB
type LeaveDurationEnum string

const (
	LeaveDurationFullDay          LeaveDurationEnum = "full_day"
	LeaveDurationHalfDayMorning   LeaveDurationEnum = "half_day_morning"
	LeaveDurationHalfDayAfternoon LeaveDurationEnum = "half_day_afternoon"
)

// LeaveRequest is the subset of a leave request the attendance engine reads.
// Dates are inclusive YYYY-MM-DD keys.
type LeaveRequest struct {
	ID           string
	UserID       string
	StartDate    string
	EndDate      string
	DurationType LeaveDurationEnum
	Status       LeaveRequestStatus
	Reason       string
	CreatedAt    time.Time
}

func (l LeaveRequest) IsHalfDay() bool {
	return l.DurationType == LeaveDurationHalfDayMorning || l.DurationType == LeaveDurationHalfDayAfternoon
}

// Covers reports whether date falls within the request's inclusive range.
func (l LeaveRequest) Covers(date string) bool {
	return l.StartDate <= date && date <= l.EndDate
}

// CountsAsHalfDay reports whether the request lowers the expected hours on date.
func (l LeaveRequest) CountsAsHalfDay(date string) bool {
	return l.Status == LeaveRequestStatusApproved && l.IsHalfDay() && l.Covers(date)
}
