package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/google/uuid"
)

type leaveRequestRepository struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepository{db: db}
}

// HasApprovedHalfDay implements leave.HalfDayLookup.
func (r *leaveRequestRepository) HasApprovedHalfDay(ctx context.Context, userID, date string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM leave_requests
			WHERE user_id = $1
				AND status = $2
				AND duration_type IN ($3::leave_duration_enum, $4::leave_duration_enum)
				AND start_date <= $5::text::date
				AND end_date >= $5::text::date
		)`

	var exists bool
	err := q.QueryRow(ctx, query,
		userID,
		string(leave.LeaveRequestStatusApproved),
		string(leave.LeaveDurationHalfDayMorning),
		string(leave.LeaveDurationHalfDayAfternoon),
		date,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to look up half-day leave: %w", err)
	}
	return exists, nil
}

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepository) Create(ctx context.Context, req leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.DurationType == "" {
		req.DurationType = leave.LeaveDurationFullDay
	}
	if req.Status == "" {
		req.Status = leave.LeaveRequestStatusWaitingApproval
	}

	query := `
		INSERT INTO leave_requests (id, user_id, start_date, end_date, duration_type, status, reason)
		VALUES ($1, $2, $3::text::date, $4::text::date, $5::leave_duration_enum, $6, $7)
		RETURNING created_at`

	err := q.QueryRow(ctx, query,
		req.ID,
		req.UserID,
		req.StartDate,
		req.EndDate,
		string(req.DurationType),
		string(req.Status),
		req.Reason,
	).Scan(&req.CreatedAt)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}
	return req, nil
}
