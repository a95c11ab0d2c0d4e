package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/leave"
	"github.com/google/uuid"
)

type LeaveRequestStore struct {
	mu       sync.RWMutex
	requests []leave.LeaveRequest
}

func NewLeaveRequestStore() *LeaveRequestStore {
	return &LeaveRequestStore{}
}

var _ leave.LeaveRequestRepository = (*LeaveRequestStore)(nil)

func (s *LeaveRequestStore) Create(ctx context.Context, req leave.LeaveRequest) (leave.LeaveRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	s.requests = append(s.requests, req)
	return req, nil
}

func (s *LeaveRequestStore) HasApprovedHalfDay(ctx context.Context, userID, date string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.requests {
		if r.UserID == userID && r.CountsAsHalfDay(date) {
			return true, nil
		}
	}
	return false, nil
}
