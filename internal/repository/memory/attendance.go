// Package memory holds in-process stores with the same constraints as the
// PostgreSQL repositories. They back STORE_DRIVER=memory and service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/google/uuid"
)

type attendanceKey struct {
	userID string
	date   string
}

type AttendanceStore struct {
	mu     sync.RWMutex
	byID   map[string]attendance.Record
	byKey  map[attendanceKey]string
	now    func() time.Time
	writes int
}

func NewAttendanceStore() *AttendanceStore {
	return &AttendanceStore{
		byID:  make(map[string]attendance.Record),
		byKey: make(map[attendanceKey]string),
		now:   time.Now,
	}
}

var _ attendance.RecordStore = (*AttendanceStore)(nil)

func (s *AttendanceStore) Get(ctx context.Context, userID, date string) (attendance.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byKey[attendanceKey{userID, date}]
	if !ok {
		return attendance.Record{}, attendance.ErrAttendanceNotFound
	}
	return s.byID[id].Clone(), nil
}

func (s *AttendanceStore) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[id]
	if !ok {
		return attendance.Record{}, attendance.ErrAttendanceNotFound
	}
	return rec.Clone(), nil
}

func (s *AttendanceStore) Create(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := attendanceKey{rec.UserID, rec.Date}
	if _, exists := s.byKey[key]; exists {
		return attendance.Record{}, attendance.ErrRecordExists
	}

	stored := rec.Clone()
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	if stored.Breaks == nil {
		stored.Breaks = attendance.Ledger{}
	}
	now := s.now().UTC()
	stored.Version = 1
	stored.CreatedAt = now
	stored.UpdatedAt = now

	s.byID[stored.ID] = stored
	s.byKey[key] = stored.ID
	s.writes++
	return stored.Clone(), nil
}

func (s *AttendanceStore) Update(ctx context.Context, rec attendance.Record, expectedVersion int64) (attendance.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.byID[rec.ID]
	if !ok {
		return attendance.Record{}, attendance.ErrAttendanceNotFound
	}
	if current.Version != expectedVersion {
		return attendance.Record{}, attendance.ErrVersionConflict
	}

	stored := rec.Clone()
	// identity is immutable
	stored.UserID = current.UserID
	stored.Date = current.Date
	stored.CreatedAt = current.CreatedAt
	stored.Version = current.Version + 1
	stored.UpdatedAt = s.now().UTC()

	s.byID[stored.ID] = stored
	s.writes++
	return stored.Clone(), nil
}

func (s *AttendanceStore) List(ctx context.Context, filter attendance.ListFilter) ([]attendance.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]attendance.Record, 0)
	for _, rec := range s.byID {
		if filter.UserID != "" && rec.UserID != filter.UserID {
			continue
		}
		if filter.StartDate != "" && rec.Date < filter.StartDate {
			continue
		}
		if filter.EndDate != "" && rec.Date > filter.EndDate {
			continue
		}
		out = append(out, rec.Clone())
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return checkInBefore(out[i].CheckIn, out[j].CheckIn)
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Put stores rec as-is, bypassing constraints. Used to seed legacy rows.
func (s *AttendanceStore) Put(rec attendance.Record) attendance.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := rec.Clone()
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	if stored.Version == 0 {
		stored.Version = 1
	}
	s.byID[stored.ID] = stored
	s.byKey[attendanceKey{stored.UserID, stored.Date}] = stored.ID
	return stored.Clone()
}

// Writes counts successful Create and Update calls.
func (s *AttendanceStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// nil check-ins sort last
func checkInBefore(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.Before(*b)
	}
}
