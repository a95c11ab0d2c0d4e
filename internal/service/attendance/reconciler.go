package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
)

// Reconcile implements attendance.Service. Only closed sessions with a
// missing derived value are rewritten, so a second pass is a no-op.
func (s *AttendanceServiceImpl) Reconcile(ctx context.Context, records []attendance.Record) []attendance.Record {
	out, _ := s.reconcile(ctx, records)
	return out
}

// Sweep implements attendance.Service.
func (s *AttendanceServiceImpl) Sweep(ctx context.Context, filter attendance.ListFilter) (attendance.SweepResult, error) {
	records, err := s.store.List(ctx, filter)
	if err != nil {
		return attendance.SweepResult{}, fmt.Errorf("failed to list attendance records: %w", err)
	}

	_, result := s.reconcile(ctx, records)
	slog.Info("attendance reconcile sweep finished",
		"start_date", filter.StartDate,
		"end_date", filter.EndDate,
		"visited", result.Visited,
		"repaired", result.Repaired,
		"failed", result.Failed,
	)
	return result, nil
}

func (s *AttendanceServiceImpl) reconcile(ctx context.Context, records []attendance.Record) ([]attendance.Record, attendance.SweepResult) {
	var result attendance.SweepResult
	out := make([]attendance.Record, len(records))

	for i, rec := range records {
		result.Visited++
		out[i] = rec
		if !rec.NeedsReconcile() {
			continue
		}

		fixed, err := s.repair(ctx, rec)
		if err != nil {
			result.Failed++
			slog.Warn("failed to reconcile attendance record",
				"record_id", rec.ID,
				"user_id", rec.UserID,
				"date", rec.Date,
				"error", err,
			)
			continue
		}

		result.Repaired++
		out[i] = fixed
	}

	return out, result
}

func (s *AttendanceServiceImpl) repair(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	next := rec.Clone()
	if err := s.derive(ctx, &next); err != nil {
		return attendance.Record{}, err
	}

	updated, err := s.store.Update(ctx, next, rec.Version)
	if err == nil {
		slog.Debug("reconciled attendance record", "record_id", rec.ID, "date", rec.Date)
		return updated, nil
	}

	// A concurrent reader may have repaired it first.
	if errors.Is(err, attendance.ErrVersionConflict) {
		fresh, getErr := s.store.GetByID(ctx, rec.ID)
		if getErr == nil && !fresh.NeedsReconcile() {
			return fresh, nil
		}
	}
	return attendance.Record{}, err
}
