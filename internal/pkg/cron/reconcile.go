package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

const ReconcileJobName = "reconcile_attendance"

// Sweeper is the part of attendance.Service the reconcile job drives.
type Sweeper interface {
	Sweep(ctx context.Context, filter attendance.ListFilter) (attendance.SweepResult, error)
}

// ReconcileJob repairs closed sessions missing derived values across the
// trailing window of business days.
type ReconcileJob struct {
	sweeper    Sweeper
	clock      clock.Clock
	loc        *time.Location
	days       int
	batchLimit int
}

func NewReconcileJob(sweeper Sweeper, clk clock.Clock, loc *time.Location, days, batchLimit int) *ReconcileJob {
	if clk == nil {
		clk = clock.System()
	}
	if loc == nil {
		loc = time.UTC
	}
	if days <= 0 {
		days = 1
	}
	return &ReconcileJob{
		sweeper:    sweeper,
		clock:      clk,
		loc:        loc,
		days:       days,
		batchLimit: batchLimit,
	}
}

func (j *ReconcileJob) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob(ReconcileJobName, interval, j.Run)
}

// Window returns the inclusive date range the next run covers.
func (j *ReconcileJob) Window() (start, end string) {
	today := j.clock.Now().In(j.loc)
	return today.AddDate(0, 0, -(j.days - 1)).Format(validator.DateLayout), today.Format(validator.DateLayout)
}

func (j *ReconcileJob) Run(ctx context.Context) error {
	start, end := j.Window()
	slog.Info("Cron: Starting attendance reconcile sweep", "start_date", start, "end_date", end)

	result, err := j.sweeper.Sweep(ctx, attendance.ListFilter{
		StartDate: start,
		EndDate:   end,
		Limit:     j.batchLimit,
	})
	if err != nil {
		return fmt.Errorf("reconcile sweep: %w", err)
	}

	slog.Info("Cron: Attendance reconcile sweep finished",
		"visited", result.Visited,
		"repaired", result.Repaired,
		"failed", result.Failed,
	)
	return nil
}
