package attendance

import (
	"context"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/user"
)

// Service is the attendance time-accounting engine. Employee operations act
// on the actor's own record for the current business day.
type Service interface {
	ClockIn(ctx context.Context, actor user.Actor, req ClockInRequest) (Record, error)
	ClockOut(ctx context.Context, actor user.Actor) (Record, error)
	StartBreak(ctx context.Context, actor user.Actor, req StartBreakRequest) (Record, error)
	EndBreak(ctx context.Context, actor user.Actor) (Record, error)

	// GetToday returns nil when the actor has not clocked in today.
	GetToday(ctx context.Context, actor user.Actor) (*Record, error)

	// GetHistory lists the actor's records, newest first, repairing any
	// legacy rows on the way out.
	GetHistory(ctx context.Context, actor user.Actor, filter HistoryFilter) ([]Record, error)

	// ListAll and ListToday are administrative listings across users.
	ListAll(ctx context.Context, actor user.Actor, filter HistoryFilter) ([]Record, error)
	ListToday(ctx context.Context, actor user.Actor) ([]Record, error)

	// AdminUpsert creates or overwrites the record for (UserID, Date).
	AdminUpsert(ctx context.Context, actor user.Actor, req AdminUpsertRequest) (Record, error)
	AdminUpdateByID(ctx context.Context, actor user.Actor, id string, req AdminUpdateRequest) (Record, error)

	// Reconcile back-fills missing derived values on closed sessions and
	// persists the corrections. It never fails; records that cannot be
	// repaired are returned unchanged.
	Reconcile(ctx context.Context, records []Record) []Record

	// Sweep runs Reconcile over every record matched by filter.
	Sweep(ctx context.Context, filter ListFilter) (SweepResult, error)
}

type SweepResult struct {
	Visited  int `json:"visited"`
	Repaired int `json:"repaired"`
	Failed   int `json:"failed"`
}
