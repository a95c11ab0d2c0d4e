package audit

import (
	"context"
)

type ListFilter struct {
	TargetID string
	Limit    int
}

// Repository persists audit entries, newest first on List.
type Repository interface {
	Create(ctx context.Context, entry Entry) (Entry, error)
	List(ctx context.Context, filter ListFilter) ([]Entry, error)
}

// Sink records audit entries on a best-effort basis. It never reports
// failure to the caller.
type Sink interface {
	Record(ctx context.Context, entry Entry)
}
