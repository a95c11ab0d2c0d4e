package notification

import (
	"context"
	"log/slog"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/sse"
)

// SessionNotifier pushes clock and break transitions to live SSE streams:
// the record owner's topic and the admin-wide topic.
type SessionNotifier struct {
	hub *sse.Hub
}

func NewSessionNotifier(hub *sse.Hub) *SessionNotifier {
	return &SessionNotifier{hub: hub}
}

var _ attendance.Notifier = (*SessionNotifier)(nil)

// SessionChanged implements attendance.Notifier.
func (n *SessionNotifier) SessionChanged(ctx context.Context, event string, rec attendance.Record) {
	delivered := n.hub.Publish(rec.UserID, sse.Event{
		Event: event,
		Data:  attendance.ToResponse(rec),
	})
	slog.Debug("attendance event published", "event", event, "user_id", rec.UserID, "subscribers", delivered)
}
