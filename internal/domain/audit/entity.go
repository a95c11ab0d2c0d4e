package audit

import (
	"encoding/json"
	"time"
)

type Action string

const (
	ActionClockIn          Action = "CLOCK_IN"
	ActionClockOut         Action = "CLOCK_OUT"
	ActionBreakStart       Action = "BREAK_START"
	ActionBreakEnd         Action = "BREAK_END"
	ActionCreateAttendance Action = "CREATE_ATTENDANCE"
	ActionUpdateAttendance Action = "UPDATE_ATTENDANCE"
)

type TargetType string

const (
	TargetUser       TargetType = "USER"
	TargetAttendance TargetType = "ATTENDANCE"
	TargetLeave      TargetType = "LEAVE"
	TargetSystem     TargetType = "SYSTEM"
)

// Entry is one audit trail line. Before and After are JSON snapshots of the target.
type Entry struct {
	ID         string
	ActorID    string
	ActorName  string
	Action     Action
	TargetType TargetType
	TargetID   string
	Details    string
	Before     json.RawMessage
	After      json.RawMessage
	CreatedAt  time.Time
}

type EntryResponse struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actor_id"`
	ActorName  string          `json:"actor_name"`
	Action     Action          `json:"action"`
	TargetType TargetType      `json:"target_type"`
	TargetID   string          `json:"target_id"`
	Details    string          `json:"details"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

func ToResponses(entries []Entry) []EntryResponse {
	out := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, EntryResponse(e))
	}
	return out
}
