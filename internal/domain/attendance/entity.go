package attendance

import (
	"time"
)

type BreakType string

const (
	BreakStandard BreakType = "Standard"
	BreakExtra    BreakType = "Extra"
)

func (t BreakType) Valid() bool {
	return t == BreakStandard || t == BreakExtra
}

// SessionState is derived from a record's bounds and break ledger; it is never stored.
type SessionState string

const (
	StateNotStarted SessionState = "not_started"
	StateCheckedIn  SessionState = "checked_in"
	StateOnBreak    SessionState = "on_break"
	StateCheckedOut SessionState = "checked_out"
)

type Break struct {
	Start           time.Time  `json:"start"`
	End             *time.Time `json:"end,omitempty"`
	Type            BreakType  `json:"type"`
	Reason          string     `json:"reason,omitempty"`
	DurationSeconds *int64     `json:"durationSeconds,omitempty"`
}

func (b Break) IsOpen() bool {
	return b.End == nil
}

// Record is one user's attendance for one calendar day, keyed by (UserID, Date).
type Record struct {
	ID                 string
	UserID             string
	Date               string // YYYY-MM-DD in the business location
	CheckIn            *time.Time
	CheckOut           *time.Time
	Breaks             Ledger
	TotalWorkedSeconds *int64
	LowTimeFlag        *bool
	ExtraTimeFlag      *bool
	Location           *string
	Notes              *string
	Version            int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Flags are the derived under/over-time indicators.
type Flags struct {
	LowTime   bool
	ExtraTime bool
}

func (r Record) State() SessionState {
	switch {
	case r.CheckIn == nil:
		return StateNotStarted
	case r.CheckOut != nil:
		return StateCheckedOut
	case r.Breaks.HasOpen():
		return StateOnBreak
	default:
		return StateCheckedIn
	}
}

// NeedsReconcile reports whether a closed session is missing any derived value.
func (r Record) NeedsReconcile() bool {
	if r.CheckIn == nil || r.CheckOut == nil {
		return false
	}
	return r.TotalWorkedSeconds == nil || r.LowTimeFlag == nil || r.ExtraTimeFlag == nil
}

// SetDerived stores worked seconds and flags on the record.
func (r *Record) SetDerived(worked int64, flags Flags) {
	r.TotalWorkedSeconds = &worked
	r.LowTimeFlag = &flags.LowTime
	r.ExtraTimeFlag = &flags.ExtraTime
}

// Clone returns a deep copy so callers can mutate without aliasing stored state.
func (r Record) Clone() Record {
	c := r
	c.CheckIn = clonePtr(r.CheckIn)
	c.CheckOut = clonePtr(r.CheckOut)
	c.TotalWorkedSeconds = clonePtr(r.TotalWorkedSeconds)
	c.LowTimeFlag = clonePtr(r.LowTimeFlag)
	c.ExtraTimeFlag = clonePtr(r.ExtraTimeFlag)
	c.Location = clonePtr(r.Location)
	c.Notes = clonePtr(r.Notes)
	c.Breaks = r.Breaks.clone()
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
