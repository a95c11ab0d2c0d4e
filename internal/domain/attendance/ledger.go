package attendance

import (
	"strings"
	"time"
)

// Ledger is the ordered list of breaks taken during a session. Mutating
// methods return a new slice and leave the receiver untouched.
type Ledger []Break

// Open returns the break that has not ended yet, if any.
func (l Ledger) Open() (Break, bool) {
	for _, b := range l {
		if b.IsOpen() {
			return b, true
		}
	}
	return Break{}, false
}

func (l Ledger) HasOpen() bool {
	_, ok := l.Open()
	return ok
}

func (l Ledger) HasClosedStandard() bool {
	for _, b := range l {
		if b.Type == BreakStandard && !b.IsOpen() {
			return true
		}
	}
	return false
}

// ClosedSeconds sums the durations of all ended breaks.
func (l Ledger) ClosedSeconds() int64 {
	var total int64
	for _, b := range l {
		if b.IsOpen() {
			continue
		}
		if b.DurationSeconds != nil {
			total += *b.DurationSeconds
			continue
		}
		total += spanSeconds(b.Start, *b.End)
	}
	return total
}

// Append opens a new break at start. At most one break may be open, only
// one Standard break may be closed per day and Extra breaks need a reason.
func (l Ledger) Append(start time.Time, typ BreakType, reason string) (Ledger, error) {
	if !typ.Valid() {
		return nil, ErrInvalidBreakType
	}
	if l.HasOpen() {
		return nil, ErrBreakInProgress
	}
	if typ == BreakStandard && l.HasClosedStandard() {
		return nil, ErrStandardBreakTaken
	}

	b := Break{Start: start, Type: typ}
	if typ == BreakExtra {
		reason = strings.TrimSpace(reason)
		if reason == "" {
			return nil, ErrBreakReasonRequired
		}
		b.Reason = reason
	}

	next := l.clone()
	return append(next, b), nil
}

// CloseOpen ends the open break at end. Durations are clamped at zero.
func (l Ledger) CloseOpen(end time.Time) (Ledger, error) {
	next := l.clone()
	for i := range next {
		if !next[i].IsOpen() {
			continue
		}
		d := spanSeconds(next[i].Start, end)
		e := end
		next[i].End = &e
		next[i].DurationSeconds = &d
		return next, nil
	}
	return nil, ErrNoActiveBreak
}

// SyntheticStandard builds the single-break ledger used when an administrator
// records a total break duration: one Standard break starting a second after
// check-in and lasting the given minutes. It replaces any existing breaks.
func SyntheticStandard(checkIn time.Time, minutes int) Ledger {
	if minutes == 0 {
		return Ledger{}
	}
	start := checkIn.Add(time.Second)
	end := start.Add(time.Duration(minutes) * time.Minute)
	d := int64(minutes) * 60
	return Ledger{{Start: start, End: &end, Type: BreakStandard, DurationSeconds: &d}}
}

// EarliestStart returns the start of the first break, if any.
func (l Ledger) EarliestStart() (time.Time, bool) {
	var first time.Time
	for i, b := range l {
		if i == 0 || b.Start.Before(first) {
			first = b.Start
		}
	}
	return first, len(l) > 0
}

func (l Ledger) clone() Ledger {
	if l == nil {
		return Ledger{}
	}
	out := make(Ledger, len(l))
	for i, b := range l {
		out[i] = b
		out[i].End = clonePtr(b.End)
		out[i].DurationSeconds = clonePtr(b.DurationSeconds)
	}
	return out
}

func spanSeconds(from, to time.Time) int64 {
	s := int64(to.Sub(from) / time.Second)
	if s < 0 {
		return 0
	}
	return s
}
