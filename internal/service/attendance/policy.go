package attendance

import (
	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
)

const (
	DefaultFullDaySeconds int64 = 9 * 60 * 60
	DefaultHalfDaySeconds int64 = 4*60*60 + 30*60
)

// FlagPolicy derives low-time and extra-time flags from worked seconds.
type FlagPolicy struct {
	FullDaySeconds        int64
	HalfDaySeconds        int64
	OvertimeMarginSeconds int64
}

func DefaultFlagPolicy() FlagPolicy {
	return FlagPolicy{
		FullDaySeconds: DefaultFullDaySeconds,
		HalfDaySeconds: DefaultHalfDaySeconds,
	}
}

// Derive marks low time when worked falls short of the expected day (the
// half-day threshold when halfDay is set). Extra time is only considered
// when low time is not set, so the two flags never hold together.
func (p FlagPolicy) Derive(worked int64, halfDay bool) attendance.Flags {
	expected := p.FullDaySeconds
	if halfDay {
		expected = p.HalfDaySeconds
	}

	var f attendance.Flags
	f.LowTime = worked < expected
	if !f.LowTime {
		f.ExtraTime = worked > p.FullDaySeconds+p.OvertimeMarginSeconds
	}
	return f
}
