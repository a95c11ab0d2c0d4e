package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
)

func closedBreak(start time.Time, minutes int) attendance.Break {
	end := start.Add(time.Duration(minutes) * time.Minute)
	d := int64(minutes) * 60
	return attendance.Break{Start: start, End: &end, Type: attendance.BreakStandard, DurationSeconds: &d}
}

func TestWorkedSeconds(t *testing.T) {
	in := onDay(9, 0)

	tests := []struct {
		name   string
		asOf   time.Time
		breaks attendance.Ledger
		want   int64
	}{
		{name: "no breaks", asOf: onDay(18, 0), want: 32400},
		{name: "one closed break", asOf: onDay(18, 0), breaks: attendance.Ledger{closedBreak(onDay(13, 0), 30)}, want: 30600},
		{
			name: "open break ignored",
			asOf: onDay(18, 0),
			breaks: attendance.Ledger{
				closedBreak(onDay(13, 0), 30),
				{Start: onDay(17, 0), Type: attendance.BreakExtra, Reason: "errand"},
			},
			want: 30600,
		},
		{name: "breaks exceed span", asOf: onDay(9, 10), breaks: attendance.Ledger{closedBreak(onDay(9, 0), 60)}, want: 0},
		{name: "asOf before check-in", asOf: onDay(8, 0), want: 0},
		{name: "sub-second truncated", asOf: onDay(9, 0).Add(1500 * time.Millisecond), want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WorkedSeconds(in, tt.asOf, tt.breaks))
		})
	}
}

func TestWorkedSeconds_Deterministic(t *testing.T) {
	in := onDay(9, 0)
	out := onDay(17, 45)
	breaks := attendance.Ledger{closedBreak(onDay(12, 0), 45), closedBreak(onDay(15, 0), 10)}

	first := WorkedSeconds(in, out, breaks)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, WorkedSeconds(in, out, breaks))
	}
	assert.Equal(t, int64(8*3600+45*60-55*60), first)
}

func TestFlagPolicy_Derive(t *testing.T) {
	p := DefaultFlagPolicy()
	withMargin := FlagPolicy{FullDaySeconds: 32400, HalfDaySeconds: 16200, OvertimeMarginSeconds: 1800}

	tests := []struct {
		name    string
		policy  FlagPolicy
		worked  int64
		halfDay bool
		want    attendance.Flags
	}{
		{name: "short day", policy: p, worked: 30600, want: attendance.Flags{LowTime: true}},
		{name: "exact full day", policy: p, worked: 32400, want: attendance.Flags{}},
		{name: "overtime", policy: p, worked: 32401, want: attendance.Flags{ExtraTime: true}},
		{name: "within margin", policy: withMargin, worked: 33000, want: attendance.Flags{}},
		{name: "beyond margin", policy: withMargin, worked: 34201, want: attendance.Flags{ExtraTime: true}},
		{name: "half day met", policy: p, worked: 16200, halfDay: true, want: attendance.Flags{}},
		{name: "half day short", policy: p, worked: 16199, halfDay: true, want: attendance.Flags{LowTime: true}},
		{name: "half day overtime", policy: p, worked: 40000, halfDay: true, want: attendance.Flags{ExtraTime: true}},
		{name: "zero", policy: p, worked: 0, want: attendance.Flags{LowTime: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.policy.Derive(tt.worked, tt.halfDay)
			assert.Equal(t, tt.want, got)
			assert.False(t, got.LowTime && got.ExtraTime)
		})
	}
}
