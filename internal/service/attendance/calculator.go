package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
)

// WorkedSeconds returns the seconds between checkIn and asOf minus every
// closed break, floored at zero. Open breaks are ignored. Sub-second
// remainders of the span are truncated.
//
// asOf is the check-out instant, whether freshly taken or read back from
// storage, so clock-out and later reconciliation agree.
func WorkedSeconds(checkIn, asOf time.Time, breaks attendance.Ledger) int64 {
	span := int64(asOf.Sub(checkIn) / time.Second)
	worked := span - breaks.ClosedSeconds()
	if worked < 0 {
		return 0
	}
	return worked
}
