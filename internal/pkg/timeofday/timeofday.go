// Package timeofday parses the loose wall-clock strings administrators type
// when backfilling attendance ("9:00 AM", "18:30", "9").
package timeofday

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock time with minute precision.
type TimeOfDay struct {
	Hours   int
	Minutes int
}

// ParseError reports why a time string was rejected.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid time %q: %s", e.Input, e.Reason)
}

var pattern = regexp.MustCompile(`(?i)^(\d{1,2})(?::(\d{2}))?\s*(AM|PM)?$`)

// Parse accepts 12-hour ("9:00 AM", "12:15 am", "9 PM") and 24-hour
// ("09:00", "18:30", "9") forms. Minutes default to zero when omitted.
func Parse(s string) (TimeOfDay, error) {
	input := strings.TrimSpace(s)
	if input == "" {
		return TimeOfDay{}, &ParseError{Input: s, Reason: "empty value"}
	}

	m := pattern.FindStringSubmatch(input)
	if m == nil {
		return TimeOfDay{}, &ParseError{Input: s, Reason: "expected HH:MM with optional AM/PM"}
	}

	hours, _ := strconv.Atoi(m[1])
	minutes := 0
	if m[2] != "" {
		minutes, _ = strconv.Atoi(m[2])
	}
	if minutes > 59 {
		return TimeOfDay{}, &ParseError{Input: s, Reason: "minutes must be between 00 and 59"}
	}

	switch strings.ToUpper(m[3]) {
	case "AM", "PM":
		if hours < 1 || hours > 12 {
			return TimeOfDay{}, &ParseError{Input: s, Reason: "hour must be between 1 and 12 in 12-hour form"}
		}
		if hours == 12 {
			hours = 0
		}
		if strings.EqualFold(m[3], "PM") {
			hours += 12
		}
	default:
		if hours > 23 {
			return TimeOfDay{}, &ParseError{Input: s, Reason: "hour must be between 0 and 23"}
		}
	}

	return TimeOfDay{Hours: hours, Minutes: minutes}, nil
}

// On returns the instant at this time of day on the calendar day of d, in d's location.
func (t TimeOfDay) On(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hours, t.Minutes, 0, 0, d.Location())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hours, t.Minutes)
}
