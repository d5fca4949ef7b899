package appointment

import (
	"fmt"
	"strconv"
)

// MinutesPerDay is 24 hours * 60 minutes.
const MinutesPerDay = 24 * 60

// ParseClock parses a wall-clock "HH:MM" string.
// It returns ErrInvalidTimeFormat when the text is not two numeric fields
// separated by a colon, and ErrClockOutOfRange when the fields parse but the
// hour is outside 0-23 or the minute outside 0-59.
func ParseClock(s string) (hour, minute int, err error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, 0, ErrInvalidTimeFormat
	}
	hour, err = strconv.Atoi(s[0:2])
	if err != nil || !isDigits(s[0:2]) {
		return 0, 0, ErrInvalidTimeFormat
	}
	minute, err = strconv.Atoi(s[3:5])
	if err != nil || !isDigits(s[3:5]) {
		return 0, 0, ErrInvalidTimeFormat
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return hour, minute, fmt.Errorf("%w: %s", ErrClockOutOfRange, s)
	}
	return hour, minute, nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// TimeToMinutes converts "HH:MM" to minutes since midnight.
// Returns 0 for invalid input.
func TimeToMinutes(t string) int {
	h, m, err := ParseClock(t)
	if err != nil {
		return 0
	}
	return h*60 + m
}

// MinutesToTime converts minutes since midnight to "HH:MM" format,
// clamped to the same day.
func MinutesToTime(m int) string {
	if m < 0 {
		m = 0
	}
	if m >= MinutesPerDay {
		m = MinutesPerDay - 1
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// TimesOverlap returns true if two half-open minute ranges overlap.
// Two ranges overlap if: start1 < end2 AND start2 < end1
func TimesOverlap(start1, end1, start2, end2 int) bool {
	return start1 < end2 && start2 < end1
}
