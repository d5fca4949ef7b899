// Package dateutil provides date parsing, week and month arithmetic.
package dateutil

import (
	"errors"
	"strings"
	"time"
)

// DefaultWeekStart is the first column of every calendar grid unless
// configuration says otherwise. It is fixed so that grids never depend on
// the host locale.
const DefaultWeekStart = time.Sunday

// Validation errors.
var (
	ErrInvalidDateFormat  = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidMonthFormat = errors.New("month must be in YYYY-MM format")
	ErrInvalidWeekday     = errors.New("unknown weekday")
	ErrEndDateBeforeStart = errors.New("end date must be on or after start date")
	ErrDateInPast         = errors.New("cannot schedule in the past")
)

var weekdayMap = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// DateRange represents a validated, inclusive date range.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange creates a new DateRange with validation.
// startDate can be empty (defaults to today) or in YYYY-MM-DD format.
// endDate can be empty (defaults to startDate) or in YYYY-MM-DD format.
func NewDateRange(startDate, endDate string) (*DateRange, error) {
	start, err := ParseDate(startDate)
	if err != nil {
		return nil, err
	}

	end := start
	if endDate != "" {
		end, err = ParseDate(endDate)
		if err != nil {
			return nil, err
		}
	}

	if end.Before(start) {
		return nil, ErrEndDateBeforeStart
	}

	return &DateRange{Start: start, End: end}, nil
}

// Days returns the number of calendar days in the range, both ends included.
func (r DateRange) Days() int {
	return DaysBetween(r.Start, r.End) + 1
}

// ParseDate parses a date string in YYYY-MM-DD format as local midnight.
// If the string is empty, returns today's date.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return TruncateToDay(time.Now()), nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return t, nil
}

// ParseMonth parses a YYYY-MM string and returns the first day of that month.
// If the string is empty, returns the first day of the current month.
func ParseMonth(s string) (time.Time, error) {
	if s == "" {
		return StartOfMonth(time.Now()), nil
	}
	t, err := time.ParseInLocation("2006-01", s, time.Local)
	if err != nil {
		return time.Time{}, ErrInvalidMonthFormat
	}
	return t, nil
}

// ParseWeekday parses a weekday name such as "sunday" (case-insensitive).
func ParseWeekday(s string) (time.Weekday, error) {
	wd, ok := weekdayMap[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return time.Sunday, ErrInvalidWeekday
	}
	return wd, nil
}

// TruncateToDay returns t with time set to midnight in t's location.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// SameMonth reports whether a and b fall in the same month of the same year.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// StartOfWeek returns the midnight of the first day of the week containing t,
// where weeks begin on weekStart.
func StartOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	t = TruncateToDay(t)
	offset := (int(t.Weekday()) - int(weekStart) + 7) % 7
	return t.AddDate(0, 0, -offset)
}

// EndOfWeek returns the midnight of the last day of the week containing t.
func EndOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	return StartOfWeek(t, weekStart).AddDate(0, 0, 6)
}

// WeekRange returns the first and last day of the week containing t.
func WeekRange(t time.Time, weekStart time.Weekday) (first, last time.Time) {
	first = StartOfWeek(t, weekStart)
	return first, first.AddDate(0, 0, 6)
}

// StartOfMonth returns the midnight of the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// EndOfMonth returns the midnight of the last day of t's month.
func EndOfMonth(t time.Time) time.Time {
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location())
}

// DaysBetween returns the number of whole calendar days from a to b.
// It counts dates, so it is unaffected by DST transitions.
func DaysBetween(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au).Hours() / 24)
}

// ParseRelativeDate parses a date string that can be:
//   - Empty string or "today": returns relativeTo date
//   - Absolute date: "2025-01-15" (YYYY-MM-DD)
//   - Keywords: "tomorrow", "yesterday"
//   - Weekday names: "monday" through "sunday" (next occurrence, always future)
//   - Next prefixed: "next-monday" through "next-sunday", "next-week"
//
// All inputs are case-insensitive. Unlike booking, browsing may look back,
// so past absolute dates are accepted unless futureOnly is set.
func ParseRelativeDate(s string, relativeTo time.Time, futureOnly bool) (time.Time, error) {
	today := TruncateToDay(relativeTo)
	input := strings.ToLower(strings.TrimSpace(s))

	switch input {
	case "", "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case "yesterday":
		if futureOnly {
			return time.Time{}, ErrDateInPast
		}
		return today.AddDate(0, 0, -1), nil
	case "next-week":
		return today.AddDate(0, 0, 7), nil
	}

	if strings.HasPrefix(input, "next-") {
		if targetDay, ok := weekdayMap[strings.TrimPrefix(input, "next-")]; ok {
			return nextWeekday(today, targetDay), nil
		}
		return time.Time{}, ErrInvalidDateFormat
	}

	if targetDay, ok := weekdayMap[input]; ok {
		return nextWeekday(today, targetDay), nil
	}

	result, err := time.ParseInLocation("2006-01-02", input, relativeTo.Location())
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}

	if futureOnly && result.Before(today) {
		return time.Time{}, ErrDateInPast
	}

	return result, nil
}

// nextWeekday returns the next occurrence of the given weekday after today.
// If today is the target weekday, returns one week from today.
func nextWeekday(today time.Time, target time.Weekday) time.Time {
	daysUntil := int(target) - int(today.Weekday())
	if daysUntil <= 0 {
		daysUntil += 7
	}
	return today.AddDate(0, 0, daysUntil)
}
