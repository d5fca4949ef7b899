// Package schedule lays a day's appointments onto 24 hourly rows.
package schedule

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shinedesk/detailer/internal/appointment"
)

// HoursPerDay is the number of rows in a daily schedule.
const HoursPerDay = 24

// ErrInvalidLabelStyle is returned for an unknown clock format.
var ErrInvalidLabelStyle = errors.New("clock must be '24h' or '12h'")

// LabelStyle selects how hour rows are labelled.
type LabelStyle int

const (
	Label24Hour LabelStyle = iota // "09:00"
	Label12Hour                   // "9:00 AM"
)

// ParseLabelStyle parses "24h" or "12h".
func ParseLabelStyle(s string) (LabelStyle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "24h":
		return Label24Hour, nil
	case "12h":
		return Label12Hour, nil
	default:
		return Label24Hour, ErrInvalidLabelStyle
	}
}

// String returns the config spelling of the style.
func (s LabelStyle) String() string {
	if s == Label12Hour {
		return "12h"
	}
	return "24h"
}

// Format returns the wall-clock label for the start of hour.
func (s LabelStyle) Format(hour int) string {
	if s != Label12Hour {
		return fmt.Sprintf("%02d:00", hour)
	}
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	h := hour % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:00 %s", h, suffix)
}

// TimeSlot is one hourly row of a daily schedule.
//
// Occupant and SpanCount are set only on the row where an appointment
// starts. The rows it covers after that are continuation rows: they carry no
// occupant and cannot take a new booking.
type TimeSlot struct {
	Hour           int
	Label          string
	Occupant       *appointment.Appointment
	SpanCount      int
	IsContinuation bool
}

// IsBookable reports whether a new appointment may be placed in this row.
func (s TimeSlot) IsBookable() bool {
	return s.Occupant == nil && !s.IsContinuation
}

// IsOccupied reports whether an appointment starts in this row.
func (s TimeSlot) IsOccupied() bool {
	return s.Occupant != nil
}

// LastHour returns the final hour covered by the occupant, or Hour when the
// row is empty.
func (s TimeSlot) LastHour() int {
	if s.Occupant == nil {
		return s.Hour
	}
	return s.Hour + s.SpanCount - 1
}

// SpanCount returns how many hourly rows an appointment starting at
// startHour covers: its duration rounded up to whole hours, at least 1, and
// never past the last row of the day.
func SpanCount(durationMinutes, startHour int) int {
	span := 1
	if durationMinutes > 0 {
		span = durationMinutes / 60
		if durationMinutes%60 != 0 {
			span++
		}
	}
	return max(1, min(span, HoursPerDay-startHour))
}
