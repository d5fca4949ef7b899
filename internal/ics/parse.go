// Package ics imports appointments from iCalendar files.
package ics

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/shinedesk/detailer/internal/appointment"
	"github.com/shinedesk/detailer/internal/dateutil"
)

// ErrEmptyCalendar is returned when the payload has no events at all.
var ErrEmptyCalendar = errors.New("calendar has no events")

// SkipReason explains why an event was not imported.
type SkipReason string

const (
	SkipAllDay    SkipReason = "all-day event"
	SkipNoStart   SkipReason = "missing DTSTART"
	SkipRecurring SkipReason = "recurring event"
	SkipNoLength  SkipReason = "event has no duration"
	SkipBadTime   SkipReason = "unreadable date-time"
)

// Skipped is an event left out of an import.
type Skipped struct {
	UID     string
	Summary string
	Reason  SkipReason
}

// Import is the result of parsing a calendar.
type Import struct {
	Appointments []*appointment.Appointment
	Skipped      []Skipped
	// Adjusted lists UIDs of events cut short to end at midnight.
	Adjusted []string
}

// Parse reads an iCalendar payload and converts each timed VEVENT into a
// booked appointment with wall-clock times in loc.
func Parse(r io.Reader, loc *time.Location) (Import, error) {
	var out Import
	if loc == nil {
		loc = time.Local
	}

	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return out, fmt.Errorf("parsing calendar: %w", err)
	}

	events := cal.Events()
	if len(events) == 0 {
		return out, ErrEmptyCalendar
	}

	for _, ve := range events {
		a, adjusted, reason := convert(ve, loc)
		if reason != "" {
			out.Skipped = append(out.Skipped, Skipped{
				UID:     propValue(ve, ical.ComponentPropertyUniqueId),
				Summary: propValue(ve, ical.ComponentPropertySummary),
				Reason:  reason,
			})
			continue
		}
		if adjusted {
			out.Adjusted = append(out.Adjusted, a.ExternalUID)
		}
		out.Appointments = append(out.Appointments, a)
	}

	return out, nil
}

func convert(ve *ical.VEvent, loc *time.Location) (*appointment.Appointment, bool, SkipReason) {
	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil || dtStart.Value == "" {
		return nil, false, SkipNoStart
	}
	if isAllDay(dtStart) {
		return nil, false, SkipAllDay
	}
	if ve.GetProperty(ical.ComponentPropertyRrule) != nil {
		return nil, false, SkipRecurring
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return nil, false, SkipBadTime
	}
	start = start.In(loc)

	var minutes int
	if ve.GetProperty(ical.ComponentPropertyDtEnd) != nil {
		end, err := ve.GetEndAt()
		if err != nil {
			return nil, false, SkipBadTime
		}
		minutes = int(end.Sub(start) / time.Minute)
	} else if p := ve.GetProperty(ical.ComponentProperty(ical.PropertyDuration)); p != nil {
		d, err := parseDuration(p.Value)
		if err != nil {
			return nil, false, SkipBadTime
		}
		minutes = int(d / time.Minute)
	}
	if minutes <= 0 {
		return nil, false, SkipNoLength
	}

	startMinutes := start.Hour()*60 + start.Minute()
	adjusted := false
	if startMinutes+minutes > appointment.MinutesPerDay {
		minutes = appointment.MinutesPerDay - startMinutes
		adjusted = true
	}

	summary := strings.TrimSpace(propValue(ve, ical.ComponentPropertySummary))
	customer := customerName(ve)
	if customer == "" {
		customer = summary
	}
	if customer == "" {
		customer = "Imported event"
	}

	status := appointment.StatusBooked
	if strings.EqualFold(propValue(ve, ical.ComponentProperty(ical.PropertyStatus)), "CANCELLED") {
		status = appointment.StatusCancelled
	}

	return &appointment.Appointment{
		Date:            dateutil.TruncateToDay(start),
		StartTime:       fmt.Sprintf("%02d:%02d", start.Hour(), start.Minute()),
		DurationMinutes: minutes,
		Customer:        customer,
		Service:         summary,
		Address:         strings.TrimSpace(propValue(ve, ical.ComponentPropertyLocation)),
		Notes:           strings.TrimSpace(propValue(ve, ical.ComponentPropertyDescription)),
		Status:          status,
		ExternalUID:     propValue(ve, ical.ComponentPropertyUniqueId),
		CreatedAt:       time.Now(),
	}, adjusted, ""
}

// isAllDay reports whether DTSTART is a DATE rather than a DATE-TIME.
func isAllDay(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

// customerName prefers the first attendee, then the organizer.
func customerName(ve *ical.VEvent) string {
	for _, p := range ve.GetProperties(ical.ComponentProperty(ical.PropertyAttendee)) {
		if name := personName(p); name != "" {
			return name
		}
	}
	if p := ve.GetProperty(ical.ComponentProperty(ical.PropertyOrganizer)); p != nil {
		return personName(p)
	}
	return ""
}

func personName(p *ical.IANAProperty) string {
	if cn, ok := p.ICalParameters["CN"]; ok && len(cn) > 0 {
		if name := strings.Trim(strings.TrimSpace(cn[0]), `"`); name != "" {
			return name
		}
	}
	v := strings.TrimSpace(p.Value)
	if len(v) >= 7 && strings.EqualFold(v[:7], "mailto:") {
		v = v[7:]
	}
	return v
}

func propValue(ve *ical.VEvent, prop ical.ComponentProperty) string {
	if p := ve.GetProperty(prop); p != nil {
		return p.Value
	}
	return ""
}

// parseDuration parses an RFC 5545 DURATION value such as "PT1H30M" or "P1D".
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	if !strings.HasPrefix(s, "P") || len(s) < 3 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}

	var (
		total  time.Duration
		num    strings.Builder
		inTime bool
	)
	for _, c := range s[1:] {
		switch {
		case c >= '0' && c <= '9':
			num.WriteRune(c)
			continue
		case c == 'T':
			inTime = true
			continue
		}
		n, err := strconv.Atoi(num.String())
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		num.Reset()

		var unit time.Duration
		switch {
		case c == 'W' && !inTime:
			unit = 7 * 24 * time.Hour
		case c == 'D' && !inTime:
			unit = 24 * time.Hour
		case c == 'H' && inTime:
			unit = time.Hour
		case c == 'M' && inTime:
			unit = time.Minute
		case c == 'S' && inTime:
			unit = time.Second
		default:
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		total += time.Duration(n) * unit
	}
	if num.Len() > 0 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	if neg {
		total = -total
	}
	return total, nil
}
