// Package summary aggregates appointments over a date range.
package summary

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/shinedesk/detailer/internal/appointment"
	"github.com/shinedesk/detailer/internal/dateutil"
)

// DaySummary holds the statistics of one date in the range.
type DaySummary struct {
	Date  time.Time
	Stats appointment.DayStats
}

// Summary holds aggregated data for a date range.
type Summary struct {
	Start        time.Time
	End          time.Time
	Days         []DaySummary // one entry per date, empty days included
	Totals       appointment.DayStats
	Appointments []*appointment.Appointment
}

// Summarize aggregates the appointments dated within [start, end].
// Appointments outside the range are ignored.
func Summarize(start, end time.Time, appts []*appointment.Appointment) *Summary {
	start = dateutil.TruncateToDay(start)
	end = dateutil.TruncateToDay(end)

	s := &Summary{Start: start, End: end}
	n := dateutil.DaysBetween(start, end) + 1
	if n <= 0 {
		return s
	}

	byDay := make([][]*appointment.Appointment, n)
	for _, a := range appts {
		if a == nil {
			continue
		}
		i := dateutil.DaysBetween(start, a.Date)
		if i < 0 || i >= n {
			continue
		}
		byDay[i] = append(byDay[i], a)
		s.Appointments = append(s.Appointments, a)
	}

	s.Days = make([]DaySummary, n)
	for i := range n {
		stats := appointment.Tally(byDay[i])
		s.Days[i] = DaySummary{Date: start.AddDate(0, 0, i), Stats: stats}
		s.Totals = s.Totals.Merge(stats)
	}

	return s
}

// BuildRange loads appointments for [start, end] and summarizes them.
func BuildRange(ctx context.Context, repo appointment.Repository, start, end time.Time) (*Summary, error) {
	appts, err := repo.ListAppointmentsByDateRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetching appointments: %w", err)
	}
	return Summarize(start, end, appts), nil
}

// Busiest returns the day with the most booked minutes; earlier days win
// ties. ok is false when the range has no work at all.
func (s *Summary) Busiest() (day DaySummary, ok bool) {
	for _, d := range s.Days {
		if d.Stats.BookedMinutes > day.Stats.BookedMinutes {
			day, ok = d, true
		}
	}
	return day, ok
}

// WorkingDays returns the number of days with at least one job.
func (s *Summary) WorkingDays() int {
	n := 0
	for _, d := range s.Days {
		if d.Stats.Jobs() > 0 {
			n++
		}
	}
	return n
}

// FormatCents renders an amount of cents as dollars, e.g. "$1,234.50".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%s.%02d", sign, humanize.Comma(cents/100), cents%100)
}

// FormatMinutes renders a duration in minutes as "3h 30m".
func FormatMinutes(minutes int) string {
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh %dm", h, m)
	}
}
