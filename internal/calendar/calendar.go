// Package calendar builds month grids for a 7-column calendar view.
//
// A grid always contains whole weeks: it starts on the week-start day on or
// before the 1st of the month and ends on the last day of the week containing
// the month's final day, so its length is a multiple of 7. Filler days from
// the neighbouring months are included and flagged with IsCurrentMonth=false.
package calendar

import (
	"time"

	"github.com/shinedesk/detailer/internal/dateutil"
)

// DaysPerWeek is the number of columns in a month grid.
const DaysPerWeek = 7

// Day is one cell of a month grid.
type Day struct {
	Date           time.Time // local midnight
	IsCurrentMonth bool
	IsToday        bool
	IsSelected     bool
}

// ISO returns the cell date in YYYY-MM-DD form.
func (d Day) ISO() string {
	return d.Date.Format("2006-01-02")
}

// Builder builds month grids for a fixed week start.
// The zero value starts weeks on Sunday.
type Builder struct {
	WeekStart time.Weekday
}

// BuildMonthGrid builds the grid for the month containing month, with weeks
// starting on dateutil.DefaultWeekStart. today and selected are compared by
// calendar date only; selected may be nil.
func BuildMonthGrid(month, today time.Time, selected *time.Time) []Day {
	return Builder{WeekStart: dateutil.DefaultWeekStart}.Build(month, today, selected)
}

// Build builds the grid for the month containing month.
func (b Builder) Build(month, today time.Time, selected *time.Time) []Day {
	first := dateutil.StartOfMonth(month)
	last := dateutil.EndOfMonth(month)
	gridStart := dateutil.StartOfWeek(first, b.WeekStart)
	gridEnd := dateutil.EndOfWeek(last, b.WeekStart)

	n := dateutil.DaysBetween(gridStart, gridEnd) + 1
	days := make([]Day, 0, n)
	for i := range n {
		// AddDate on the date fields rather than adding 24h keeps every cell
		// at midnight across DST changes.
		date := gridStart.AddDate(0, 0, i)
		cell := Day{
			Date:           date,
			IsCurrentMonth: dateutil.SameMonth(date, first),
			IsToday:        dateutil.SameDay(date, today),
		}
		if selected != nil {
			cell.IsSelected = dateutil.SameDay(date, *selected)
		}
		days = append(days, cell)
	}
	return days
}

// Rows splits a grid into weeks of DaysPerWeek cells.
func Rows(days []Day) [][]Day {
	rows := make([][]Day, 0, len(days)/DaysPerWeek)
	for start := 0; start < len(days); start += DaysPerWeek {
		end := min(start+DaysPerWeek, len(days))
		rows = append(rows, days[start:end])
	}
	return rows
}

// WeekdayHeaders returns short weekday names in grid column order.
func WeekdayHeaders(weekStart time.Weekday) []string {
	headers := make([]string, DaysPerWeek)
	for i := range DaysPerWeek {
		headers[i] = time.Weekday((int(weekStart) + i) % DaysPerWeek).String()[:3]
	}
	return headers
}

// Selected returns the selected cell, if any.
func Selected(days []Day) (Day, bool) {
	for _, d := range days {
		if d.IsSelected {
			return d, true
		}
	}
	return Day{}, false
}

// IndexOf returns the grid position of date, or -1 when the date is not in
// the grid.
func IndexOf(days []Day, date time.Time) int {
	if len(days) == 0 {
		return -1
	}
	i := dateutil.DaysBetween(days[0].Date, date)
	if i < 0 || i >= len(days) {
		return -1
	}
	return i
}
