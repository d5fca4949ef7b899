// Package scheduler finds free time inside the configured working week.
package scheduler

import (
	"errors"
	"slices"
	"time"

	"github.com/shinedesk/detailer/internal/appointment"
	"github.com/shinedesk/detailer/internal/dateutil"
)

// Step is the granularity of suggested start times, in minutes.
const Step = 15

var (
	// ErrNoOpening is returned when nothing fits within the search horizon.
	ErrNoOpening = errors.New("no opening found")
	// ErrTooLong is returned for jobs longer than the working day.
	ErrTooLong = errors.New("job is longer than the working day")
)

// Scheduler knows the working days and hours of the business.
type Scheduler struct {
	workdays map[time.Weekday]bool
	dayStart int // minutes since midnight
	dayEnd   int
}

// Window is the part of a working day still open for booking.
type Window struct {
	Date  time.Time
	Start string
	End   string
}

// Minutes returns the length of the window.
func (w Window) Minutes() int {
	return max(appointment.TimeToMinutes(w.End)-appointment.TimeToMinutes(w.Start), 0)
}

// Opening is a free start time long enough for a job.
type Opening struct {
	Date  time.Time
	Start string
	End   string
}

// New creates a scheduler. Times are "HH:MM".
func New(workdays []time.Weekday, dayStart, dayEnd string) *Scheduler {
	wd := make(map[time.Weekday]bool, len(workdays))
	for _, d := range workdays {
		wd[d] = true
	}
	return &Scheduler{
		workdays: wd,
		dayStart: appointment.TimeToMinutes(dayStart),
		dayEnd:   appointment.TimeToMinutes(dayEnd),
	}
}

// NextWindow returns the first working window at or after now. Today's
// window starts at now rounded up to the next quarter hour.
func (s *Scheduler) NextWindow(now time.Time) (Window, bool) {
	day := dateutil.TruncateToDay(now)
	for i := range 8 {
		date := day.AddDate(0, 0, i)
		if !s.IsWorkday(date) {
			continue
		}
		start := s.dayStart
		if i == 0 {
			start = max(start, roundUp(minutesOf(now)))
		}
		if start < s.dayEnd {
			return Window{
				Date:  date,
				Start: appointment.MinutesToTime(start),
				End:   appointment.MinutesToTime(s.dayEnd),
			}, true
		}
	}
	return Window{}, false
}

// IsWorkday returns true if t falls on a configured workday.
func (s *Scheduler) IsWorkday(t time.Time) bool {
	return s.workdays[t.Weekday()]
}

// IsWithinWorkHours returns true if t is on a workday between day start and end.
func (s *Scheduler) IsWithinWorkHours(t time.Time) bool {
	if !s.IsWorkday(t) {
		return false
	}
	m := t.Hour()*60 + t.Minute()
	return m >= s.dayStart && m < s.dayEnd
}

// CanFit returns true if a job of the given length can start at start on
// date and finish by the end of the working day.
func (s *Scheduler) CanFit(date time.Time, start string, durationMinutes int) bool {
	if !s.IsWorkday(date) {
		return false
	}
	m := appointment.TimeToMinutes(start)
	return m >= s.dayStart && m < s.dayEnd && m+durationMinutes <= s.dayEnd
}

// NextOpening finds the earliest quarter-hour start at or after now where a
// job of durationMinutes fits inside working hours without touching any
// time-blocking appointment in booked. It looks at most horizonDays ahead.
func (s *Scheduler) NextOpening(now time.Time, durationMinutes int, booked []*appointment.Appointment, horizonDays int) (Opening, error) {
	durationMinutes = max(durationMinutes, 1)
	if durationMinutes > s.dayEnd-s.dayStart {
		return Opening{}, ErrTooLong
	}

	day := dateutil.TruncateToDay(now)
	for i := range max(horizonDays, 1) {
		date := day.AddDate(0, 0, i)
		if !s.IsWorkday(date) {
			continue
		}
		from := s.dayStart
		if i == 0 {
			from = max(from, roundUp(minutesOf(now)))
		}
		if start, ok := s.fit(from, durationMinutes, busyOn(date, booked)); ok {
			return Opening{
				Date:  date,
				Start: appointment.MinutesToTime(start),
				End:   appointment.MinutesToTime(start + durationMinutes),
			}, nil
		}
	}
	return Opening{}, ErrNoOpening
}

// fit walks the busy ranges of one day, sorted by start, looking for a gap.
func (s *Scheduler) fit(from, duration int, busy [][2]int) (int, bool) {
	cursor := from
	for _, b := range busy {
		if b[1] <= cursor {
			continue
		}
		if b[0] >= cursor+duration {
			break
		}
		cursor = roundUp(b[1])
	}
	return cursor, cursor+duration <= s.dayEnd
}

// busyOn returns the minute ranges blocked on date, ordered by start.
func busyOn(date time.Time, booked []*appointment.Appointment) [][2]int {
	var busy [][2]int
	for _, a := range booked {
		if !a.BlocksTime() || !dateutil.SameDay(a.Date, date) {
			continue
		}
		start := a.StartMinutes()
		if start < 0 {
			continue
		}
		busy = append(busy, [2]int{start, a.EndMinutes()})
	}
	slices.SortFunc(busy, func(x, y [2]int) int { return x[0] - y[0] })
	return busy
}

// minutesOf returns minutes since midnight, counting a partial minute as whole.
func minutesOf(t time.Time) int {
	m := t.Hour()*60 + t.Minute()
	if t.Second() > 0 || t.Nanosecond() > 0 {
		m++
	}
	return m
}

// roundUp rounds minutes up to the next Step boundary.
func roundUp(m int) int {
	return (m + Step - 1) / Step * Step
}
