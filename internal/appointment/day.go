package appointment

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/shinedesk/detailer/internal/dateutil"
)

// Day holds all appointments for a single date.
type Day struct {
	Date         time.Time
	appointments []*Appointment // sorted by start time, then ID
}

// NewDay creates a Day for the given date.
func NewDay(date time.Time) *Day {
	return &Day{
		Date:         dateutil.TruncateToDay(date),
		appointments: make([]*Appointment, 0),
	}
}

// NewDayWithAppointments creates a Day from a slice of appointments.
// Returns an error if two time-blocking appointments overlap.
func NewDayWithAppointments(date time.Time, appts []*Appointment) (*Day, error) {
	d := NewDay(date)
	for _, a := range appts {
		if err := d.Add(a); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Appointments returns a copy of the appointment slice.
func (d *Day) Appointments() []*Appointment {
	return slices.Clone(d.appointments)
}

// Values returns the appointments by value, in start order, ready to hand to
// the slot allocator.
func (d *Day) Values() []Appointment {
	out := make([]Appointment, 0, len(d.appointments))
	for _, a := range d.appointments {
		out = append(out, *a)
	}
	return out
}

// Add adds an appointment, keeping the slice ordered by start time.
// Returns ErrOverlap if a time-blocking appointment collides with another.
func (d *Day) Add(a *Appointment) error {
	if a == nil {
		return nil
	}

	if a.BlocksTime() {
		if other := d.FindOverlapping(a); other != nil {
			return fmt.Errorf("%w: %q (%s-%s) conflicts with %q (%s-%s)",
				ErrOverlap,
				a.Label(), a.StartTime, a.EndTime(),
				other.Label(), other.StartTime, other.EndTime(),
			)
		}
	}

	d.appointments = append(d.appointments, a)
	slices.SortStableFunc(d.appointments, func(x, y *Appointment) int {
		if c := cmp.Compare(x.StartMinutes(), y.StartMinutes()); c != 0 {
			return c
		}
		return cmp.Compare(x.ID, y.ID)
	})
	return nil
}

// FindOverlapping returns the first time-blocking appointment that overlaps
// a, ignoring a itself when it already has an ID.
func (d *Day) FindOverlapping(a *Appointment) *Appointment {
	for _, other := range d.appointments {
		if !other.BlocksTime() {
			continue
		}
		if a.ID != 0 && other.ID == a.ID {
			continue
		}
		start, otherStart := a.StartMinutes(), other.StartMinutes()
		if start < 0 || otherStart < 0 {
			continue
		}
		if TimesOverlap(start, a.EndMinutes(), otherStart, other.EndMinutes()) {
			return other
		}
	}
	return nil
}

// Remove removes an appointment by ID and returns it, or nil if not found.
func (d *Day) Remove(id int64) *Appointment {
	for i, a := range d.appointments {
		if a.ID == id {
			d.appointments = slices.Delete(d.appointments, i, i+1)
			return a
		}
	}
	return nil
}

// Booked returns only appointments that still block time.
func (d *Day) Booked() []*Appointment {
	var result []*Appointment
	for _, a := range d.appointments {
		if a.BlocksTime() {
			result = append(result, a)
		}
	}
	return result
}

// Len returns the number of appointments in the day.
func (d *Day) Len() int {
	return len(d.appointments)
}

// DayStats holds statistics for a single day.
type DayStats struct {
	Booked        int
	Completed     int
	Cancelled     int
	BookedMinutes int   // minutes of booked or completed work
	EarnedCents   int64 // completed work only
	PendingCents  int64 // booked but not yet completed
}

// Jobs returns the number of appointments that were not cancelled.
func (s DayStats) Jobs() int {
	return s.Booked + s.Completed
}

// Merge returns the sum of two sets of statistics.
func (s DayStats) Merge(o DayStats) DayStats {
	return DayStats{
		Booked:        s.Booked + o.Booked,
		Completed:     s.Completed + o.Completed,
		Cancelled:     s.Cancelled + o.Cancelled,
		BookedMinutes: s.BookedMinutes + o.BookedMinutes,
		EarnedCents:   s.EarnedCents + o.EarnedCents,
		PendingCents:  s.PendingCents + o.PendingCents,
	}
}

// Stats calculates statistics for the day.
func (d *Day) Stats() DayStats {
	return Tally(d.appointments)
}

// Tally counts appointments by status and sums their minutes and prices.
// Nil entries are ignored.
func Tally(appts []*Appointment) DayStats {
	var stats DayStats
	for _, a := range appts {
		if a == nil {
			continue
		}
		switch a.Status {
		case StatusCancelled:
			stats.Cancelled++
			continue
		case StatusCompleted:
			stats.Completed++
			stats.EarnedCents += a.PriceCents
		default:
			stats.Booked++
			stats.PendingCents += a.PriceCents
		}
		stats.BookedMinutes += max(a.DurationMinutes, 0)
	}
	return stats
}
