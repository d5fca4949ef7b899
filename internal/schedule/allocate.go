package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/shinedesk/detailer/internal/appointment"
	"github.com/shinedesk/detailer/internal/dateutil"
)

// AnomalyKind classifies input the allocator could not place.
type AnomalyKind int

const (
	// AnomalyInvalidStart: the start time is malformed or its hour is
	// outside 0-23. The appointment is not placed.
	AnomalyInvalidStart AnomalyKind = iota
	// AnomalyConflict: two or more appointments claim the same hour. The
	// first ID is the one that was placed; the others were not.
	AnomalyConflict
	// AnomalyOtherDate: the appointment is dated for a different day than
	// the one being allocated. It is not placed.
	AnomalyOtherDate
)

func (k AnomalyKind) String() string {
	switch k {
	case AnomalyInvalidStart:
		return "invalid_start"
	case AnomalyConflict:
		return "conflict"
	case AnomalyOtherDate:
		return "other_date"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Anomaly describes appointments left out of the schedule.
type Anomaly struct {
	Kind           AnomalyKind
	Hour           int // -1 when the start hour could not be determined
	AppointmentIDs []int64
	Detail         string
}

func (a Anomaly) String() string {
	ids := make([]string, len(a.AppointmentIDs))
	for i, id := range a.AppointmentIDs {
		ids[i] = fmt.Sprintf("#%d", id)
	}
	where := "unknown hour"
	if a.Hour >= 0 {
		where = fmt.Sprintf("hour %02d", a.Hour)
	}
	s := fmt.Sprintf("%s at %s: %s", a.Kind, where, strings.Join(ids, ", "))
	if a.Detail != "" {
		s += " (" + a.Detail + ")"
	}
	return s
}

// Options configures allocation.
type Options struct {
	Labels LabelStyle
}

// Result is a day's slots plus whatever could not be placed.
type Result struct {
	Date      time.Time
	Slots     []TimeSlot
	Anomalies []Anomaly
}

// HasConflicts reports whether any hour was claimed twice.
func (r Result) HasConflicts() bool {
	for _, a := range r.Anomalies {
		if a.Kind == AnomalyConflict {
			return true
		}
	}
	return false
}

// Placed returns the number of appointments that were given a row.
func (r Result) Placed() int {
	n := 0
	for _, s := range r.Slots {
		if s.Occupant != nil {
			n++
		}
	}
	return n
}

// BookableHours returns the hours that can take a new appointment.
func (r Result) BookableHours() []int {
	var hours []int
	for _, s := range r.Slots {
		if s.IsBookable() {
			hours = append(hours, s.Hour)
		}
	}
	return hours
}

// BuildDailySlots returns the 24 hourly rows for date with 24-hour labels.
// Appointments that cannot be placed are left out; use Allocate to find out
// which ones and why.
func BuildDailySlots(date time.Time, appts []appointment.Appointment) []TimeSlot {
	return Allocate(date, appts, Options{}).Slots
}

// Allocate places appointments on the 24 hourly rows of date.
//
// Each appointment lands on the row of its start hour and covers
// SpanCount rows. When several appointments start in the same free hour the
// one with the earliest start minute wins, ties going to input order. An
// appointment starting in an hour already covered by an earlier one is not
// placed. Every appointment left out is reported in Result.Anomalies.
//
// Appointments with a zero Date are taken to belong to date.
// Allocate reads its arguments only and is safe for concurrent use.
func Allocate(date time.Time, appts []appointment.Appointment, opts Options) Result {
	res := Result{
		Date:  dateutil.TruncateToDay(date),
		Slots: make([]TimeSlot, HoursPerDay),
	}

	var starts [HoursPerDay][]int // indexes into appts, in input order
	for i := range appts {
		a := &appts[i]
		if !a.Date.IsZero() && !dateutil.SameDay(a.Date, date) {
			res.Anomalies = append(res.Anomalies, Anomaly{
				Kind:           AnomalyOtherDate,
				Hour:           -1,
				AppointmentIDs: []int64{a.ID},
				Detail:         a.Date.Format("2006-01-02"),
			})
			continue
		}
		h, err := a.StartHour()
		if err != nil {
			res.Anomalies = append(res.Anomalies, Anomaly{
				Kind:           AnomalyInvalidStart,
				Hour:           -1,
				AppointmentIDs: []int64{a.ID},
				Detail:         fmt.Sprintf("start %q: %v", a.StartTime, err),
			})
			continue
		}
		starts[h] = append(starts[h], i)
	}

	// covering is the index of the appointment whose span reaches the
	// current hour, or -1. coveredThrough is the last hour it covers.
	covering, coveredThrough := -1, -1
	for hour := range HoursPerDay {
		slot := TimeSlot{Hour: hour, Label: opts.Labels.Format(hour)}
		candidates := starts[hour]

		if hour <= coveredThrough {
			slot.IsContinuation = true
			if len(candidates) > 0 {
				res.Anomalies = append(res.Anomalies, conflict(hour, appts, covering, candidates, "starts inside an earlier appointment"))
			}
			res.Slots[hour] = slot
			continue
		}

		if len(candidates) > 0 {
			winner := earliest(appts, candidates)
			occupant := appts[winner]
			slot.Occupant = &occupant
			slot.SpanCount = SpanCount(occupant.DurationMinutes, hour)
			covering, coveredThrough = winner, hour+slot.SpanCount-1

			if len(candidates) > 1 {
				res.Anomalies = append(res.Anomalies, conflict(hour, appts, winner, without(candidates, winner), "same start hour"))
			}
		}
		res.Slots[hour] = slot
	}

	return res
}

// earliest returns the candidate with the smallest start minute; the first
// in input order wins ties.
func earliest(appts []appointment.Appointment, candidates []int) int {
	best := candidates[0]
	for _, i := range candidates[1:] {
		if appts[i].StartMinutes() < appts[best].StartMinutes() {
			best = i
		}
	}
	return best
}

func without(candidates []int, skip int) []int {
	out := make([]int, 0, len(candidates)-1)
	for _, i := range candidates {
		if i != skip {
			out = append(out, i)
		}
	}
	return out
}

func conflict(hour int, appts []appointment.Appointment, holder int, losers []int, detail string) Anomaly {
	ids := make([]int64, 0, len(losers)+1)
	ids = append(ids, appts[holder].ID)
	for _, i := range losers {
		ids = append(ids, appts[i].ID)
	}
	return Anomaly{
		Kind:           AnomalyConflict,
		Hour:           hour,
		AppointmentIDs: ids,
		Detail:         detail,
	}
}
