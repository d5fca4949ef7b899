// Package appointment defines the detailer's appointment domain types.
package appointment

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shinedesk/detailer/internal/dateutil"
)

// Validation errors.
var (
	ErrEmptyCustomer     = errors.New("customer cannot be empty")
	ErrInvalidTimeFormat = errors.New("time must be in HH:MM format")
	ErrClockOutOfRange   = errors.New("time is outside 00:00-23:59")
	ErrInvalidDuration   = errors.New("duration must be a positive number of minutes")
	ErrInvalidPrice      = errors.New("price cannot be negative")
	ErrPastMidnight      = errors.New("appointment must end by midnight")
	ErrInvalidStatus     = errors.New("status must be 'booked', 'completed' or 'cancelled'")
)

// Domain errors.
var (
	ErrOverlap  = errors.New("appointment overlaps with an existing booking")
	ErrNotFound = errors.New("appointment not found")
)

// Status represents the state of an appointment.
type Status string

const (
	StatusBooked    Status = "booked"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// ParseStatus validates a status string.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusBooked:
		return StatusBooked, nil
	case StatusCompleted:
		return StatusCompleted, nil
	case StatusCancelled:
		return StatusCancelled, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Appointment is one booked job on the detailer's calendar.
// Customer, Service, Vehicle, Address and Notes are display payload; the
// schedule only reads Date, StartTime and DurationMinutes.
type Appointment struct {
	ID              int64
	Date            time.Time
	StartTime       string // zero-padded "HH:MM"; "9:00" does not parse
	DurationMinutes int

	Customer string
	Service  string
	Vehicle  string
	Address  string
	Notes    string

	PriceCents  int64
	Status      Status
	ExternalUID string // UID of the calendar event this was imported from
	CreatedAt   time.Time
}

// New creates a booked Appointment with validation.
// date can be empty (defaults to today) or in YYYY-MM-DD format.
func New(customer, service, date, start string, durationMinutes int, priceCents int64) (*Appointment, error) {
	customer = strings.TrimSpace(customer)
	if customer == "" {
		return nil, ErrEmptyCustomer
	}

	scheduledDate, err := dateutil.ParseDate(date)
	if err != nil {
		return nil, err
	}

	h, m, err := ParseClock(start)
	if err != nil {
		return nil, fmt.Errorf("start time: %w", err)
	}

	if durationMinutes <= 0 {
		return nil, ErrInvalidDuration
	}
	if priceCents < 0 {
		return nil, ErrInvalidPrice
	}
	if h*60+m+durationMinutes > MinutesPerDay {
		return nil, ErrPastMidnight
	}

	return &Appointment{
		Date:            scheduledDate,
		StartTime:       start,
		DurationMinutes: durationMinutes,
		Customer:        customer,
		Service:         strings.TrimSpace(service),
		PriceCents:      priceCents,
		Status:          StatusBooked,
		CreatedAt:       time.Now(),
	}, nil
}

// StartHour returns the hour of day the appointment starts in.
// Errors from ParseClock are returned unchanged, so an hour outside 0-23
// reports ErrClockOutOfRange.
func (a *Appointment) StartHour() (int, error) {
	h, _, err := ParseClock(a.StartTime)
	return h, err
}

// StartMinutes returns minutes since midnight of the start time, or -1 when
// the start time is invalid.
func (a *Appointment) StartMinutes() int {
	h, m, err := ParseClock(a.StartTime)
	if err != nil {
		return -1
	}
	return h*60 + m
}

// EndMinutes returns minutes since midnight of the end time, clamped to the
// end of the day. Returns -1 when the start time is invalid.
func (a *Appointment) EndMinutes() int {
	start := a.StartMinutes()
	if start < 0 {
		return -1
	}
	return start + min(max(a.DurationMinutes, 0), MinutesPerDay-start)
}

// EndTime returns the "HH:MM" end time.
func (a *Appointment) EndTime() string {
	end := a.EndMinutes()
	if end < 0 {
		return ""
	}
	if end == MinutesPerDay {
		return "24:00"
	}
	return MinutesToTime(end)
}

// Overlaps returns true if both appointments are on the same day and their
// time ranges intersect.
func (a *Appointment) Overlaps(other *Appointment) bool {
	if other == nil || !dateutil.SameDay(a.Date, other.Date) {
		return false
	}
	s1, s2 := a.StartMinutes(), other.StartMinutes()
	if s1 < 0 || s2 < 0 {
		return false
	}
	return TimesOverlap(s1, a.EndMinutes(), s2, other.EndMinutes())
}

// IsBooked returns true if the appointment is still upcoming work.
func (a *Appointment) IsBooked() bool {
	return a.Status == StatusBooked
}

// IsCompleted returns true if the job was done.
func (a *Appointment) IsCompleted() bool {
	return a.Status == StatusCompleted
}

// IsCancelled returns true if the appointment was cancelled.
func (a *Appointment) IsCancelled() bool {
	return a.Status == StatusCancelled
}

// BlocksTime reports whether the appointment occupies the calendar.
// Cancelled appointments free their time.
func (a *Appointment) BlocksTime() bool {
	return !a.IsCancelled()
}

// Label returns a one-line card title such as "Jane Doe · Full detail".
func (a *Appointment) Label() string {
	if a.Service == "" {
		return a.Customer
	}
	return a.Customer + " · " + a.Service
}
