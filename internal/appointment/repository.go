package appointment

import (
	"context"
	"time"
)

// Repository defines the storage interface for appointments.
type Repository interface {
	// CreateAppointment adds a new appointment and sets its ID.
	// Returns ErrOverlap if it collides with another booking on the same date.
	CreateAppointment(ctx context.Context, a *Appointment) error

	// CreateAppointments adds multiple appointments atomically.
	CreateAppointments(ctx context.Context, appts []*Appointment) error

	// GetAppointment retrieves an appointment by ID.
	// Returns ErrNotFound if there is no such appointment.
	GetAppointment(ctx context.Context, id int64) (*Appointment, error)

	// ListAppointmentsByDateRange returns all appointments dated within the
	// range (inclusive), ordered by date then start time.
	ListAppointmentsByDateRange(ctx context.Context, start, end time.Time) ([]*Appointment, error)

	// SetStatus changes the status of an appointment.
	SetStatus(ctx context.Context, id int64, status Status) error

	// Reschedule moves an appointment to a new date and start time.
	// Returns ErrOverlap if the new time collides with another booking.
	Reschedule(ctx context.Context, id int64, date time.Time, start string) error

	// DeleteAppointment removes an appointment permanently.
	DeleteAppointment(ctx context.Context, id int64) error

	// Close releases any resources held by the repository.
	Close() error
}
