// Package db provides SQLite storage implementation.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/shinedesk/detailer/internal/appointment"
)

const dateLayout = "2006-01-02"

const selectColumns = `
	SELECT id, appt_date, start_time, duration_minutes, customer, service,
	       vehicle, address, notes, price_cents, status, external_uid, created_at
	FROM appointments
`

const insertQuery = `
	INSERT INTO appointments (
		appt_date, start_time, end_time, duration_minutes, customer, service,
		vehicle, address, notes, price_cents, status, external_uid, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// SQLite implements appointment.Repository using SQLite.
type SQLite struct {
	db *sql.DB
}

var _ appointment.Repository = (*SQLite)(nil)

// New creates a new SQLite repository and runs migrations.
func New(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// CreateAppointment adds a new appointment to the repository.
// Returns ErrOverlap if it collides with a booking on the same date.
func (s *SQLite) CreateAppointment(ctx context.Context, a *appointment.Appointment) error {
	if a.BlocksTime() {
		if err := checkOverlap(ctx, s.db, a.Date, a.StartTime, a.EndTime(), 0); err != nil {
			return err
		}
	}

	result, err := s.db.ExecContext(ctx, insertQuery, insertArgs(a)...)
	if err != nil {
		return fmt.Errorf("inserting appointment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	a.ID = id

	return nil
}

// CreateAppointments adds multiple appointments in a batch using a transaction.
// Returns ErrOverlap if any appointment collides with an existing booking or
// with another one in the batch; nothing is written in that case.
func (s *SQLite) CreateAppointments(ctx context.Context, appts []*appointment.Appointment) error {
	if len(appts) == 0 {
		return nil
	}

	if err := checkBatchOverlap(appts); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, a := range appts {
		if !a.BlocksTime() {
			continue
		}
		if err := checkOverlap(ctx, tx, a.Date, a.StartTime, a.EndTime(), 0); err != nil {
			return err
		}
	}

	stmt, err := tx.PrepareContext(ctx, insertQuery)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, a := range appts {
		result, err := stmt.ExecContext(ctx, insertArgs(a)...)
		if err != nil {
			return fmt.Errorf("inserting appointment for %q: %w", a.Customer, err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("getting last insert id: %w", err)
		}
		a.ID = id
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// GetAppointment retrieves an appointment by ID.
func (s *SQLite) GetAppointment(ctx context.Context, id int64) (*appointment.Appointment, error) {
	return getAppointment(ctx, s.db, id)
}

func getAppointment(ctx context.Context, q querier, id int64) (*appointment.Appointment, error) {
	a, err := scanAppointment(q.QueryRowContext(ctx, selectColumns+`WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: #%d", appointment.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying appointment: %w", err)
	}
	return a, nil
}

// ListAppointmentsByDateRange returns all appointments dated within the range
// (inclusive), ordered by date, start time and ID.
func (s *SQLite) ListAppointmentsByDateRange(ctx context.Context, start, end time.Time) ([]*appointment.Appointment, error) {
	query := selectColumns + `
		WHERE appt_date >= ? AND appt_date <= ?
		ORDER BY appt_date, start_time, id
	`

	rows, err := s.db.QueryContext(ctx, query, start.Format(dateLayout), end.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("querying appointments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var appts []*appointment.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning appointment: %w", err)
		}
		appts = append(appts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating appointments: %w", err)
	}

	return appts, nil
}

// SetStatus changes the status of an appointment.
// Reopening a cancelled appointment checks that its time is still free.
func (s *SQLite) SetStatus(ctx context.Context, id int64, status appointment.Status) error {
	if _, err := appointment.ParseStatus(string(status)); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	a, err := getAppointment(ctx, tx, id)
	if err != nil {
		return err
	}

	if a.IsCancelled() && status != appointment.StatusCancelled {
		if err := checkOverlap(ctx, tx, a.Date, a.StartTime, a.EndTime(), id); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE appointments SET status = ? WHERE id = ?`, status, id); err != nil {
		return fmt.Errorf("setting appointment status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Reschedule moves an appointment to a new date and start time, keeping its
// duration. Returns ErrOverlap if the new time collides with another booking.
func (s *SQLite) Reschedule(ctx context.Context, id int64, date time.Time, start string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	a, err := getAppointment(ctx, tx, id)
	if err != nil {
		return err
	}

	moved := *a
	moved.Date = date
	moved.StartTime = start
	if _, _, err := appointment.ParseClock(start); err != nil {
		return fmt.Errorf("start time: %w", err)
	}
	if moved.StartMinutes()+moved.DurationMinutes > appointment.MinutesPerDay {
		return appointment.ErrPastMidnight
	}

	if moved.BlocksTime() {
		if err := checkOverlap(ctx, tx, moved.Date, moved.StartTime, moved.EndTime(), id); err != nil {
			return err
		}
	}

	query := `UPDATE appointments SET appt_date = ?, start_time = ?, end_time = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, query, date.Format(dateLayout), moved.StartTime, moved.EndTime(), id); err != nil {
		return fmt.Errorf("rescheduling appointment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// DeleteAppointment removes an appointment permanently.
func (s *SQLite) DeleteAppointment(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting appointment: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("%w: #%d", appointment.ErrNotFound, id)
	}

	return nil
}

// Close releases database resources.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func insertArgs(a *appointment.Appointment) []any {
	status := a.Status
	if status == "" {
		status = appointment.StatusBooked
	}
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return []any{
		a.Date.Format(dateLayout),
		a.StartTime,
		a.EndTime(),
		a.DurationMinutes,
		a.Customer,
		a.Service,
		a.Vehicle,
		a.Address,
		a.Notes,
		a.PriceCents,
		status,
		a.ExternalUID,
		createdAt.Format(time.RFC3339),
	}
}

func scanAppointment(row rowScanner) (*appointment.Appointment, error) {
	var (
		a         appointment.Appointment
		apptDate  string
		createdAt string
	)

	err := row.Scan(
		&a.ID,
		&apptDate,
		&a.StartTime,
		&a.DurationMinutes,
		&a.Customer,
		&a.Service,
		&a.Vehicle,
		&a.Address,
		&a.Notes,
		&a.PriceCents,
		&a.Status,
		&a.ExternalUID,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	a.Date, err = parseDate(apptDate)
	if err != nil {
		return nil, fmt.Errorf("parsing appointment date: %w", err)
	}

	a.CreatedAt, err = parseDate(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created at: %w", err)
	}

	return &a, nil
}

// parseDate parses a date string in various formats SQLite might return.
// Date-only values (midnight) are parsed in local timezone to match time.Now() behavior.
func parseDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(dateLayout, s, time.Local); err == nil {
		return t, nil
	}

	// SQLite returns DATE columns as "2006-01-02T00:00:00Z"; treat as local midnight.
	if len(s) == 20 && s[10] == 'T' && s[19] == 'Z' && s[11:19] == "00:00:00" {
		if t, err := time.ParseInLocation(dateLayout, s[:10], time.Local); err == nil {
			return t, nil
		}
	}

	formats := []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %s", s)
}

// checkOverlap returns ErrOverlap if [start, end) collides with a booking on
// date that is not cancelled. excludeID skips the appointment being moved.
func checkOverlap(ctx context.Context, q querier, date time.Time, start, end string, excludeID int64) error {
	query := `
		SELECT id, start_time, end_time, customer
		FROM appointments
		WHERE appt_date = ?
		  AND status != ?
		  AND id != ?
		  AND start_time < ?
		  AND end_time > ?
		ORDER BY start_time
		LIMIT 1
	`

	var (
		id         int64
		existStart string
		existEnd   string
		customer   string
	)

	err := q.QueryRowContext(ctx, query,
		date.Format(dateLayout),
		appointment.StatusCancelled,
		excludeID,
		end,
		start,
	).Scan(&id, &existStart, &existEnd, &customer)

	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking overlap: %w", err)
	}

	return fmt.Errorf("%w: conflicts with #%d %q (%s-%s)",
		appointment.ErrOverlap, id, customer, existStart, existEnd)
}

// checkBatchOverlap checks for overlaps between appointments in the same batch.
func checkBatchOverlap(appts []*appointment.Appointment) error {
	for i := 0; i < len(appts); i++ {
		for j := i + 1; j < len(appts); j++ {
			a1, a2 := appts[i], appts[j]
			if !a1.BlocksTime() || !a2.BlocksTime() {
				continue
			}
			if a1.Overlaps(a2) {
				return fmt.Errorf("%w: %q (%s-%s) conflicts with %q (%s-%s)",
					appointment.ErrOverlap,
					a1.Customer, a1.StartTime, a1.EndTime(),
					a2.Customer, a2.StartTime, a2.EndTime(),
				)
			}
		}
	}
	return nil
}
