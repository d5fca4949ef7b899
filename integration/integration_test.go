package integration

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shinedesk/detailer/internal/appointment"
	"github.com/shinedesk/detailer/internal/calendar"
	"github.com/shinedesk/detailer/internal/db"
	"github.com/shinedesk/detailer/internal/ics"
	"github.com/shinedesk/detailer/internal/schedule"
	"github.com/shinedesk/detailer/internal/summary"
)

// openRepo creates a fresh repository for each test with automatic cleanup.
func openRepo(t *testing.T) *db.SQLite {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	repo, err := db.New(dbPath)
	if err != nil {
		t.Fatalf("failed to open repo: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

// mustParseDate parses a date as local midnight or fails the test.
func mustParseDate(t *testing.T, s string) time.Time {
	t.Helper()
	date, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		t.Fatalf("failed to parse date %q: %v", s, err)
	}
	return date
}

// book creates and inserts an appointment.
func book(t *testing.T, repo *db.SQLite, customer, date, start string, minutes int, cents int64) *appointment.Appointment {
	t.Helper()
	a, err := appointment.New(customer, "", date, start, minutes, cents)
	if err != nil {
		t.Fatalf("failed to create appointment: %v", err)
	}
	if err := repo.CreateAppointment(context.Background(), a); err != nil {
		t.Fatalf("failed to insert appointment: %v", err)
	}
	return a
}

// allocate loads one day from the repository and lays it out.
func allocate(t *testing.T, repo *db.SQLite, date time.Time) schedule.Result {
	t.Helper()
	appts, err := repo.ListAppointmentsByDateRange(context.Background(), date, date)
	if err != nil {
		t.Fatalf("listing %s: %v", date.Format("2006-01-02"), err)
	}
	var blocking []appointment.Appointment
	for _, a := range appts {
		if a.BlocksTime() {
			blocking = append(blocking, *a)
		}
	}
	return schedule.Allocate(date, blocking, schedule.Options{})
}

func TestMonthGridCoversStoredAppointments(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	book(t, repo, "Early bird", "2024-02-25", "08:00", 60, 5000)
	book(t, repo, "Mid month", "2024-03-14", "09:00", 90, 15000)
	book(t, repo, "Trailing", "2024-04-06", "16:00", 60, 7500)
	book(t, repo, "Out of view", "2024-04-07", "10:00", 60, 7500)

	month := mustParseDate(t, "2024-03-01")
	days := calendar.Builder{WeekStart: time.Sunday}.Build(month, mustParseDate(t, "2024-03-14"), nil)
	if len(days) != 42 {
		t.Fatalf("grid has %d cells, want 42", len(days))
	}

	appts, err := repo.ListAppointmentsByDateRange(ctx, days[0].Date, days[len(days)-1].Date)
	if err != nil {
		t.Fatalf("listing grid range: %v", err)
	}
	if len(appts) != 3 {
		t.Fatalf("expected 3 appointments inside the grid, got %d", len(appts))
	}

	for _, a := range appts {
		idx := calendar.IndexOf(days, a.Date)
		if idx < 0 {
			t.Errorf("%s on %s has no grid cell", a.Customer, a.Date.Format("2006-01-02"))
			continue
		}
		inMonth := a.Date.Month() == time.March
		if days[idx].IsCurrentMonth != inMonth {
			t.Errorf("%s: IsCurrentMonth = %v, want %v", a.Customer, days[idx].IsCurrentMonth, inMonth)
		}
	}
}

func TestDayPipeline(t *testing.T) {
	repo := openRepo(t)

	book(t, repo, "Jane", "2025-01-20", "08:00", 60, 8000)
	book(t, repo, "Sam", "2025-01-20", "10:30", 30, 3000)
	book(t, repo, "Lee", "2025-01-20", "13:00", 150, 20000)

	res := allocate(t, repo, mustParseDate(t, "2025-01-20"))
	if len(res.Slots) != 24 || len(res.Anomalies) != 0 {
		t.Fatalf("got %d slots and %d anomalies", len(res.Slots), len(res.Anomalies))
	}

	want := map[int]string{8: "Jane", 10: "Sam", 13: "Lee"}
	for hour, s := range res.Slots {
		name, ok := want[hour]
		switch {
		case ok:
			if s.Occupant == nil || s.Occupant.Customer != name {
				t.Errorf("hour %d: want %s, got %+v", hour, name, s.Occupant)
			}
		case hour == 14 || hour == 15:
			if !s.IsContinuation {
				t.Errorf("hour %d should continue Lee's job", hour)
			}
		default:
			if !s.IsBookable() {
				t.Errorf("hour %d should be free, got %+v", hour, s)
			}
		}
	}
	if res.Slots[13].SpanCount != 3 {
		t.Errorf("Lee spans %d hours, want 3", res.Slots[13].SpanCount)
	}
}

func TestSameHourJobsReported(t *testing.T) {
	repo := openRepo(t)

	// Neither overlaps in minutes, so storage accepts both.
	first := book(t, repo, "First", "2025-01-20", "09:00", 20, 0)
	second := book(t, repo, "Second", "2025-01-20", "09:40", 20, 0)

	res := allocate(t, repo, mustParseDate(t, "2025-01-20"))
	if res.Slots[9].Occupant == nil || res.Slots[9].Occupant.ID != first.ID {
		t.Fatalf("hour 9 should hold #%d, got %+v", first.ID, res.Slots[9].Occupant)
	}
	if len(res.Anomalies) != 1 {
		t.Fatalf("expected 1 anomaly, got %v", res.Anomalies)
	}
	an := res.Anomalies[0]
	if an.Kind != schedule.AnomalyConflict || an.Hour != 9 {
		t.Errorf("anomaly = %v", an)
	}
	if len(an.AppointmentIDs) != 2 || an.AppointmentIDs[0] != first.ID || an.AppointmentIDs[1] != second.ID {
		t.Errorf("anomaly IDs = %v, want [%d %d]", an.AppointmentIDs, first.ID, second.ID)
	}
}

func TestFullWorkflow(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()
	date := mustParseDate(t, "2025-01-20")

	jane := book(t, repo, "Jane", "2025-01-20", "09:00", 120, 15000)
	sam := book(t, repo, "Sam", "2025-01-20", "13:00", 60, 4500)
	lee := book(t, repo, "Lee", "2025-01-21", "10:00", 60, 9900)

	if err := repo.SetStatus(ctx, jane.ID, appointment.StatusCompleted); err != nil {
		t.Fatalf("completing: %v", err)
	}
	if err := repo.SetStatus(ctx, lee.ID, appointment.StatusCancelled); err != nil {
		t.Fatalf("cancelling: %v", err)
	}

	// Sam moves into Jane's old slot: blocked even though she is done.
	err := repo.Reschedule(ctx, sam.ID, date, "10:00")
	if !errors.Is(err, appointment.ErrOverlap) {
		t.Fatalf("expected ErrOverlap, got %v", err)
	}
	// Sam moves into Lee's cancelled slot: allowed.
	if err := repo.Reschedule(ctx, sam.ID, date.AddDate(0, 0, 1), "10:00"); err != nil {
		t.Fatalf("rescheduling into cancelled slot: %v", err)
	}

	day2 := allocate(t, repo, date.AddDate(0, 0, 1))
	if occ := day2.Slots[10].Occupant; occ == nil || occ.ID != sam.ID {
		t.Errorf("hour 10 on the 21st should hold Sam, got %+v", occ)
	}

	s, err := summary.BuildRange(ctx, repo, date, date.AddDate(0, 0, 6))
	if err != nil {
		t.Fatalf("summarizing: %v", err)
	}
	if s.Totals.EarnedCents != 15000 || s.Totals.PendingCents != 4500 {
		t.Errorf("earned %d pending %d", s.Totals.EarnedCents, s.Totals.PendingCents)
	}
	if s.Totals.Cancelled != 1 || s.Totals.Jobs() != 2 {
		t.Errorf("totals = %+v", s.Totals)
	}
	if busiest, ok := s.Busiest(); !ok || !busiest.Date.Equal(date) {
		t.Errorf("busiest = %v, %v", busiest.Date, ok)
	}

	if err := repo.DeleteAppointment(ctx, lee.ID); err != nil {
		t.Fatalf("deleting: %v", err)
	}
	if _, err := repo.GetAppointment(ctx, lee.ID); !errors.Is(err, appointment.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestImportedCalendarIsScheduled(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	payload := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//detailer//test//EN",
		"BEGIN:VEVENT",
		"UID:a@example.com",
		"DTSTAMP:20250101T000000Z",
		"DTSTART:20250120T090000Z",
		"DTEND:20250120T110000Z",
		"SUMMARY:Ceramic coat",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:b@example.com",
		"DTSTAMP:20250101T000000Z",
		"DTSTART:20250120T140000Z",
		"DURATION:PT45M",
		"SUMMARY:Quick wash",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	imp, err := ics.Parse(strings.NewReader(payload), time.UTC)
	if err != nil {
		t.Fatalf("parsing: %v", err)
	}
	if len(imp.Appointments) != 2 {
		t.Fatalf("expected 2 appointments, got %d (skipped %v)", len(imp.Appointments), imp.Skipped)
	}
	if err := repo.CreateAppointments(ctx, imp.Appointments); err != nil {
		t.Fatalf("storing: %v", err)
	}

	// The same batch again collides with what is already stored.
	if err := repo.CreateAppointments(ctx, imp.Appointments); err == nil {
		t.Error("expected re-import of the same UIDs to fail")
	}

	date := imp.Appointments[0].Date
	res := allocate(t, repo, date)
	if res.Placed() != 2 {
		t.Fatalf("placed %d, want 2", res.Placed())
	}
	if res.Slots[9].SpanCount != 2 || !res.Slots[10].IsContinuation {
		t.Errorf("ceramic coat should span 9-10: %+v", res.Slots[9])
	}
	if occ := res.Slots[14].Occupant; occ == nil || occ.Service != "Quick wash" || occ.EndTime() != "14:45" {
		t.Errorf("hour 14 = %+v", occ)
	}
}
