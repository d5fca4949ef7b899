package schedule

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/shinedesk/detailer/internal/appointment"
)

var day = time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

func appt(id int64, start string, duration int) appointment.Appointment {
	return appointment.Appointment{
		ID:              id,
		Date:            day,
		StartTime:       start,
		DurationMinutes: duration,
		Customer:        fmt.Sprintf("Customer %d", id),
		Status:          appointment.StatusBooked,
	}
}

// checkShape verifies the properties every allocation must hold.
func checkShape(t *testing.T, slots []TimeSlot) {
	t.Helper()
	if len(slots) != HoursPerDay {
		t.Fatalf("got %d slots, want %d", len(slots), HoursPerDay)
	}
	claimed := make([]int64, HoursPerDay)
	for h, s := range slots {
		if s.Hour != h {
			t.Fatalf("slot %d has Hour %d", h, s.Hour)
		}
		if s.IsContinuation && s.Occupant != nil {
			t.Fatalf("hour %d: continuation with occupant", h)
		}
		if s.Occupant == nil {
			if s.SpanCount != 0 {
				t.Fatalf("hour %d: empty slot with span %d", h, s.SpanCount)
			}
			continue
		}
		if s.SpanCount < 1 || h+s.SpanCount > HoursPerDay {
			t.Fatalf("hour %d: span %d out of range", h, s.SpanCount)
		}
		for c := h; c < h+s.SpanCount; c++ {
			if claimed[c] != 0 {
				t.Fatalf("hour %d claimed by both #%d and #%d", c, claimed[c], s.Occupant.ID)
			}
			claimed[c] = s.Occupant.ID
			if c > h && !slots[c].IsContinuation {
				t.Fatalf("hour %d inside #%d span is not a continuation", c, s.Occupant.ID)
			}
		}
	}
	for h, s := range slots {
		if s.IsContinuation && claimed[h] == 0 {
			t.Fatalf("hour %d: continuation not covered by any span", h)
		}
	}
}

func TestBuildDailySlots_Empty(t *testing.T) {
	slots := BuildDailySlots(day, nil)
	checkShape(t, slots)
	for h, s := range slots {
		if !s.IsBookable() {
			t.Errorf("hour %d not bookable", h)
		}
		if want := fmt.Sprintf("%02d:00", h); s.Label != want {
			t.Errorf("hour %d label: got %q, want %q", h, s.Label, want)
		}
	}
}

func TestBuildDailySlots_Span(t *testing.T) {
	tests := []struct {
		name      string
		start     string
		duration  int
		hour      int
		wantSpan  int
		wantConts []int
	}{
		{"ninety minutes", "09:00", 90, 9, 2, []int{10}},
		{"exact hour", "14:00", 60, 14, 1, nil},
		{"three hours from half past", "07:30", 150, 7, 3, []int{8, 9}},
		{"clamped at midnight", "23:00", 120, 23, 1, nil},
		{"clamped late evening", "22:15", 240, 22, 2, []int{23}},
		{"zero duration", "06:00", 0, 6, 1, nil},
		{"negative duration", "06:00", -30, 6, 1, nil},
		{"one minute", "00:59", 1, 0, 1, nil},
		{"whole day", "00:00", 1440, 0, 24, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots := BuildDailySlots(day, []appointment.Appointment{appt(1, tt.start, tt.duration)})
			checkShape(t, slots)
			s := slots[tt.hour]
			if s.Occupant == nil || s.Occupant.ID != 1 {
				t.Fatalf("hour %d: occupant %v", tt.hour, s.Occupant)
			}
			if s.SpanCount != tt.wantSpan {
				t.Errorf("span: got %d, want %d", s.SpanCount, tt.wantSpan)
			}
			for _, c := range tt.wantConts {
				if !slots[c].IsContinuation {
					t.Errorf("hour %d should be a continuation", c)
				}
			}
			if tt.wantSpan == 24 {
				for h := 1; h < 24; h++ {
					if !slots[h].IsContinuation {
						t.Errorf("hour %d should be a continuation", h)
					}
				}
			}
		})
	}
}

func TestBuildDailySlots_MorningScenario(t *testing.T) {
	slots := BuildDailySlots(day, []appointment.Appointment{
		appt(1, "08:00", 60),
		appt(2, "10:30", 30),
	})
	checkShape(t, slots)

	if s := slots[8]; s.Occupant == nil || s.Occupant.ID != 1 || s.SpanCount != 1 {
		t.Errorf("hour 8: got %+v", s)
	}
	if s := slots[10]; s.Occupant == nil || s.Occupant.ID != 2 || s.SpanCount != 1 {
		t.Errorf("hour 10: got %+v", s)
	}
	for h, s := range slots {
		if h == 8 || h == 10 {
			continue
		}
		if !s.IsBookable() {
			t.Errorf("hour %d should be empty: %+v", h, s)
		}
	}
}

func TestBuildDailySlots_OccupantIsCopy(t *testing.T) {
	in := []appointment.Appointment{appt(1, "09:00", 60)}
	slots := BuildDailySlots(day, in)
	in[0].Customer = "changed"
	if slots[9].Occupant.Customer != "Customer 1" {
		t.Errorf("occupant follows caller mutation: %q", slots[9].Occupant.Customer)
	}
}

func TestAllocate_InvalidStart(t *testing.T) {
	res := Allocate(day, []appointment.Appointment{
		appt(1, "24:00", 60),
		appt(2, "9:00", 60),
		appt(3, "", 60),
		appt(4, "11:00", 60),
	}, Options{})
	checkShape(t, res.Slots)

	if res.Placed() != 1 || res.Slots[11].Occupant.ID != 4 {
		t.Fatalf("only #4 should be placed, got %d placed", res.Placed())
	}
	var dropped []int64
	for _, a := range res.Anomalies {
		if a.Kind != AnomalyInvalidStart {
			t.Errorf("unexpected anomaly %v", a)
		}
		if a.Hour != -1 {
			t.Errorf("invalid start anomaly hour: got %d", a.Hour)
		}
		dropped = append(dropped, a.AppointmentIDs...)
	}
	if !slices.Equal(dropped, []int64{1, 2, 3}) {
		t.Errorf("dropped: got %v, want [1 2 3]", dropped)
	}
}

func TestAllocate_SameHourConflict(t *testing.T) {
	tests := []struct {
		name       string
		appts      []appointment.Appointment
		wantWinner int64
		wantIDs    []int64
	}{
		{
			name:       "earliest minute wins",
			appts:      []appointment.Appointment{appt(1, "09:40", 30), appt(2, "09:10", 30)},
			wantWinner: 2,
			wantIDs:    []int64{2, 1},
		},
		{
			name:       "tie goes to input order",
			appts:      []appointment.Appointment{appt(5, "09:00", 30), appt(3, "09:00", 30), appt(4, "09:00", 30)},
			wantWinner: 5,
			wantIDs:    []int64{5, 3, 4},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Allocate(day, tt.appts, Options{})
			checkShape(t, res.Slots)
			if got := res.Slots[9].Occupant; got == nil || got.ID != tt.wantWinner {
				t.Fatalf("winner: got %v, want #%d", got, tt.wantWinner)
			}
			if !res.HasConflicts() || len(res.Anomalies) != 1 {
				t.Fatalf("anomalies: got %v", res.Anomalies)
			}
			a := res.Anomalies[0]
			if a.Kind != AnomalyConflict || a.Hour != 9 || !slices.Equal(a.AppointmentIDs, tt.wantIDs) {
				t.Errorf("anomaly: got %v", a)
			}
		})
	}
}

func TestAllocate_StartInsideSpan(t *testing.T) {
	res := Allocate(day, []appointment.Appointment{
		appt(1, "09:00", 180),
		appt(2, "10:15", 30),
		appt(3, "12:00", 60),
	}, Options{})
	checkShape(t, res.Slots)

	if !res.Slots[10].IsContinuation || res.Slots[10].Occupant != nil {
		t.Errorf("hour 10: got %+v", res.Slots[10])
	}
	if s := res.Slots[12]; s.Occupant == nil || s.Occupant.ID != 3 {
		t.Errorf("hour 12: got %+v", s)
	}
	if len(res.Anomalies) != 1 {
		t.Fatalf("anomalies: got %v", res.Anomalies)
	}
	a := res.Anomalies[0]
	if a.Kind != AnomalyConflict || a.Hour != 10 || !slices.Equal(a.AppointmentIDs, []int64{1, 2}) {
		t.Errorf("anomaly: got %v", a)
	}
}

func TestAllocate_OtherDate(t *testing.T) {
	other := appt(1, "09:00", 60)
	other.Date = day.AddDate(0, 0, 1)
	undated := appt(2, "11:00", 60)
	undated.Date = time.Time{}

	res := Allocate(day, []appointment.Appointment{other, undated}, Options{})
	checkShape(t, res.Slots)
	if res.Slots[9].Occupant != nil {
		t.Error("appointment from another date was placed")
	}
	if res.Slots[11].Occupant == nil {
		t.Error("undated appointment was not placed")
	}
	if len(res.Anomalies) != 1 || res.Anomalies[0].Kind != AnomalyOtherDate {
		t.Errorf("anomalies: got %v", res.Anomalies)
	}
}

func TestAllocate_TwelveHourLabels(t *testing.T) {
	res := Allocate(day, nil, Options{Labels: Label12Hour})
	want := map[int]string{0: "12:00 AM", 9: "9:00 AM", 12: "12:00 PM", 13: "1:00 PM", 23: "11:00 PM"}
	for h, label := range want {
		if got := res.Slots[h].Label; got != label {
			t.Errorf("hour %d: got %q, want %q", h, got, label)
		}
	}
}

func TestAllocate_BookableHours(t *testing.T) {
	res := Allocate(day, []appointment.Appointment{appt(1, "00:00", 22*60)}, Options{})
	if got := res.BookableHours(); !slices.Equal(got, []int{22, 23}) {
		t.Errorf("BookableHours: got %v, want [22 23]", got)
	}
}

func randomAppointments(r *rand.Rand, n int) []appointment.Appointment {
	appts := make([]appointment.Appointment, n)
	for i := range appts {
		start := fmt.Sprintf("%02d:%02d", r.IntN(24), r.IntN(60))
		if r.IntN(20) == 0 {
			start = fmt.Sprintf("%02d:%02d", 24+r.IntN(10), r.IntN(60))
		}
		appts[i] = appt(int64(i+1), start, r.IntN(400)-20)
	}
	return appts
}

func TestAllocate_RandomProperties(t *testing.T) {
	r := rand.New(rand.NewPCG(20240314, 1))
	for iter := range 2000 {
		appts := randomAppointments(r, r.IntN(12))
		res := Allocate(day, appts, Options{})
		checkShape(t, res.Slots)

		// Every appointment is either placed once or reported.
		seen := map[int64]int{}
		for _, s := range res.Slots {
			if s.Occupant != nil {
				seen[s.Occupant.ID]++
			}
		}
		for _, a := range res.Anomalies {
			ids := a.AppointmentIDs
			if a.Kind == AnomalyConflict {
				ids = ids[1:]
			}
			for _, id := range ids {
				seen[id]++
			}
		}
		for _, a := range appts {
			if seen[a.ID] != 1 {
				t.Fatalf("iteration %d: #%d accounted for %d times", iter, a.ID, seen[a.ID])
			}
		}

		again := Allocate(day, appts, Options{})
		for h := range res.Slots {
			x, y := res.Slots[h], again.Slots[h]
			if x.SpanCount != y.SpanCount || x.IsContinuation != y.IsContinuation || (x.Occupant == nil) != (y.Occupant == nil) {
				t.Fatalf("iteration %d: hour %d differs between runs", iter, h)
			}
			if x.Occupant != nil && x.Occupant.ID != y.Occupant.ID {
				t.Fatalf("iteration %d: hour %d occupant differs between runs", iter, h)
			}
		}
	}
}

func TestAllocate_NonOverlappingInputAllPlaced(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 7))
	for range 500 {
		// Walk forward through the day so no two appointments share an hour.
		var appts []appointment.Appointment
		hour := r.IntN(4)
		for id := int64(1); hour < 24; id++ {
			span := 1 + r.IntN(3)
			appts = append(appts, appt(id, fmt.Sprintf("%02d:%02d", hour, r.IntN(60)), span*60-r.IntN(60)))
			hour += span + r.IntN(3)
		}
		res := Allocate(day, appts, Options{})
		checkShape(t, res.Slots)
		if len(res.Anomalies) != 0 {
			t.Fatalf("anomalies for non-overlapping input: %v", res.Anomalies)
		}
		if res.Placed() != len(appts) {
			t.Fatalf("placed %d of %d", res.Placed(), len(appts))
		}
	}
}

func TestParseLabelStyle(t *testing.T) {
	tests := []struct {
		in      string
		want    LabelStyle
		wantErr bool
	}{
		{"24h", Label24Hour, false},
		{"", Label24Hour, false},
		{"12H", Label12Hour, false},
		{"ampm", Label24Hour, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLabelStyle(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err: got %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildDailySlots_HugeDuration(t *testing.T) {
	date := time.Date(2024, 3, 14, 0, 0, 0, 0, time.Local)
	appts := []appointment.Appointment{
		{ID: 1, Date: date, StartTime: "20:00", DurationMinutes: math.MaxInt},
	}

	slots := BuildDailySlots(date, appts)
	if slots[20].Occupant == nil || slots[20].SpanCount != 4 {
		t.Fatalf("hour 20: got span %d, want 4", slots[20].SpanCount)
	}
	for h := 21; h < HoursPerDay; h++ {
		if !slots[h].IsContinuation {
			t.Errorf("hour %d should be a continuation", h)
		}
	}
}

func TestSpanCount(t *testing.T) {
	tests := []struct {
		duration, start, want int
	}{
		{60, 0, 1},
		{61, 0, 2},
		{90, 9, 2},
		{0, 9, 1},
		{-5, 9, 1},
		{600, 20, 4},
		{120, 23, 1},
		{math.MaxInt, 20, 4},
		{math.MaxInt, 0, 24},
	}
	for _, tt := range tests {
		if got := SpanCount(tt.duration, tt.start); got != tt.want {
			t.Errorf("SpanCount(%d, %d): got %d, want %d", tt.duration, tt.start, got, tt.want)
		}
	}
}
