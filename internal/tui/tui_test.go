package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/shinedesk/detailer/internal/appointment"
	"github.com/shinedesk/detailer/internal/config"
	"github.com/shinedesk/detailer/internal/tui/commands"
)

var testNow = time.Date(2024, 3, 14, 10, 0, 0, 0, time.Local)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

type stubRepo struct {
	appointment.Repository
	statusID int64
	status   appointment.Status
}

func (s *stubRepo) SetStatus(_ context.Context, id int64, status appointment.Status) error {
	s.statusID, s.status = id, status
	return nil
}

func day(y int, mo time.Month, d int) time.Time {
	return time.Date(y, mo, d, 0, 0, 0, 0, time.Local)
}

func newTestModel(t *testing.T, repo appointment.Repository) Model {
	t.Helper()
	return New(repo, config.Default(), WithClock(func() time.Time { return testNow }))
}

// loaded feeds the model a month of appointments.
func loaded(t *testing.T, m Model, appts ...*appointment.Appointment) Model {
	t.Helper()
	return update(t, m, commands.MonthLoadedMsg{Month: m.month, Appointments: appts})
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(Model)
	if !ok {
		t.Fatalf("Update returned %T", updated)
	}
	return model
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		var updated tea.Model
		updated, cmd = m.Update(msg)
		m = updated.(Model)
	}
	return m, cmd
}

func testAppointments() []*appointment.Appointment {
	return []*appointment.Appointment{
		{ID: 1, Date: day(2024, 3, 14), StartTime: "09:00", DurationMinutes: 90, Customer: "Jane", Service: "Wash", Status: appointment.StatusBooked},
		{ID: 2, Date: day(2024, 3, 14), StartTime: "13:00", DurationMinutes: 60, Customer: "Sam", Status: appointment.StatusCancelled},
		{ID: 3, Date: day(2024, 3, 20), StartTime: "08:00", DurationMinutes: 60, Customer: "Lee", Status: appointment.StatusBooked},
	}
}

func TestNew(t *testing.T) {
	m := newTestModel(t, nil)

	if !m.month.Equal(day(2024, 3, 1)) {
		t.Errorf("month = %v, want March 2024", m.month)
	}
	if !m.selected.Equal(day(2024, 3, 14)) {
		t.Errorf("selected = %v, want today", m.selected)
	}
	if len(m.grid) != 42 {
		t.Fatalf("grid has %d cells, want 42", len(m.grid))
	}
	if !m.grid[0].Date.Equal(day(2024, 2, 25)) || !m.grid[41].Date.Equal(day(2024, 4, 6)) {
		t.Errorf("grid spans %v..%v, want Feb 25..Apr 6", m.grid[0].Date, m.grid[41].Date)
	}
	if len(m.day.Slots) != 24 {
		t.Errorf("day has %d slots, want 24", len(m.day.Slots))
	}
	if m.hour != 8 {
		t.Errorf("cursor hour = %d, want business start 8", m.hour)
	}
	if !m.loading {
		t.Error("model should be loading until the first month arrives")
	}
}

func TestMonthLoaded(t *testing.T) {
	m := loaded(t, newTestModel(t, nil), testAppointments()...)

	if m.loading {
		t.Error("loading should be cleared")
	}
	if occ := m.day.Slots[9].Occupant; occ == nil || occ.ID != 1 {
		t.Fatalf("slot 9 occupant = %+v, want #1", occ)
	}
	if !m.day.Slots[10].IsContinuation {
		t.Error("slot 10 should continue #1")
	}
	if m.day.Slots[13].Occupant != nil {
		t.Error("cancelled appointment should not occupy a slot")
	}

	jobs := m.jobsPerDay()
	if jobs["2024-03-14"] != 1 || jobs["2024-03-20"] != 1 {
		t.Errorf("jobsPerDay = %v", jobs)
	}
}

func TestMonthLoaded_StaleIgnored(t *testing.T) {
	m := newTestModel(t, nil)
	m = update(t, m, commands.MonthLoadedMsg{Month: day(2024, 2, 1), Appointments: testAppointments()})

	if m.appts != nil || !m.loading {
		t.Error("a load for another month should be dropped")
	}
}

func TestNavigation(t *testing.T) {
	tests := []struct {
		name      string
		keys      []string
		want      time.Time
		wantMonth time.Time
		wantLoad  bool
	}{
		{"next day", []string{"l"}, day(2024, 3, 15), day(2024, 3, 1), false},
		{"previous day", []string{"h"}, day(2024, 3, 13), day(2024, 3, 1), false},
		{"next week", []string{"j"}, day(2024, 3, 21), day(2024, 3, 1), false},
		{"previous week", []string{"k"}, day(2024, 3, 7), day(2024, 3, 1), false},
		{"next month", []string{"]"}, day(2024, 4, 14), day(2024, 4, 1), true},
		{"previous month", []string{"["}, day(2024, 2, 14), day(2024, 2, 1), true},
		{"week crosses month", []string{"j", "j", "j"}, day(2024, 4, 4), day(2024, 4, 1), true},
		{"back to today", []string{"]", "]", "t"}, day(2024, 3, 14), day(2024, 3, 1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, cmd := press(t, loaded(t, newTestModel(t, nil)), tt.keys...)

			if !m.selected.Equal(tt.want) {
				t.Errorf("selected = %s, want %s", m.selected.Format("2006-01-02"), tt.want.Format("2006-01-02"))
			}
			if !m.month.Equal(tt.wantMonth) {
				t.Errorf("month = %s, want %s", m.month.Format("2006-01"), tt.wantMonth.Format("2006-01"))
			}
			if (cmd != nil) != tt.wantLoad {
				t.Errorf("reload command = %v, want %v", cmd != nil, tt.wantLoad)
			}
			if sel, ok := selectedCell(m); !ok || !sel.Equal(m.selected) {
				t.Errorf("grid selection = %v, want %v", sel, m.selected)
			}
		})
	}
}

func selectedCell(m Model) (time.Time, bool) {
	for _, d := range m.grid {
		if d.IsSelected {
			return d.Date, true
		}
	}
	return time.Time{}, false
}

func TestShiftMonth_ClampsDay(t *testing.T) {
	m := newTestModel(t, nil)
	m.selectDate(day(2024, 3, 31))

	m, _ = press(t, m, "[")
	if !m.selected.Equal(day(2024, 2, 29)) {
		t.Errorf("selected = %s, want 2024-02-29", m.selected.Format("2006-01-02"))
	}
	if len(m.grid) != 35 {
		t.Errorf("February 2024 grid has %d cells, want 35", len(m.grid))
	}
}

func TestGoToPrompt(t *testing.T) {
	m := loaded(t, newTestModel(t, nil))

	m, _ = press(t, m, "g")
	if m.mode != ModePrompt {
		t.Fatal("g should open the prompt")
	}
	m, _ = press(t, m, "2", "0", "2", "4", "-", "1", "2", "-", "2", "5")
	m, cmd := press(t, m, "enter")

	if m.mode != ModeNormal {
		t.Error("enter should close the prompt")
	}
	if !m.selected.Equal(day(2024, 12, 25)) || !m.month.Equal(day(2024, 12, 1)) {
		t.Errorf("selected %s in %s", m.selected.Format("2006-01-02"), m.month.Format("2006-01"))
	}
	if cmd == nil {
		t.Error("jumping months should reload")
	}
}

func TestGoToPrompt_RelativeAndInvalid(t *testing.T) {
	m := loaded(t, newTestModel(t, nil))

	m, _ = press(t, m, "g", "tomorrow", "enter")
	if !m.selected.Equal(day(2024, 3, 15)) {
		t.Errorf("selected = %s, want tomorrow", m.selected.Format("2006-01-02"))
	}

	m, _ = press(t, m, "g", "someday", "enter")
	if !strings.Contains(m.statusMsg, `Can't read "someday"`) {
		t.Errorf("statusMsg = %q", m.statusMsg)
	}
	if !m.selected.Equal(day(2024, 3, 15)) {
		t.Error("invalid input should not move the selection")
	}

	m, _ = press(t, m, "g", "2030-01-01", "esc")
	if m.mode != ModeNormal || !m.selected.Equal(day(2024, 3, 15)) {
		t.Error("esc should cancel the prompt")
	}
}

func TestChangeStatus(t *testing.T) {
	repo := &stubRepo{}
	m := loaded(t, newTestModel(t, repo), testAppointments()...)

	m, _ = press(t, m, "c")
	if !strings.Contains(m.statusMsg, "tab") {
		t.Errorf("month focus should ask for the day pane, got %q", m.statusMsg)
	}

	m, _ = press(t, m, "tab", "k", "k", "k", "k", "k", "k", "k", "k")
	if m.focus != FocusDay || m.hour != 0 {
		t.Fatalf("focus %v hour %d, want day pane at hour 0", m.focus, m.hour)
	}
	m.hour = 10 // continuation row of #1

	_, cmd := press(t, m, "c")
	if cmd == nil {
		t.Fatal("expected a save command")
	}
	msg, ok := cmd().(commands.StatusChangedMsg)
	if !ok || msg.ID != 1 || repo.status != appointment.StatusCompleted {
		t.Errorf("got %+v, repo saw #%d %s", msg, repo.statusID, repo.status)
	}

	m.hour = 11
	m, _ = press(t, m, "x")
	if !strings.Contains(m.statusMsg, "No appointment at 11:00") {
		t.Errorf("empty hour should not save; status %q", m.statusMsg)
	}
}

func TestStatusChangedReloads(t *testing.T) {
	m := loaded(t, newTestModel(t, nil))
	updated, cmd := m.Update(commands.StatusChangedMsg{ID: 1, Status: appointment.StatusCompleted})
	m = updated.(Model)

	if cmd == nil {
		t.Error("expected reload command")
	}
	if m.statusMsg != "#1 marked completed" {
		t.Errorf("statusMsg = %q", m.statusMsg)
	}
}

func TestQuit(t *testing.T) {
	_, cmd := press(t, newTestModel(t, nil), "q")
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestView(t *testing.T) {
	m := loaded(t, newTestModel(t, nil), testAppointments()...)
	m = update(t, m, tea.WindowSizeMsg{Width: 110, Height: 34})

	out := m.View()
	for _, want := range []string{
		"detailer",
		"March 2024",
		"Thursday, March 14",
		"09:00 │ #1 Jane · Wash  09:00-10:30",
		"10:00 │ ┃",
		"Su",
		"14•",
		"1 job(s) on Mar 14",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Sam") {
		t.Error("cancelled appointment should not be drawn")
	}
}

func TestView_DayOffAndSmallTerminal(t *testing.T) {
	m := loaded(t, newTestModel(t, nil))
	m, _ = press(t, m, "g", "2024-03-17", "enter") // a Sunday
	m = update(t, m, tea.WindowSizeMsg{Width: 110, Height: 34})
	if !strings.Contains(m.View(), "Sunday, March 17 (day off)") {
		t.Errorf("expected day off marker:\n%s", m.View())
	}

	m = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 10})
	if m.View() != "Terminal too small" {
		t.Errorf("got %q", m.View())
	}
}

func TestVisibleHours(t *testing.T) {
	tests := []struct {
		cursor, rows       int
		wantFirst, wantEnd int
	}{
		{cursor: 8, rows: 30, wantFirst: 0, wantEnd: 24},
		{cursor: 8, rows: 24, wantFirst: 0, wantEnd: 24},
		{cursor: 8, rows: 12, wantFirst: 4, wantEnd: 16},
		{cursor: 0, rows: 12, wantFirst: 0, wantEnd: 12},
		{cursor: 23, rows: 12, wantFirst: 12, wantEnd: 24},
	}

	for _, tt := range tests {
		first, end := visibleHours(tt.cursor, tt.rows)
		if first != tt.wantFirst || end != tt.wantEnd {
			t.Errorf("visibleHours(%d, %d) = %d, %d, want %d, %d", tt.cursor, tt.rows, first, end, tt.wantFirst, tt.wantEnd)
		}
		if tt.cursor < first || tt.cursor >= end {
			t.Errorf("cursor %d outside window %d..%d", tt.cursor, first, end)
		}
	}
}

func TestDayText(t *testing.T) {
	m := loaded(t, newTestModel(t, nil), testAppointments()...)
	got := dayText(m.day)

	want := "Thursday, March 14, 2024\n09:00 │ #1 Jane · Wash  09:00-10:30\n"
	if got != want {
		t.Errorf("dayText =\n%q\nwant\n%q", got, want)
	}
}
