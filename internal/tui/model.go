// Package tui provides the terminal user interface for detailer.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/shinedesk/detailer/internal/appointment"
	"github.com/shinedesk/detailer/internal/calendar"
	"github.com/shinedesk/detailer/internal/config"
	"github.com/shinedesk/detailer/internal/dateutil"
	"github.com/shinedesk/detailer/internal/schedule"
	"github.com/shinedesk/detailer/internal/tui/commands"
	"github.com/shinedesk/detailer/internal/tui/theme"
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModePrompt      // Typing a date to jump to
)

// Focus is the pane that receives navigation keys.
type Focus int

const (
	FocusMonth Focus = iota
	FocusDay
)

// Model is the main TUI model.
type Model struct {
	// Dependencies
	repo   appointment.Repository
	config *config.Config
	logger *zap.Logger
	now    func() time.Time

	// Theme and styles
	theme  *theme.Theme
	styles *Styles

	builder calendar.Builder
	labels  schedule.LabelStyle

	// State
	month    time.Time // first day of the displayed month
	selected time.Time
	hour     int // cursor row in the day pane
	focus    Focus
	mode     Mode
	loading  bool

	// Derived from state; see rebuild.
	appts []*appointment.Appointment
	grid  []calendar.Day
	day   schedule.Result

	// Components
	prompt textinput.Model

	// Terminal dimensions
	width  int
	height int

	// Messages
	statusMsg  string    // Temporary status/error message
	statusTime time.Time // When to clear message

	// Error state
	err error
}

// ModelOption configures optional model behavior.
type ModelOption func(*Model)

// WithClock overrides the current time.
func WithClock(now func() time.Time) ModelOption {
	return func(m *Model) {
		m.now = now
	}
}

// WithLogger sets the logger used for load errors and scheduling problems.
func WithLogger(logger *zap.Logger) ModelOption {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New creates a new TUI model showing today.
func New(repo appointment.Repository, cfg *config.Config, opts ...ModelOption) Model {
	ti := textinput.New()
	ti.Placeholder = "YYYY-MM-DD, tomorrow, friday..."
	ti.Prompt = "Go to: "
	ti.CharLimit = 32

	t, err := theme.Load(cfg.UI.Theme)
	if err != nil {
		t, _ = theme.Load(theme.DefaultName)
	}

	m := Model{
		repo:    repo,
		config:  cfg,
		logger:  zap.NewNop(),
		now:     time.Now,
		theme:   t,
		styles:  NewStyles(t),
		builder: calendar.Builder{WeekStart: cfg.WeekStart()},
		labels:  cfg.LabelStyle(),
		prompt:  ti,
		loading: true,
	}
	for _, opt := range opts {
		opt(&m)
	}

	m.selected = dateutil.TruncateToDay(m.now())
	m.month = dateutil.StartOfMonth(m.selected)
	m.hour, _ = cfg.BusinessHours()
	m.rebuild()

	return m
}

// Init loads the appointments for the current month.
func (m Model) Init() tea.Cmd {
	return m.loadCmd()
}

// Run starts the TUI.
func Run(repo appointment.Repository, cfg *config.Config, logger *zap.Logger) error {
	model := New(repo, cfg, WithLogger(logger))
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m Model) loadCmd() tea.Cmd {
	first, last := m.grid[0].Date, m.grid[len(m.grid)-1].Date
	return commands.LoadMonth(m.repo, m.month, first, last)
}

// rebuild recomputes the month grid and the selected day's slots. It must run
// whenever the month, the selection or the loaded appointments change.
func (m *Model) rebuild() {
	today := dateutil.TruncateToDay(m.now())
	selected := m.selected
	m.grid = m.builder.Build(m.month, today, &selected)

	var dayAppts []appointment.Appointment
	for _, a := range m.appts {
		if a.BlocksTime() && dateutil.SameDay(a.Date, m.selected) {
			dayAppts = append(dayAppts, *a)
		}
	}
	m.day = schedule.Allocate(m.selected, dayAppts, schedule.Options{Labels: m.labels})
	for _, an := range m.day.Anomalies {
		m.logger.Debug("appointment not placed",
			zap.String("date", m.selected.Format("2006-01-02")),
			zap.Stringer("anomaly", an),
		)
	}
}

// selectDate moves the selection, switching months and reloading as needed.
func (m *Model) selectDate(d time.Time) tea.Cmd {
	m.selected = dateutil.TruncateToDay(d)
	if dateutil.SameMonth(m.selected, m.month) {
		m.rebuild()
		return nil
	}
	m.month = dateutil.StartOfMonth(m.selected)
	m.loading = true
	m.rebuild()
	return m.loadCmd()
}

// shiftMonth moves by n months, keeping the day of month where possible.
func (m *Model) shiftMonth(n int) tea.Cmd {
	target := m.month.AddDate(0, n, 0)
	day := min(m.selected.Day(), dateutil.EndOfMonth(target).Day())
	return m.selectDate(time.Date(target.Year(), target.Month(), day, 0, 0, 0, 0, target.Location()))
}

// jobsPerDay counts time-blocking appointments by ISO date.
func (m Model) jobsPerDay() map[string]int {
	jobs := make(map[string]int)
	for _, a := range m.appts {
		if a.BlocksTime() {
			jobs[a.Date.Format("2006-01-02")]++
		}
	}
	return jobs
}

// appointmentAtCursor returns the appointment covering the cursor hour.
func (m Model) appointmentAtCursor() *appointment.Appointment {
	for h := m.hour; h >= 0; h-- {
		s := m.day.Slots[h]
		if s.Occupant != nil {
			if s.LastHour() >= m.hour {
				return s.Occupant
			}
			return nil
		}
		if !s.IsContinuation {
			return nil
		}
	}
	return nil
}
