package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/shinedesk/detailer/internal/tui/theme"
)

// Widths of the fixed parts of the layout.
const (
	monthCellWidth = 5
	monthPaneWidth = monthCellWidth*7 + 4 // cells plus border and padding
	minDayWidth    = 24
)

// Styles holds all lipgloss styles for the TUI, derived from a theme.
type Styles struct {
	App    lipgloss.Style
	Title  lipgloss.Style
	Status lipgloss.Style
	Help   lipgloss.Style
	Error  lipgloss.Style

	Pane        lipgloss.Style
	PaneFocused lipgloss.Style

	// Month grid
	MonthTitle   lipgloss.Style
	Weekday      lipgloss.Style
	Cell         lipgloss.Style
	CellOutside  lipgloss.Style
	CellToday    lipgloss.Style
	CellSelected lipgloss.Style
	CellBusy     lipgloss.Style

	// Day slots
	DayTitle     lipgloss.Style
	HourLabel    lipgloss.Style
	HourMuted    lipgloss.Style
	Free         lipgloss.Style
	Booked       lipgloss.Style
	Completed    lipgloss.Style
	Continuation lipgloss.Style
	Cursor       lipgloss.Style
	Warning      lipgloss.Style
}

// NewStyles creates a Styles instance from a theme.
func NewStyles(t *theme.Theme) *Styles {
	p := theme.NewPalette(t)

	pane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.BgSelection).
		Padding(0, 1)

	return &Styles{
		App: lipgloss.NewStyle().
			Background(p.Bg).
			Foreground(p.Fg),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.TextOnAccent).
			Background(p.Accent).
			Padding(0, 1),
		Status: lipgloss.NewStyle().Foreground(p.Fg),
		Help:   lipgloss.NewStyle().Foreground(p.FgMuted),
		Error:  lipgloss.NewStyle().Foreground(p.Cancelled).Bold(true),

		Pane:        pane,
		PaneFocused: pane.BorderForeground(p.Accent),

		MonthTitle:   lipgloss.NewStyle().Bold(true).Foreground(p.Accent),
		Weekday:      lipgloss.NewStyle().Foreground(p.FgMuted).Width(monthCellWidth).Align(lipgloss.Right),
		Cell:         lipgloss.NewStyle().Foreground(p.Fg).Width(monthCellWidth).Align(lipgloss.Right),
		CellOutside:  lipgloss.NewStyle().Foreground(p.FgMuted).Faint(true).Width(monthCellWidth).Align(lipgloss.Right),
		CellToday:    lipgloss.NewStyle().Foreground(p.Today).Bold(true).Underline(true).Width(monthCellWidth).Align(lipgloss.Right),
		CellSelected: lipgloss.NewStyle().Foreground(p.TextOnSelection).Background(p.BgSelection).Bold(true).Width(monthCellWidth).Align(lipgloss.Right),
		CellBusy:     lipgloss.NewStyle().Foreground(p.Booked).Width(monthCellWidth).Align(lipgloss.Right),

		DayTitle:     lipgloss.NewStyle().Bold(true).Foreground(p.Fg),
		HourLabel:    lipgloss.NewStyle().Foreground(p.Fg),
		HourMuted:    lipgloss.NewStyle().Foreground(p.FgMuted),
		Free:         lipgloss.NewStyle().Foreground(p.FgMuted),
		Booked:       lipgloss.NewStyle().Foreground(p.TextOnBooked).Background(p.BookedBg),
		Completed:    lipgloss.NewStyle().Foreground(p.TextOnCompleted).Background(p.CompletedBg),
		Continuation: lipgloss.NewStyle().Foreground(p.Booked).Background(p.ContinuationBg),
		Cursor:       lipgloss.NewStyle().Foreground(p.TextOnSelection).Background(p.BgSelection).Bold(true),
		Warning:      lipgloss.NewStyle().Foreground(p.Warning),
	}
}
