package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/shinedesk/detailer/internal/appointment"
	"github.com/shinedesk/detailer/internal/calendar"
	"github.com/shinedesk/detailer/internal/schedule"
)

const helpText = "←→ day  ↑↓ week/hour  [ ] month  g go to  t today  tab focus  c done  x cancel  u reopen  y copy  q quit"

// View renders the month pane next to the day pane.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	if m.width < monthPaneWidth+minDayWidth {
		return "Terminal too small"
	}

	header := m.renderHeader()
	footer := m.renderFooter()
	bodyH := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 3)

	monthPane := m.paneStyle(FocusMonth).
		Width(monthPaneWidth - 2).
		Height(bodyH - 2).
		Render(m.renderMonth())
	dayW := m.width - lipgloss.Width(monthPane)
	dayPane := m.paneStyle(FocusDay).
		Width(dayW - 2).
		Height(bodyH - 2).
		Render(m.renderDay(dayW-4, bodyH-2))

	body := lipgloss.JoinHorizontal(lipgloss.Top, monthPane, dayPane)
	return m.styles.App.Render(lipgloss.JoinVertical(lipgloss.Left, header, body, footer))
}

func (m Model) paneStyle(f Focus) lipgloss.Style {
	if m.focus == f {
		return m.styles.PaneFocused
	}
	return m.styles.Pane
}

func (m Model) renderHeader() string {
	title := m.styles.Title.Render("detailer")
	info := " " + m.month.Format("January 2006")
	if m.loading {
		info += "  loading..."
	}
	return title + m.styles.Status.Render(info)
}

func (m Model) renderFooter() string {
	switch {
	case m.mode == ModePrompt:
		return m.prompt.View()
	case m.statusMsg != "":
		if strings.HasPrefix(m.statusMsg, "Error:") {
			return m.styles.Error.Render(ansi.Truncate(m.statusMsg, m.width, "…"))
		}
		return m.styles.Status.Render(ansi.Truncate(m.statusMsg, m.width, "…"))
	default:
		return m.styles.Help.Render(ansi.Truncate(helpText, m.width, "…"))
	}
}

// renderMonth draws the month grid with a job count marker per day.
func (m Model) renderMonth() string {
	var b strings.Builder
	b.WriteString(m.styles.MonthTitle.Render(m.month.Format("January 2006")))
	b.WriteString("\n\n")

	for _, h := range calendar.WeekdayHeaders(m.builder.WeekStart) {
		b.WriteString(m.styles.Weekday.Render(h[:2]))
	}
	b.WriteString("\n")

	jobs := m.jobsPerDay()
	for _, row := range calendar.Rows(m.grid) {
		for _, d := range row {
			b.WriteString(m.monthCell(d, jobs[d.ISO()]))
		}
		b.WriteString("\n")
	}

	if n := jobs[m.selected.Format("2006-01-02")]; n > 0 {
		b.WriteString("\n")
		b.WriteString(m.styles.Help.Render(fmt.Sprintf("%d job(s) on %s", n, m.selected.Format("Jan 2"))))
	}
	return b.String()
}

func (m Model) monthCell(d calendar.Day, jobs int) string {
	text := fmt.Sprintf("%d", d.Date.Day())
	if jobs > 0 {
		text += "•"
	} else {
		text += " "
	}

	switch {
	case d.IsSelected:
		return m.styles.CellSelected.Render(text)
	case d.IsToday:
		return m.styles.CellToday.Render(text)
	case !d.IsCurrentMonth:
		return m.styles.CellOutside.Render(text)
	case jobs > 0:
		return m.styles.CellBusy.Render(text)
	default:
		return m.styles.Cell.Render(text)
	}
}

// renderDay draws as many hourly slots as fit in height rows.
func (m Model) renderDay(width, height int) string {
	title := m.selected.Format("Monday, January 2")
	if !m.config.IsWorkday(m.selected.Weekday()) {
		title += " (day off)"
	}
	lines := []string{m.styles.DayTitle.Render(ansi.Truncate(title, width, "…"))}

	problems := m.anomalyLines(width)
	rows := max(height-1-len(problems), 1)
	first, last := visibleHours(m.hour, rows)

	businessStart, businessEnd := m.config.BusinessHours()
	labelWidth := slotLabelWidth(m.day)
	for _, s := range m.day.Slots[first:last] {
		line := slotText(s, labelWidth)
		line = lipgloss.NewStyle().Width(width).Render(ansi.Truncate(line, width, "…"))

		switch {
		case m.focus == FocusDay && s.Hour == m.hour:
			line = m.styles.Cursor.Render(line)
		case s.Occupant != nil && s.Occupant.Status == appointment.StatusCompleted:
			line = m.styles.Completed.Render(line)
		case s.Occupant != nil:
			line = m.styles.Booked.Render(line)
		case s.IsContinuation:
			line = m.styles.Continuation.Render(line)
		case s.Hour < businessStart || s.Hour >= businessEnd:
			line = m.styles.HourMuted.Render(line)
		default:
			line = m.styles.Free.Render(line)
		}
		lines = append(lines, line)
	}

	lines = append(lines, problems...)
	return strings.Join(lines, "\n")
}

func (m Model) anomalyLines(width int) []string {
	if len(m.day.Anomalies) == 0 {
		return nil
	}
	lines := make([]string, 0, len(m.day.Anomalies))
	for _, an := range m.day.Anomalies {
		lines = append(lines, m.styles.Warning.Render(ansi.Truncate("! "+an.String(), width, "…")))
	}
	return lines
}

// visibleHours returns the [first, last) window of hours that keeps the
// cursor hour on screen.
func visibleHours(cursor, rows int) (first, last int) {
	if rows >= schedule.HoursPerDay {
		return 0, schedule.HoursPerDay
	}
	first = cursor - rows/3
	first = max(0, min(first, schedule.HoursPerDay-rows))
	return first, first + rows
}

func slotLabelWidth(res schedule.Result) int {
	w := 0
	for _, s := range res.Slots {
		w = max(w, len(s.Label))
	}
	return w
}

// slotText renders one slot without styling.
func slotText(s schedule.TimeSlot, labelWidth int) string {
	prefix := fmt.Sprintf("%*s │ ", labelWidth, s.Label)
	switch {
	case s.Occupant != nil:
		a := s.Occupant
		return prefix + fmt.Sprintf("#%d %s  %s-%s", a.ID, a.Label(), a.StartTime, a.EndTime())
	case s.IsContinuation:
		return prefix + "┃"
	default:
		return strings.TrimRight(prefix, " ")
	}
}

// dayText renders the booked slots of a day as plain text for the clipboard.
func dayText(res schedule.Result) string {
	var b strings.Builder
	b.WriteString(res.Date.Format("Monday, January 2, 2006"))
	b.WriteString("\n")
	width := slotLabelWidth(res)
	for _, s := range res.Slots {
		if s.Occupant == nil {
			continue
		}
		b.WriteString(slotText(s, width))
		b.WriteString("\n")
	}
	if len(res.Anomalies) > 0 {
		b.WriteString("Not placed:\n")
		for _, an := range res.Anomalies {
			b.WriteString("  ")
			b.WriteString(an.String())
			b.WriteString("\n")
		}
	}
	return b.String()
}
