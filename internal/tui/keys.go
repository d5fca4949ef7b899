package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/shinedesk/detailer/internal/appointment"
	"github.com/shinedesk/detailer/internal/dateutil"
	"github.com/shinedesk/detailer/internal/schedule"
	"github.com/shinedesk/detailer/internal/tui/commands"
)

// handleKeyMsg handles keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.mode == ModePrompt {
		return m.handlePromptKeys(msg)
	}
	return m.handleNormalKeys(msg)
}

// handleNormalKeys handles keys in normal mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "tab":
		if m.focus == FocusMonth {
			m.focus = FocusDay
		} else {
			m.focus = FocusMonth
		}
	case "enter":
		m.focus = FocusDay
	case "esc":
		m.focus = FocusMonth

	// Day navigation
	case "h", "left":
		return m, m.selectDate(m.selected.AddDate(0, 0, -1))
	case "l", "right":
		return m, m.selectDate(m.selected.AddDate(0, 0, 1))
	case "j", "down":
		if m.focus == FocusDay {
			m.hour = min(m.hour+1, schedule.HoursPerDay-1)
			return m, nil
		}
		return m, m.selectDate(m.selected.AddDate(0, 0, 7))
	case "k", "up":
		if m.focus == FocusDay {
			m.hour = max(m.hour-1, 0)
			return m, nil
		}
		return m, m.selectDate(m.selected.AddDate(0, 0, -7))

	// Month navigation
	case "[", "pgup":
		return m, m.shiftMonth(-1)
	case "]", "pgdown":
		return m, m.shiftMonth(1)
	case "t":
		return m, m.selectDate(m.now())
	case "g":
		m.mode = ModePrompt
		m.prompt.SetValue("")
		return m, m.prompt.Focus()

	case "y":
		return m, commands.CopyToClipboard(dayText(m.day), m.selected.Format("Mon Jan 2"))

	// Status changes for the appointment under the cursor
	case "c":
		return m.changeStatus(appointment.StatusCompleted)
	case "x":
		return m.changeStatus(appointment.StatusCancelled)
	case "u":
		return m.changeStatus(appointment.StatusBooked)
	}

	return m, nil
}

func (m Model) changeStatus(status appointment.Status) (tea.Model, tea.Cmd) {
	if m.focus != FocusDay {
		return m.setStatus("Press tab to pick an appointment first", nil)
	}
	a := m.appointmentAtCursor()
	if a == nil {
		return m.setStatus("No appointment at "+m.day.Slots[m.hour].Label, nil)
	}
	if a.Status == status {
		return m, nil
	}
	return m, commands.SetStatus(m.repo, a.ID, status)
}

// handlePromptKeys handles the go-to-date prompt.
func (m Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = ModeNormal
		m.prompt.Blur()
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.prompt.Value())
		m.mode = ModeNormal
		m.prompt.Blur()
		if value == "" {
			return m, nil
		}
		date, err := dateutil.ParseRelativeDate(value, m.now(), false)
		if err != nil {
			return m.setStatus(fmt.Sprintf("Can't read %q as a date", value), nil)
		}
		return m, m.selectDate(date)
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}
