package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/shinedesk/detailer/internal/tui/commands"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case commands.MonthLoadedMsg:
		// A slower load for a month we already left is dropped.
		if !msg.Month.Equal(m.month) {
			return m, nil
		}
		m.appts = msg.Appointments
		m.loading = false
		m.rebuild()
		return m, nil

	case commands.StatusChangedMsg:
		m.logger.Info("appointment status changed", zap.Int64("id", msg.ID), zap.String("status", string(msg.Status)))
		return m.setStatus(fmt.Sprintf("#%d marked %s", msg.ID, msg.Status), m.loadCmd())

	case commands.ErrMsg:
		m.err = msg.Err
		m.loading = false
		m.logger.Error("tui command failed", zap.Error(msg.Err))
		m.statusMsg = fmt.Sprintf("Error: %v", msg.Err)
		m.statusTime = m.now().Add(5 * time.Second)
		return m, nil

	case commands.StatusMsgCmd:
		return m.setStatus(msg.Msg, nil)

	case commands.ClearStatusMsg:
		if !m.now().Before(m.statusTime) {
			m.statusMsg = ""
		}
		return m, nil
	}

	if m.mode == ModePrompt {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}

	return m, nil
}

// setStatus shows a message for a few seconds, then clears it.
func (m Model) setStatus(text string, next tea.Cmd) (tea.Model, tea.Cmd) {
	m.statusMsg = text
	m.statusTime = m.now().Add(3 * time.Second)
	clearCmd := tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return commands.ClearStatusMsg{}
	})
	return m, tea.Batch(next, clearCmd)
}
