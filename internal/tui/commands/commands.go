// Package commands provides TUI command constructors and message types.
package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/shinedesk/detailer/internal/appointment"
)

// MonthLoadedMsg is sent when the appointments behind a month grid are loaded.
type MonthLoadedMsg struct {
	Month        time.Time // first day of the month the load was for
	Appointments []*appointment.Appointment
}

// StatusChangedMsg is sent after an appointment's status was saved.
type StatusChangedMsg struct {
	ID     int64
	Status appointment.Status
}

// ErrMsg is sent when an error occurs.
type ErrMsg struct {
	Err error
}

// StatusMsgCmd is sent for temporary status messages.
type StatusMsgCmd struct {
	Msg string
}

// ClearStatusMsg is sent to clear the status message.
type ClearStatusMsg struct{}

// LoadMonth loads every appointment shown on a month grid, which runs from
// first to last inclusive.
func LoadMonth(repo appointment.Repository, month, first, last time.Time) tea.Cmd {
	return func() tea.Msg {
		appts, err := repo.ListAppointmentsByDateRange(context.Background(), first, last)
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("loading %s: %w", month.Format("January 2006"), err)}
		}
		return MonthLoadedMsg{Month: month, Appointments: appts}
	}
}

// SetStatus saves a new status for an appointment.
func SetStatus(repo appointment.Repository, id int64, status appointment.Status) tea.Cmd {
	return func() tea.Msg {
		if err := repo.SetStatus(context.Background(), id, status); err != nil {
			return ErrMsg{Err: err}
		}
		return StatusChangedMsg{ID: id, Status: status}
	}
}

// CopyToClipboard writes text to the system clipboard.
func CopyToClipboard(text, what string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return ErrMsg{Err: fmt.Errorf("copying to clipboard: %w", err)}
		}
		return StatusMsgCmd{Msg: "Copied " + what}
	}
}
