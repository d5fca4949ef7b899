package ui

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/shinedesk/detailer/internal/appointment"
)

// Color definitions for consistent styling across the UI.
var (
	colorBooked    = color.New(color.FgCyan, color.Bold)
	colorCompleted = color.New(color.FgGreen)
	colorCancelled = color.New(color.FgWhite, color.Faint, color.CrossedOut)
	colorWarning   = color.New(color.FgYellow)
	colorHeader    = color.New(color.Bold)
	colorMoney     = color.New(color.FgGreen, color.Bold)
	colorMuted     = color.New(color.FgWhite, color.Faint)
	colorToday     = color.New(color.FgMagenta, color.Bold, color.Underline)
	colorSelected  = color.New(color.ReverseVideo)
)

// termWidth returns the terminal width, or a default if detection fails.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// DisableColor disables all color output.
func DisableColor() {
	color.NoColor = true
}

// EnableColor enables color output (if terminal supports it).
func EnableColor() {
	color.NoColor = false
}

// formatStatus colours text by appointment status.
func formatStatus(s appointment.Status, text string) string {
	switch s {
	case appointment.StatusCompleted:
		return colorCompleted.Sprint(text)
	case appointment.StatusCancelled:
		return colorCancelled.Sprint(text)
	default:
		return colorBooked.Sprint(text)
	}
}

func formatHeader(s string) string {
	return colorHeader.Sprint(s)
}

func formatMuted(s string) string {
	return colorMuted.Sprint(s)
}

func formatWarning(s string) string {
	return colorWarning.Sprint(s)
}

func formatMoney(s string) string {
	return colorMoney.Sprint(s)
}
