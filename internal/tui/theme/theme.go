// Package theme provides color themes for the TUI.
package theme

import (
	"embed"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pelletier/go-toml/v2"
)

//go:embed embedded/*.toml
var embeddedThemes embed.FS

// DefaultName is the theme used when none is configured.
const DefaultName = "midnight"

// Theme holds all colors for a TUI theme.
type Theme struct {
	Name        string `toml:"name"`
	Bg          string `toml:"bg"`           // Base background
	BgHighlight string `toml:"bg_highlight"` // Panes, subtle highlight
	BgSelection string `toml:"bg_selection"` // Cursor, selected day
	Fg          string `toml:"fg"`           // Primary foreground
	FgMuted     string `toml:"fg_muted"`     // Days outside the month, free hours
	Accent      string `toml:"accent"`       // Title, borders
	Booked      string `toml:"booked"`       // Upcoming jobs
	Completed   string `toml:"completed"`    // Finished jobs
	Cancelled   string `toml:"cancelled"`    // Cancelled jobs
	Today       string `toml:"today"`        // Today's date
	Warning     string `toml:"warning"`      // Scheduling problems
}

// Color returns a lipgloss.Color for the given hex string.
func Color(hex string) lipgloss.Color {
	return lipgloss.Color(hex)
}

// Load loads a theme by name from embedded files.
// Falls back to the default theme if the name is unknown.
func Load(name string) (*Theme, error) {
	if name == "" {
		name = DefaultName
	}
	name = strings.ToLower(name)

	data, err := embeddedThemes.ReadFile("embedded/" + name + ".toml")
	if err != nil {
		if name != DefaultName {
			return Load(DefaultName)
		}
		return nil, fmt.Errorf("loading theme %q: %w", name, err)
	}

	var t Theme
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing theme %q: %w", name, err)
	}
	t.applyDefaults()

	return &t, nil
}

func (t *Theme) applyDefaults() {
	t.BgHighlight = coalesce(t.BgHighlight, t.Bg)
	t.BgSelection = coalesce(t.BgSelection, t.BgHighlight, t.Accent)
	t.FgMuted = coalesce(t.FgMuted, t.Fg)
	t.Booked = coalesce(t.Booked, t.Accent)
	t.Completed = coalesce(t.Completed, t.Booked)
	t.Cancelled = coalesce(t.Cancelled, t.FgMuted)
	t.Today = coalesce(t.Today, t.Accent)
	t.Warning = coalesce(t.Warning, t.Accent)
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Available returns a list of available theme names.
func Available() []string {
	return []string{"midnight", "harbor", "daylight"}
}

// IsAvailable reports whether a theme name is available.
func IsAvailable(name string) bool {
	return slices.Contains(Available(), strings.ToLower(name))
}
