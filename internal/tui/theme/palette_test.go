package theme

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestNewPalette_SlotShades(t *testing.T) {
	base := &Theme{
		Bg:          "#101010",
		BgHighlight: "#202020",
		BgSelection: "#303030",
		Fg:          "#ffffff",
		FgMuted:     "#aaaaaa",
		Accent:      "#0000ff",
		Booked:      "#112233",
		Completed:   "#445566",
		Cancelled:   "#777777",
		Today:       "#888888",
		Warning:     "#999999",
	}

	palette := NewPalette(base)

	if palette.IsLight {
		t.Fatal("dark background reported as light")
	}
	if palette.BookedBg != lipgloss.Color(blendColors(base.Booked, base.Bg, 0.55)) {
		t.Errorf("BookedBg = %q", palette.BookedBg)
	}
	if palette.CompletedBg != lipgloss.Color(blendColors(base.Completed, base.Bg, 0.55)) {
		t.Errorf("CompletedBg = %q", palette.CompletedBg)
	}
	if palette.TextOnAccent != lipgloss.Color(base.Fg) {
		t.Errorf("TextOnAccent = %q, want light text on blue", palette.TextOnAccent)
	}
}

func TestNewPalette_LightTheme(t *testing.T) {
	light, err := Load("daylight")
	if err != nil {
		t.Fatalf("Load(daylight): %v", err)
	}
	palette := NewPalette(light)
	if !palette.IsLight {
		t.Error("daylight should be a light theme")
	}
	if palette.TextOnSelection != lipgloss.Color(light.Fg) {
		t.Errorf("TextOnSelection = %q, want dark foreground %q", palette.TextOnSelection, light.Fg)
	}
}

func TestNewPalette_NilUsesDefault(t *testing.T) {
	def, _ := Load(DefaultName)
	if got := NewPalette(nil).Bg; got != lipgloss.Color(def.Bg) {
		t.Errorf("Bg = %q, want %q", got, def.Bg)
	}
}

func TestBlendColors(t *testing.T) {
	tests := []struct {
		name  string
		a, b  string
		ratio float64
		want  string
	}{
		{"ratio zero keeps a", "#ff0000", "#0000ff", 0, "#ff0000"},
		{"ratio one gives b", "#ff0000", "#0000ff", 1, "#0000ff"},
		{"ratio clamped", "#00ff00", "#000000", 2, "#000000"},
		{"bad input unchanged", "red", "#000000", 0.5, "red"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := blendColors(tt.a, tt.b, tt.ratio); got != tt.want {
				t.Errorf("blendColors(%q, %q, %v) = %q, want %q", tt.a, tt.b, tt.ratio, got, tt.want)
			}
		})
	}
}

func TestContrastRatio(t *testing.T) {
	if got := contrastRatio("#000000", "#ffffff"); got < 20.9 || got > 21.1 {
		t.Errorf("black/white contrast = %v, want 21", got)
	}
	if got := contrastRatio("#777777", "#777777"); got != 1 {
		t.Errorf("same color contrast = %v, want 1", got)
	}
}
