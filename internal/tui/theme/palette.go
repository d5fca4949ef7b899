package theme

import (
	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Palette holds precomputed colors derived from a Theme.
type Palette struct {
	Bg          lipgloss.Color
	BgHighlight lipgloss.Color
	BgSelection lipgloss.Color
	Fg          lipgloss.Color
	FgMuted     lipgloss.Color
	Accent      lipgloss.Color
	Booked      lipgloss.Color
	Completed   lipgloss.Color
	Cancelled   lipgloss.Color
	Today       lipgloss.Color
	Warning     lipgloss.Color

	// Slot backgrounds, blended toward the base background.
	BookedBg       lipgloss.Color
	CompletedBg    lipgloss.Color
	ContinuationBg lipgloss.Color

	TextOnAccent    lipgloss.Color
	TextOnSelection lipgloss.Color
	TextOnBooked    lipgloss.Color
	TextOnCompleted lipgloss.Color

	IsLight bool
}

// NewPalette derives a Palette from the provided Theme.
func NewPalette(t *Theme) *Palette {
	if t == nil {
		t, _ = Load(DefaultName)
	}

	isLight := isLightTheme(t.Bg)
	slotMix := 0.55
	if isLight {
		slotMix = 0.75
	}
	bookedBg := blendColors(t.Booked, t.Bg, slotMix)
	completedBg := blendColors(t.Completed, t.Bg, slotMix)

	return &Palette{
		Bg:          lipgloss.Color(t.Bg),
		BgHighlight: lipgloss.Color(t.BgHighlight),
		BgSelection: lipgloss.Color(t.BgSelection),
		Fg:          lipgloss.Color(t.Fg),
		FgMuted:     lipgloss.Color(t.FgMuted),
		Accent:      lipgloss.Color(t.Accent),
		Booked:      lipgloss.Color(t.Booked),
		Completed:   lipgloss.Color(t.Completed),
		Cancelled:   lipgloss.Color(t.Cancelled),
		Today:       lipgloss.Color(t.Today),
		Warning:     lipgloss.Color(t.Warning),

		BookedBg:       lipgloss.Color(bookedBg),
		CompletedBg:    lipgloss.Color(completedBg),
		ContinuationBg: lipgloss.Color(blendColors(bookedBg, t.Bg, 0.4)),

		TextOnAccent:    lipgloss.Color(chooseTextColor(t.Accent, t.Bg, t.Fg)),
		TextOnSelection: lipgloss.Color(chooseTextColor(t.BgSelection, t.Bg, t.Fg)),
		TextOnBooked:    lipgloss.Color(chooseTextColor(bookedBg, t.Bg, t.Fg)),
		TextOnCompleted: lipgloss.Color(chooseTextColor(completedBg, t.Bg, t.Fg)),

		IsLight: isLight,
	}
}

func isLightTheme(bg string) bool {
	return relativeLuminance(bg) > 0.55
}

// blendColors mixes a toward b in Lab space. ratio 0 returns a, 1 returns b.
// Unparseable input is returned unchanged.
func blendColors(a, b string, ratio float64) string {
	ca, errA := colorful.Hex(a)
	cb, errB := colorful.Hex(b)
	if errA != nil || errB != nil {
		return a
	}
	ratio = min(max(ratio, 0), 1)
	return ca.BlendLab(cb, ratio).Clamped().Hex()
}

// chooseTextColor picks whichever of the two text colors reads better on bg.
func chooseTextColor(bg, lightText, darkText string) string {
	if contrastRatio(bg, lightText) >= contrastRatio(bg, darkText) {
		return lightText
	}
	return darkText
}

func contrastRatio(a, b string) float64 {
	l1 := relativeLuminance(a)
	l2 := relativeLuminance(b)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

func relativeLuminance(hex string) float64 {
	c, err := colorful.Hex(hex)
	if err != nil {
		return 0
	}
	r, g, b := c.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}
