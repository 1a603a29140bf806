package tui

import (
	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/timvw/horza/internal/host"
)

// Theme defines all colors used by the overview.
// Use DarkTheme() or LightTheme() to get a pre-built theme,
// or construct a custom Theme.
type Theme struct {
	Primary        lipgloss.Color // status title
	Secondary      lipgloss.Color // active workspace marker
	Error          lipgloss.Color
	Text           lipgloss.Color // text of focused panes
	TextMuted      lipgloss.Color // text of other panes, hints
	Border         lipgloss.Color // pane separators
	Background     lipgloss.Color // pane background inside a tile
	BackdropTop    lipgloss.Color // desktop gradient behind the tiles
	BackdropBottom lipgloss.Color
}

// DarkTheme returns the default dark theme.
func DarkTheme() Theme {
	return Theme{
		Primary:        lipgloss.Color("#fab283"),
		Secondary:      lipgloss.Color("#5c9cf5"),
		Error:          lipgloss.Color("#e06c75"),
		Text:           lipgloss.Color("#eeeeee"),
		TextMuted:      lipgloss.Color("#808080"),
		Border:         lipgloss.Color("#484848"),
		Background:     lipgloss.Color("#141414"),
		BackdropTop:    lipgloss.Color("#2b2440"),
		BackdropBottom: lipgloss.Color("#10202a"),
	}
}

// LightTheme returns a light theme for bright terminal backgrounds.
func LightTheme() Theme {
	return Theme{
		Primary:        lipgloss.Color("#b35c00"),
		Secondary:      lipgloss.Color("#0550ae"),
		Error:          lipgloss.Color("#cf222e"),
		Text:           lipgloss.Color("#1f2328"),
		TextMuted:      lipgloss.Color("#656d76"),
		Border:         lipgloss.Color("#d0d7de"),
		Background:     lipgloss.Color("#ffffff"),
		BackdropTop:    lipgloss.Color("#dfe7f5"),
		BackdropBottom: lipgloss.Color("#c9d6c0"),
	}
}

// ThemeByName returns a theme by name. Defaults to dark.
func ThemeByName(name string) Theme {
	switch name {
	case "light":
		return LightTheme()
	default:
		return DarkTheme()
	}
}

// palette is a Theme resolved to blendable colors.
type palette struct {
	text, muted, border, background colorful.Color
	backdropTop, backdropBottom     colorful.Color
}

func newPalette(t Theme) palette {
	return palette{
		text:           toColorful(t.Text),
		muted:          toColorful(t.TextMuted),
		border:         toColorful(t.Border),
		background:     toColorful(t.Background),
		backdropTop:    toColorful(t.BackdropTop),
		backdropBottom: toColorful(t.BackdropBottom),
	}
}

// toColorful parses a hex lipgloss color. ANSI palette indexes and
// malformed values resolve to black.
func toColorful(c lipgloss.Color) colorful.Color {
	col, err := colorful.Hex(string(c))
	if err != nil {
		return colorful.Color{}
	}
	return col
}

func fromHost(c host.Color) colorful.Color {
	return colorful.Color{R: c.R, G: c.G, B: c.B}.Clamped()
}

// styles holds all lipgloss styles derived from a Theme.
type styles struct {
	title  lipgloss.Style
	active lipgloss.Style
	err    lipgloss.Style
	dim    lipgloss.Style
	status lipgloss.Style
	prompt lipgloss.Style
}

// newStyles builds all styles from a theme.
func newStyles(t Theme) styles {
	return styles{
		title:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		active: lipgloss.NewStyle().Bold(true).Foreground(t.Secondary),
		err:    lipgloss.NewStyle().Foreground(t.Error),
		dim:    lipgloss.NewStyle().Foreground(t.TextMuted),
		status: lipgloss.NewStyle().Foreground(t.TextMuted),
		prompt: lipgloss.NewStyle().Foreground(t.Primary),
	}
}
