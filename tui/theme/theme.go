// Package theme holds the lipgloss styles shared by the CLI and the
// terminal key source.
package theme

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// EnvTheme selects a palette by name.
const EnvTheme = "LEADER_THEME"

const defaultThemeName = "kanagawa"

// --- Kanagawa palette ---
const (
	kanagawaDarkGreen      = "#98BB6C"
	kanagawaDarkYellow     = "#FF9E3B"
	kanagawaDarkRed        = "#FF5D62"
	kanagawaDarkOrange     = "#FFA066"
	kanagawaDarkCyan       = "#7E9CD8"
	kanagawaDarkBlue       = "#7FB4CA"
	kanagawaDarkViolet     = "#957FB8"
	kanagawaDarkLightText  = "#DCD7BA"
	kanagawaDarkMutedText  = "#727169"
	kanagawaDarkBorder     = "#363646"
	kanagawaDarkSubtleBg   = "#1F1F28"
	kanagawaLightGreen     = "#4E7C5A"
	kanagawaLightYellow    = "#A68A64"
	kanagawaLightRed       = "#C34043"
	kanagawaLightOrange    = "#CC6B4E"
	kanagawaLightCyan      = "#5B8BBE"
	kanagawaLightBlue      = "#4F7CAC"
	kanagawaLightViolet    = "#674D7A"
	kanagawaLightLightText = "#2B2F42"
	kanagawaLightMutedText = "#6C7086"
	kanagawaLightBorder    = "#B5BDC5"
	kanagawaLightSubtleBg  = "#F7F7FB"
)

// Colors is the palette a Theme is built from.
type Colors struct {
	Green     lipgloss.TerminalColor
	Yellow    lipgloss.TerminalColor
	Red       lipgloss.TerminalColor
	Orange    lipgloss.TerminalColor
	Cyan      lipgloss.TerminalColor
	Blue      lipgloss.TerminalColor
	Violet    lipgloss.TerminalColor
	LightText lipgloss.TerminalColor
	MutedText lipgloss.TerminalColor
	Border    lipgloss.TerminalColor
	SubtleBg  lipgloss.TerminalColor
}

// Theme holds the pre-configured styles.
type Theme struct {
	Name   string
	Colors Colors

	Header lipgloss.Style
	Title  lipgloss.Style

	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	Bold   lipgloss.Style
	Normal lipgloss.Style
	Muted  lipgloss.Style
	Italic lipgloss.Style

	// Key renders a typed sequence or key binding.
	Key       lipgloss.Style
	Highlight lipgloss.Style
	Accent    lipgloss.Style

	TableHeader lipgloss.Style
	Box         lipgloss.Style
	Code        lipgloss.Style
}

var themeRegistry = map[string]func() Colors{
	"kanagawa": newKanagawaColors,
	"terminal": newTerminalColors,
}

// DefaultTheme is chosen from $LEADER_THEME and the terminal's color support.
var DefaultTheme = New(Name())

// Name returns the palette to use. Terminals without true color support
// get the ANSI palette unless a theme is named explicitly.
func Name() string {
	if name := normalize(os.Getenv(EnvTheme)); name != "" {
		return name
	}
	switch termenv.EnvColorProfile() {
	case termenv.TrueColor, termenv.ANSI256:
		return defaultThemeName
	}
	return "terminal"
}

// New builds a theme from a palette name. Unknown names use the default.
func New(name string) *Theme {
	name = normalize(name)
	build, ok := themeRegistry[name]
	if !ok {
		name = defaultThemeName
		build = themeRegistry[name]
	}
	return fromColors(name, build())
}

func normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(name, "_", "-")
}

func fromColors(name string, c Colors) *Theme {
	return &Theme{
		Name:   name,
		Colors: c,

		Header: lipgloss.NewStyle().Bold(true).MarginTop(1).MarginBottom(1),
		Title:  lipgloss.NewStyle().Bold(true).Foreground(c.Orange),

		Success: lipgloss.NewStyle().Foreground(c.Green).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(c.Red).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(c.Yellow).Bold(true),
		Info:    lipgloss.NewStyle().Foreground(c.Cyan).Bold(true),

		Bold:   lipgloss.NewStyle().Bold(true),
		Normal: lipgloss.NewStyle(),
		Muted:  lipgloss.NewStyle().Faint(true),
		Italic: lipgloss.NewStyle().Italic(true),

		Key:       lipgloss.NewStyle().Foreground(c.Violet).Bold(true),
		Highlight: lipgloss.NewStyle().Foreground(c.Orange).Bold(true),
		Accent:    lipgloss.NewStyle().Foreground(c.Blue),

		TableHeader: lipgloss.NewStyle().
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(c.Border),

		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c.Border).
			Padding(0, 1),

		Code: lipgloss.NewStyle().
			Background(c.SubtleBg).
			Foreground(c.LightText).
			Padding(0, 1).
			MarginLeft(2),
	}
}

func newKanagawaColors() Colors {
	return Colors{
		Green:     lipgloss.AdaptiveColor{Light: kanagawaLightGreen, Dark: kanagawaDarkGreen},
		Yellow:    lipgloss.AdaptiveColor{Light: kanagawaLightYellow, Dark: kanagawaDarkYellow},
		Red:       lipgloss.AdaptiveColor{Light: kanagawaLightRed, Dark: kanagawaDarkRed},
		Orange:    lipgloss.AdaptiveColor{Light: kanagawaLightOrange, Dark: kanagawaDarkOrange},
		Cyan:      lipgloss.AdaptiveColor{Light: kanagawaLightCyan, Dark: kanagawaDarkCyan},
		Blue:      lipgloss.AdaptiveColor{Light: kanagawaLightBlue, Dark: kanagawaDarkBlue},
		Violet:    lipgloss.AdaptiveColor{Light: kanagawaLightViolet, Dark: kanagawaDarkViolet},
		LightText: lipgloss.AdaptiveColor{Light: kanagawaLightLightText, Dark: kanagawaDarkLightText},
		MutedText: lipgloss.AdaptiveColor{Light: kanagawaLightMutedText, Dark: kanagawaDarkMutedText},
		Border:    lipgloss.AdaptiveColor{Light: kanagawaLightBorder, Dark: kanagawaDarkBorder},
		SubtleBg:  lipgloss.AdaptiveColor{Light: kanagawaLightSubtleBg, Dark: kanagawaDarkSubtleBg},
	}
}

func newTerminalColors() Colors {
	return Colors{
		Green:     lipgloss.Color("2"),
		Yellow:    lipgloss.Color("3"),
		Red:       lipgloss.Color("1"),
		Orange:    lipgloss.Color("208"),
		Cyan:      lipgloss.Color("6"),
		Blue:      lipgloss.Color("4"),
		Violet:    lipgloss.Color("5"),
		LightText: lipgloss.Color("7"),
		MutedText: lipgloss.Color("8"),
		Border:    lipgloss.Color("8"),
		SubtleBg:  lipgloss.Color("0"),
	}
}
