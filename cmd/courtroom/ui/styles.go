// Package ui provides the visual styling for the courtroom interactive CLI.
// Styles come in light and dark variants with terminal auto-detection.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Light mode colors (default)
	LightForeground = lipgloss.Color("#1c2430")
	LightPrimary    = lipgloss.Color("#3b2f5e") // deep purple, the bench
	LightAccent     = lipgloss.Color("#a3742c") // brass
	LightMuted      = lipgloss.Color("#7a828c")
	LightBorder     = lipgloss.Color("#d8dce2")

	// Dark mode colors
	DarkForeground = lipgloss.Color("#e8e6e3")
	DarkPrimary    = lipgloss.Color("#b8a1e3")
	DarkAccent     = lipgloss.Color("#d9b86a")
	DarkMuted      = lipgloss.Color("#8a8f99")
	DarkBorder     = lipgloss.Color("#3a4150")

	// Semantic colors, same in both modes
	Sustained = lipgloss.Color("#c62828") // red
	Favorable = lipgloss.Color("#66bb6a") // green
	Caution   = lipgloss.Color("#ffb300") // amber
	Neutral   = lipgloss.Color("#42a5f5") // blue
)

// Theme holds the active color scheme.
type Theme struct {
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme.
func LightTheme() Theme {
	return Theme{
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Muted:      LightMuted,
		Border:     LightBorder,
		IsDark:     false,
	}
}

// DarkTheme returns the dark mode theme.
func DarkTheme() Theme {
	return Theme{
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		IsDark:     true,
	}
}

// DetectTheme picks a theme from terminal hints, defaulting to light.
func DetectTheme() Theme {
	// COLORFGBG is "foreground;background"; low background indexes mean a
	// dark terminal.
	if colorTerm := os.Getenv("COLORFGBG"); colorTerm != "" {
		parts := strings.Split(colorTerm, ";")
		if len(parts) == 2 {
			if bgIdx, err := strconv.Atoi(parts[1]); err == nil {
				if (bgIdx >= 0 && bgIdx <= 6) || bgIdx == 8 {
					return DarkTheme()
				}
			}
		}
	}
	if os.Getenv("COURTROOM_DARK_MODE") == "1" {
		return DarkTheme()
	}
	return LightTheme()
}

// Styles holds every styled component the CLI renders with.
type Styles struct {
	Theme Theme

	// Text
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style

	// Courtroom roles
	Judge    lipgloss.Style
	Clerk    lipgloss.Style
	Counsel  lipgloss.Style
	Opponent lipgloss.Style
	Witness  lipgloss.Style

	// Status
	Good    lipgloss.Style
	Bad     lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	// Interactive
	Prompt lipgloss.Style

	// Components
	Card    lipgloss.Style
	Badge   lipgloss.Style
	Divider lipgloss.Style
}

// NewStyles creates a Styles instance for the given theme.
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Subtitle: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true),

		Body: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Judge: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Clerk: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Counsel: lipgloss.NewStyle().
			Foreground(theme.Accent),

		Opponent: lipgloss.NewStyle().
			Foreground(Neutral),

		Witness: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Italic(true),

		Good: lipgloss.NewStyle().
			Foreground(Favorable).
			Bold(true),

		Bad: lipgloss.NewStyle().
			Foreground(Sustained).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(Caution).
			Bold(true),

		Info: lipgloss.NewStyle().
			Foreground(Neutral),

		Prompt: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		Card: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border),

		Badge: lipgloss.NewStyle().
			Background(theme.Accent).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1).
			Bold(true),

		Divider: lipgloss.NewStyle().
			Foreground(theme.Border),
	}
}

// DefaultStyles returns styles with the auto-detected theme.
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}

// RenderDivider returns a horizontal rule of the given width.
func (s Styles) RenderDivider(width int) string {
	return s.Divider.Render(strings.Repeat("─", width))
}
