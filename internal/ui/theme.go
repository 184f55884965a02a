package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/finder/internal/prefs"
)

// Theme defines colors and styles for the UI.
type Theme struct {
	Name string

	// Base colors
	Background string // Outermost background
	Surface    string // Main content panels
	SurfaceAlt string // Secondary surfaces
	FocusBg    string // Focus/active states

	// Selection
	SelectionBg   string
	SelectionText string

	// Borders
	Border      string
	BorderFocus string

	// Header bar
	HeaderBg   string
	HeaderText string

	// Text colors
	Text     string
	Muted    string
	Faint    string
	Accent   string
	Success  string
	Warning  string
	Danger   string
	Info     string
	Favorite string
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Background: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Background)),

		Surface: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)),

		Text: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)),

		MutedText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),

		FaintText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Faint)),

		AccentText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)),

		SuccessText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)).
			Bold(true),

		WarningText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)),

		DangerText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Danger)).
			Bold(true),

		InfoText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Info)),

		FavoriteText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Favorite)),

		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(t.HeaderBg)).
			Foreground(lipgloss.Color(t.HeaderText)).
			Bold(true).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Muted)).
			Padding(0, 1),

		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SelectionBg)).
			Foreground(lipgloss.Color(t.SelectionText)),

		Button: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Info)).
			Foreground(lipgloss.Color("#FFFFFF")).
			Padding(0, 2),

		DangerButton: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Danger)).
			Foreground(lipgloss.Color("#FFFFFF")).
			Padding(0, 2),
	}
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	// Base
	Background lipgloss.Style
	Surface    lipgloss.Style

	// Text
	Text         lipgloss.Style
	MutedText    lipgloss.Style
	FaintText    lipgloss.Style
	AccentText   lipgloss.Style
	SuccessText  lipgloss.Style
	WarningText  lipgloss.Style
	DangerText   lipgloss.Style
	InfoText     lipgloss.Style
	FavoriteText lipgloss.Style

	// Components
	Header       lipgloss.Style
	Footer       lipgloss.Style
	Selected     lipgloss.Style
	Button       lipgloss.Style
	DangerButton lipgloss.Style
}

// ThemeFor returns the palette for a display mode.
func ThemeFor(mode prefs.Mode) Theme {
	if mode == prefs.Dark {
		return darkTheme()
	}
	return lightTheme()
}

func lightTheme() Theme {
	return Theme{
		Name:          "Light",
		Background:    "#FFFFFF",
		Surface:       "#F3F4F6",
		SurfaceAlt:    "#FFFFFF",
		FocusBg:       "#EEF2FF",
		SelectionBg:   "#4F46E5",
		SelectionText: "#FFFFFF",
		Border:        "#D1D5DB",
		BorderFocus:   "#4F46E5",
		HeaderBg:      "#4F46E5",
		HeaderText:    "#FFFFFF",
		Text:          "#111827",
		Muted:         "#374151",
		Faint:         "#9CA3AF",
		Accent:        "#4F46E5",
		Success:       "#16A34A",
		Warning:       "#D97706",
		Danger:        "#EF4444",
		Info:          "#3B82F6",
		Favorite:      "#EF4444",
	}
}

func darkTheme() Theme {
	return Theme{
		Name:          "Dark",
		Background:    "#1F2937",
		Surface:       "#111827",
		SurfaceAlt:    "#1F2937",
		FocusBg:       "#374151",
		SelectionBg:   "#818CF8",
		SelectionText: "#111827",
		Border:        "#4B5563",
		BorderFocus:   "#818CF8",
		HeaderBg:      "#1F2937",
		HeaderText:    "#E5E7EB",
		Text:          "#FFFFFF",
		Muted:         "#D1D5DB",
		Faint:         "#6B7280",
		Accent:        "#818CF8",
		Success:       "#4ADE80",
		Warning:       "#F5DD4B",
		Danger:        "#B91C1C",
		Info:          "#1D4ED8",
		Favorite:      "#F87171",
	}
}
