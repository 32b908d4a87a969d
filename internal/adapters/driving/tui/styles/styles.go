// Package styles defines the lipgloss styles shared by the TUI views.
package styles

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	ColorError   = lipgloss.AdaptiveColor{Light: "#D7263D", Dark: "#FF5F6D"}
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#1B998B", Dark: "#43BF6D"}
)

// Styles holds the rendering styles.
type Styles struct {
	Header  lipgloss.Style
	Title   lipgloss.Style
	Muted   lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
	Help    lipgloss.Style
	Box     lipgloss.Style
}

// DefaultStyles returns the default styles.
func DefaultStyles() *Styles {
	return &Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(ColorPrimary).
			Padding(0, 1),
		Title:   lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary),
		Muted:   lipgloss.NewStyle().Foreground(ColorMuted),
		Error:   lipgloss.NewStyle().Foreground(ColorError).Bold(true),
		Success: lipgloss.NewStyle().Foreground(ColorSuccess),
		Help:    lipgloss.NewStyle().Foreground(ColorMuted).MarginTop(1),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorError).
			Padding(0, 1),
	}
}
