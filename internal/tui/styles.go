package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds all lipgloss styles for the progress view.
type Styles struct {
	App      lipgloss.Style
	Title    lipgloss.Style
	Status   lipgloss.Style
	Logs     lipgloss.Style
	LogOK    lipgloss.Style
	LogFail  lipgloss.Style
	Summary  lipgloss.Style
	Error    lipgloss.Style
	Notice   lipgloss.Style
	HintKey  lipgloss.Style
	HintDesc lipgloss.Style
}

// DefaultStyles returns the default style configuration.
// Grayscale with a single desaturated teal accent.
func DefaultStyles() Styles {
	primary := lipgloss.AdaptiveColor{Light: "#505050", Dark: "#A0A0A0"}
	subtle := lipgloss.AdaptiveColor{Light: "#888888", Dark: "#606060"}
	accent := lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}
	border := lipgloss.AdaptiveColor{Light: "#888888", Dark: "#505050"}
	fail := lipgloss.AdaptiveColor{Light: "#8A4A4A", Dark: "#A06060"}

	return Styles{
		App: lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(2).
			PaddingRight(2),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),

		Status: lipgloss.NewStyle().
			Foreground(primary),

		Logs: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(border).
			Padding(0, 1),

		LogOK: lipgloss.NewStyle().
			Foreground(primary),

		LogFail: lipgloss.NewStyle().
			Foreground(fail),

		Summary: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),

		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(fail),

		Notice: lipgloss.NewStyle().
			Foreground(subtle).
			Italic(true),

		HintKey: lipgloss.NewStyle().
			Foreground(subtle),

		HintDesc: lipgloss.NewStyle().
			Foreground(subtle),
	}
}
