package theme

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha.
var (
	Base     = lipgloss.Color("#1e1e2e")
	Mantle   = lipgloss.Color("#181825")
	Surface0 = lipgloss.Color("#313244")
	Surface1 = lipgloss.Color("#45475a")
	Text     = lipgloss.Color("#cdd6f4")
	Subtext0 = lipgloss.Color("#a6adc8")
	Lavender = lipgloss.Color("#b4befe")
	Sapphire = lipgloss.Color("#74c7ec")
	Green    = lipgloss.Color("#a6e3a1")
	Yellow   = lipgloss.Color("#f9e2af")
	Peach    = lipgloss.Color("#fab387")

	Title = lipgloss.NewStyle().Foreground(Sapphire).Bold(true)
	Muted = lipgloss.NewStyle().Foreground(Subtext0)
	Hot   = lipgloss.NewStyle().Foreground(Peach).Bold(true)

	Completed  = lipgloss.NewStyle().Foreground(Green).Bold(true)
	InProgress = lipgloss.NewStyle().Foreground(Yellow)
	NotStarted = Muted
)

// ForState picks the style for a module state as reported by the learning
// module (not_started, in_progress, completed).
func ForState(state string) lipgloss.Style {
	switch state {
	case "completed":
		return Completed
	case "in_progress":
		return InProgress
	default:
		return NotStarted
	}
}
