package report

import "github.com/charmbracelet/lipgloss"

var (
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 2)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ffff"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899"))

	Good = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	Fair = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	Poor = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

// grade colours an accuracy in [0,1].
func grade(acc float64) lipgloss.Style {
	switch {
	case acc >= 0.9:
		return Good
	case acc >= 0.6:
		return Fair
	default:
		return Poor
	}
}
