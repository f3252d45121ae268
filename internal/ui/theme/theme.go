package theme

import "github.com/charmbracelet/lipgloss"

var (
	Base    = lipgloss.Color("#2e3440")
	Mantle  = lipgloss.Color("#272c36")
	Surface = lipgloss.Color("#3b4252")
	Overlay = lipgloss.Color("#4c566a")
	Text    = lipgloss.Color("#eceff4")
	Subtext = lipgloss.Color("#aeb8c9")
	Frost   = lipgloss.Color("#88c0d0")
	Blue    = lipgloss.Color("#81a1c1")
	Green   = lipgloss.Color("#a3be8c")
	Yellow  = lipgloss.Color("#ebcb8b")
	Orange  = lipgloss.Color("#d08770")
	Red     = lipgloss.Color("#bf616a")

	App = lipgloss.NewStyle().
		Background(Base).
		Foreground(Text).
		Padding(1, 2)

	Pane = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Background(Mantle).
		Foreground(Text).
		Padding(1)

	PaneAlert = Pane.BorderForeground(Orange)

	Title = lipgloss.NewStyle().Foreground(Frost).Bold(true)
	Muted = lipgloss.NewStyle().Foreground(Subtext)
	Hot   = lipgloss.NewStyle().Foreground(Orange).Bold(true)
)

// BandStyle colors a productivity band label.
func BandStyle(band string) lipgloss.Style {
	switch band {
	case "exceptional":
		return lipgloss.NewStyle().Foreground(Green).Bold(true)
	case "high":
		return lipgloss.NewStyle().Foreground(Green)
	case "moderate":
		return lipgloss.NewStyle().Foreground(Yellow)
	case "low":
		return lipgloss.NewStyle().Foreground(Orange)
	default:
		return lipgloss.NewStyle().Foreground(Red)
	}
}
