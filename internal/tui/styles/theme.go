package styles

import (
	"github.com/charmbracelet/lipgloss"

	splitflap "github.com/allbin/go-splitflap"
)

// Catppuccin Mocha
var (
	Base     = lipgloss.Color("#1e1e2e")
	Surface0 = lipgloss.Color("#313244")
	Surface1 = lipgloss.Color("#45475a")
	Surface2 = lipgloss.Color("#585b70")
	Overlay0 = lipgloss.Color("#6c7086")
	Subtext0 = lipgloss.Color("#a6adc8")
	Subtext1 = lipgloss.Color("#bac2de")
	Text     = lipgloss.Color("#cdd6f4")

	Blue   = lipgloss.Color("#89b4fa")
	Sky    = lipgloss.Color("#89dceb")
	Green  = lipgloss.Color("#a6e3a1")
	Yellow = lipgloss.Color("#f9e2af")
	Peach  = lipgloss.Color("#fab387")
	Red    = lipgloss.Color("#f38ba8")
	Mauve  = lipgloss.Color("#cba6f7")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Mauve).
			Padding(0, 1)

	ContentBorderStyle = lipgloss.NewStyle().
				BorderTop(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(Surface1)

	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Surface2).
			Padding(0, 1)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Red)

	MutedStyle = lipgloss.NewStyle().
			Foreground(Subtext0)

	RXStyle = lipgloss.NewStyle().Foreground(Sky).Bold(true)
	TXStyle = lipgloss.NewStyle().Foreground(Peach).Bold(true)
)

// StateColor is the accent used for a driver state
func StateColor(s splitflap.State) lipgloss.Color {
	switch s {
	case splitflap.StateStreaming:
		return Green
	case splitflap.StateOpening, splitflap.StateHandshaking:
		return Yellow
	default:
		return Red
	}
}

// StateBadge renders s as a solid status badge
func StateBadge(s splitflap.State) string {
	return lipgloss.NewStyle().
		Foreground(Base).
		Background(StateColor(s)).
		Bold(true).
		Padding(0, 1).
		Render(s.String())
}
