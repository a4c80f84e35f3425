package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	splitflap "github.com/allbin/go-splitflap"
	"github.com/allbin/go-splitflap/internal/tui/styles"
)

// Counters are the running totals shown in the status bar
type Counters struct {
	ChunksReceived int
	BytesReceived  int
	PacketsSent    int
	BytesSent      int
	Dropped        int
}

type StatusBar struct {
	device   string
	baud     int
	state    splitflap.State
	err      error
	counters Counters
	width    int
}

func NewStatusBar(device string, baud int) *StatusBar {
	return &StatusBar{device: device, baud: baud, width: 80}
}

func (sb *StatusBar) SetState(s splitflap.State) {
	sb.state = s
}

func (sb *StatusBar) State() splitflap.State {
	return sb.state
}

// SetError records the fault that ended the session
func (sb *StatusBar) SetError(err error) {
	sb.err = err
}

func (sb *StatusBar) Err() error {
	return sb.err
}

func (sb *StatusBar) Counters() *Counters {
	return &sb.counters
}

func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

// View renders mode, state badge and device on the left and counters and
// the clock on the right
func (sb *StatusBar) View(mode, clock string) string {
	width := sb.width
	if width <= 0 {
		width = 80
	}

	modeColor := styles.Blue
	if mode == "INSERT" {
		modeColor = styles.Green
	}
	modeView := lipgloss.NewStyle().
		Foreground(styles.Base).
		Background(modeColor).
		Bold(true).
		Padding(0, 1).
		Render(mode)

	device := styles.TitleStyle.Render(sb.device)
	divider := lipgloss.NewStyle().Foreground(styles.Surface2).Padding(0, 1).Render("│")

	left := lipgloss.JoinHorizontal(lipgloss.Left, modeView, styles.StateBadge(sb.state), device, divider)
	if sb.err != nil {
		left = lipgloss.JoinHorizontal(lipgloss.Left, left, styles.ErrorStyle.Render(sb.err.Error()), divider)
	}

	c := sb.counters
	stats := fmt.Sprintf("⚡ %d baud  RX %d/%dB  TX %d/%dB  dropped %d",
		sb.baud, c.ChunksReceived, c.BytesReceived, c.PacketsSent, c.BytesSent, c.Dropped)
	right := lipgloss.JoinHorizontal(lipgloss.Left,
		styles.MutedStyle.Padding(0, 1).Render(stats),
		divider,
		lipgloss.NewStyle().Foreground(styles.Subtext1).Padding(0, 1).Render(clock),
	)

	spacer := width - lipgloss.Width(left) - lipgloss.Width(right)
	if spacer < 1 {
		spacer = 1
	}

	return lipgloss.NewStyle().
		Foreground(styles.Text).
		Background(styles.Surface0).
		Width(width).
		Render(lipgloss.JoinHorizontal(lipgloss.Left, left, lipgloss.NewStyle().Width(spacer).Render(""), right))
}
