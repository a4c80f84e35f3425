package components

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/allbin/go-splitflap/internal/hexfmt"
	"github.com/allbin/go-splitflap/internal/tui/styles"
)

// PacketInput is a single-line hex entry for outbound packets
type PacketInput struct {
	textInput textinput.Model
	history   []string
	err       error
}

func NewPacketInput() *PacketInput {
	ti := textinput.New()
	ti.Placeholder = "hex packet, e.g. 02 06 00 03"
	ti.CharLimit = 1024
	ti.Prompt = "» "
	return &PacketInput{textInput: ti}
}

func (i *PacketInput) SetWidth(width int) {
	// border, padding and prompt
	usable := width - 7
	if usable < 20 {
		usable = 20
	}
	i.textInput.Width = usable
}

func (i *PacketInput) Focus() tea.Cmd {
	return i.textInput.Focus()
}

func (i *PacketInput) Blur() {
	i.textInput.Blur()
}

func (i *PacketInput) Focused() bool {
	return i.textInput.Focused()
}

func (i *PacketInput) SetValue(v string) {
	i.textInput.SetValue(v)
}

// Submit parses the current value. On success the input is cleared and the
// text is added to the history; on failure the error is kept for display.
func (i *PacketInput) Submit() ([]byte, bool) {
	value := i.textInput.Value()
	packet, err := hexfmt.Parse(value)
	if err != nil {
		i.err = err
		return nil, false
	}
	i.err = nil
	i.history = append(i.history, value)
	i.textInput.Reset()
	return packet, true
}

func (i *PacketInput) Err() error {
	return i.err
}

func (i *PacketInput) History() []string {
	return i.history
}

func (i *PacketInput) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	i.textInput, cmd = i.textInput.Update(msg)
	return cmd
}

func (i *PacketInput) View() string {
	view := styles.InputStyle.Render(i.textInput.View())
	if i.err != nil {
		view = lipgloss.JoinHorizontal(lipgloss.Center, view, " ", styles.ErrorStyle.Render(i.err.Error()))
	}
	return view
}
