package models

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	splitflap "github.com/allbin/go-splitflap"
	"github.com/allbin/go-splitflap/internal/tui/components"
	"github.com/allbin/go-splitflap/internal/tui/keys"
	"github.com/allbin/go-splitflap/internal/tui/styles"
)

// InputMode is the vim-like mode of the watch view
type InputMode int

const (
	InputModeNormal InputMode = iota
	InputModeInsert
	InputModeVisual
)

func (m InputMode) String() string {
	switch m {
	case InputModeInsert:
		return "INSERT"
	case InputModeVisual:
		return "VISUAL"
	default:
		return "NORMAL"
	}
}

type tickMsg time.Time

// WatchModel shows a live driver session: state, counters and traffic
type WatchModel struct {
	bridge *Bridge
	send   splitflap.SendFunc

	mode      InputMode
	traffic   *components.Traffic
	statusBar *components.StatusBar
	input     *components.PacketInput
	help      help.Model
	keys      keys.WatchKeys

	ended bool
	width int
	now   func() time.Time
}

// NewWatchModel builds the view. send may be nil for a read-only view.
func NewWatchModel(device string, baud int, bridge *Bridge, send splitflap.SendFunc) *WatchModel {
	return &WatchModel{
		bridge:    bridge,
		send:      send,
		traffic:   components.NewTraffic(components.DefaultTrafficLimit),
		statusBar: components.NewStatusBar(device, baud),
		input:     components.NewPacketInput(),
		help:      help.New(),
		keys:      keys.NewWatchKeys(),
		width:     80,
		now:       time.Now,
	}
}

func (m *WatchModel) Init() tea.Cmd {
	return tea.Batch(m.bridge.Listen(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *WatchModel) Mode() InputMode {
	return m.mode
}

func (m *WatchModel) State() splitflap.State {
	return m.statusBar.State()
}

func (m *WatchModel) Counters() components.Counters {
	return *m.statusBar.Counters()
}

func (m *WatchModel) Traffic() []components.Entry {
	return m.traffic.Entries()
}

func (m *WatchModel) Ended() bool {
	return m.ended
}

func (m *WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.statusBar.SetWidth(msg.Width)
		m.input.SetWidth(msg.Width)
		m.help.Width = msg.Width
		// status bar, input box, help and border
		m.traffic.SetSize(msg.Width, msg.Height-7)
		return m, nil

	case tickMsg:
		return m, tick()

	case StatusMsg:
		m.statusBar.SetState(msg.State)
		if msg.Err != nil {
			m.statusBar.SetError(msg.Err)
		}
		m.ended = msg.Ended
		return m, m.bridge.Listen()

	case ChunkMsg:
		c := m.statusBar.Counters()
		c.ChunksReceived++
		c.BytesReceived += msg.N
		return m, m.bridge.Listen()

	case SentMsg:
		c := m.statusBar.Counters()
		c.PacketsSent++
		c.BytesSent += msg.N
		return m, m.bridge.Listen()

	case DroppedMsg:
		m.statusBar.Counters().Dropped++
		return m, m.bridge.Listen()

	case TrafficMsg:
		m.traffic.Add(components.Entry{At: msg.At, Data: msg.Data, TX: msg.TX})
		return m, m.bridge.Listen()

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	return m, nil
}

func (m *WatchModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		return tea.Quit
	}

	switch m.mode {
	case InputModeInsert:
		switch {
		case key.Matches(msg, m.keys.Escape):
			m.mode = InputModeNormal
			m.input.Blur()
			return nil
		case key.Matches(msg, m.keys.Send):
			return m.submit()
		}
		return m.input.Update(msg)

	case InputModeVisual:
		if key.Matches(msg, m.keys.Escape) {
			m.mode = InputModeNormal
			m.traffic.SetFocused(false)
			return nil
		}
		if key.Matches(msg, m.keys.Quit) {
			return tea.Quit
		}
		return m.traffic.Update(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.InsertMode):
		if m.send == nil {
			return nil
		}
		m.mode = InputModeInsert
		return m.input.Focus()
	case key.Matches(msg, m.keys.VisualMode):
		m.mode = InputModeVisual
		m.traffic.SetFocused(true)
	case key.Matches(msg, m.keys.Clear):
		m.traffic.Clear()
	case key.Matches(msg, m.keys.ToggleASCII):
		m.traffic.ToggleASCII()
	}
	return nil
}

// submit hands the typed packet to the driver off the UI goroutine
func (m *WatchModel) submit() tea.Cmd {
	packet, ok := m.input.Submit()
	if !ok {
		return nil
	}
	send, bridge := m.send, m.bridge
	return func() tea.Msg {
		send(packet)
		bridge.Post(TrafficMsg{At: time.Now(), Data: packet, TX: true})
		return nil
	}
}

func (m *WatchModel) View() string {
	mode := m.mode.String()
	content := styles.ContentBorderStyle.Width(m.width).Render(m.traffic.View())

	parts := []string{content}
	if m.mode == InputModeInsert {
		parts = append(parts, m.input.View())
	}
	parts = append(parts,
		m.statusBar.View(mode, m.now().Format("15:04:05")),
		m.help.View(m.keys),
	)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
