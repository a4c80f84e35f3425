package keys

import "github.com/charmbracelet/bubbles/key"

// WatchKeys are the bindings of the watch view. It implements help.KeyMap.
type WatchKeys struct {
	Quit        key.Binding
	Help        key.Binding
	InsertMode  key.Binding
	Escape      key.Binding
	Send        key.Binding
	Clear       key.Binding
	ToggleASCII key.Binding
	VisualMode  key.Binding
}

func NewWatchKeys() WatchKeys {
	return WatchKeys{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q/ctrl+c", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		InsertMode: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "type packet"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "normal mode"),
		),
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send packet"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear traffic"),
		),
		ToggleASCII: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "toggle ascii"),
		),
		VisualMode: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "browse traffic"),
		),
	}
}

func (k WatchKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.InsertMode, k.VisualMode, k.Quit}
}

func (k WatchKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.InsertMode, k.Send, k.Escape},
		{k.VisualMode, k.Clear, k.ToggleASCII},
		{k.Help, k.Quit},
	}
}
