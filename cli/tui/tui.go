package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines key bindings shared by the inspect and stats views.
type keyMap struct {
	Quit key.Binding
	Tab  key.Binding
	Prev key.Binding
	Next key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "switch pane"),
	),
	Prev: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←", "previous artifact"),
	),
	Next: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→", "next artifact"),
	),
}
