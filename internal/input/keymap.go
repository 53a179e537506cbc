package input

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// KeyMap defines key bindings for the bubbletea front end
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Enter     key.Binding
	Escape    key.Binding
	Backspace key.Binding
	Refresh   key.Binding
	Quit      key.Binding
	Copy      key.Binding
}

// DefaultKeyMap returns the default key bindings. Letters are case
// insensitive and every key here decodes to the same Command in Decode.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k", "K"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j", "J"),
			key.WithHelp("↓/j", "down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter", "ctrl+j"),
			key.WithHelp("enter", "logs"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Backspace: key.NewBinding(
			key.WithKeys("backspace", "ctrl+h"),
			key.WithHelp("backspace", "back"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r", "R"),
			key.WithHelp("r", "refresh"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "Q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "copy"),
		),
	}
}

// Command maps a single key message to a Command
func (k KeyMap) Command(msg tea.KeyMsg) Command {
	switch {
	case key.Matches(msg, k.Up):
		return Up
	case key.Matches(msg, k.Down):
		return Down
	case key.Matches(msg, k.Enter):
		return Enter
	case key.Matches(msg, k.Escape):
		return Escape
	case key.Matches(msg, k.Backspace):
		return Backspace
	case key.Matches(msg, k.Refresh):
		return Refresh
	case key.Matches(msg, k.Quit):
		return Quit
	case key.Matches(msg, k.Copy):
		return Copy
	}
	return None
}
