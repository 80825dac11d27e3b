package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the navigator bindings.
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Search    key.Binding
	Confirm   key.Binding
	Expand    key.Binding
	Collapse  key.Binding
	Refresh   key.Binding
	Quit      key.Binding
	Help      key.Binding
	Cancel    key.Binding // leaves search mode
	ForceQuit key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Confirm:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "switch")),
		Expand:    key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "expand")),
		Collapse:  key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "collapse")),
		Refresh:   key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "refresh")),
		Quit:      key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "quit")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "done")),
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

// searchUp and searchDown move the selection without stealing letters from
// the query.
var (
	searchUp   = key.NewBinding(key.WithKeys("up", "ctrl+p", "ctrl+k"), key.WithHelp("↑/ctrl+p", "previous row"))
	searchDown = key.NewBinding(key.WithKeys("down", "ctrl+n", "ctrl+j"), key.WithHelp("↓/ctrl+n", "next row"))
)

func (k KeyMap) normalHelp() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.Expand, k.Collapse, k.Search, k.Confirm, k.Help, k.Quit}
}

func (k KeyMap) searchHelp() []key.Binding {
	return []key.Binding{searchDown, searchUp, k.Confirm, k.Cancel}
}
