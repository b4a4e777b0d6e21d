package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the application level key bindings
type KeyMap struct {
	NextTab  key.Binding
	Tab1     key.Binding
	Tab2     key.Binding
	Tab3     key.Binding
	Tab4     key.Binding
	Tab5     key.Binding
	Quit     key.Binding
	QuitText key.Binding // only where no text input has focus
	Help     key.Binding

	// Forms
	NextField key.Binding
	PrevField key.Binding
	Submit    key.Binding
	Reset     key.Binding
	Discover  key.Binding

	// Libraries / sync / activity
	Toggle   key.Binding
	Sync     key.Binding
	Cancel   key.Binding
	Refresh  key.Binding
	ClearLog key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextTab: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("C-t", "next tab"),
		),
		Tab1: key.NewBinding(key.WithKeys("alt+1"), key.WithHelp("M-1", "connection")),
		Tab2: key.NewBinding(key.WithKeys("alt+2"), key.WithHelp("M-2", "libraries")),
		Tab3: key.NewBinding(key.WithKeys("alt+3"), key.WithHelp("M-3", "sync")),
		Tab4: key.NewBinding(key.WithKeys("alt+4"), key.WithHelp("M-4", "notifications")),
		Tab5: key.NewBinding(key.WithKeys("alt+5"), key.WithHelp("M-5", "activity")),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "quit"),
		),
		QuitText: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),

		NextField: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("S-tab", "prev field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("C-s", "save"),
		),
		Reset: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("C-r", "reset"),
		),
		Discover: key.NewBinding(
			key.WithKeys("ctrl+f"),
			key.WithHelp("C-f", "find servers"),
		),

		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "toggle"),
		),
		Sync: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sync/start"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "cancel scan"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		ClearLog: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "clear activity"),
		),
	}
}

// HelpEntries returns key/description pairs for the help overlay
func (k KeyMap) HelpEntries() [][2]string {
	bindings := []key.Binding{
		k.NextTab, k.Tab1, k.Tab2, k.Tab3, k.Tab4, k.Tab5,
		k.NextField, k.PrevField, k.Submit, k.Reset, k.Discover,
		k.Toggle, k.Sync, k.Cancel, k.Refresh, k.ClearLog,
		k.Help, k.QuitText, k.Quit,
	}
	out := make([][2]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		out = append(out, [2]string{h.Key, h.Desc})
	}
	return out
}
