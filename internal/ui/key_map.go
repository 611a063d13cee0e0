package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	next     key.Binding
	prev     key.Binding
	add      key.Binding
	save     key.Binding
	dismiss  key.Binding
	activate key.Binding
	reload   key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		next:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
		prev:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous view")),
		add:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add piece")),
		save:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		dismiss:  key.NewBinding(key.WithKeys("esc", "enter"), key.WithHelp("esc", "dismiss")),
		activate: key.NewBinding(key.WithKeys("a", "enter"), key.WithHelp("a", "mark active")),
		reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// formKeys are the bindings active while a text input has focus.
//
// Letters belong to the inputs there, so the form only uses arrows and control keys.
func (k keyMap) formKeys() keyMap {
	k.up = key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "date"))
	k.down = key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "pieces"))
	k.quit = key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit"))
	return k
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.next, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.activate, k.reload},
		{k.add, k.save, k.dismiss},
		{k.next, k.prev, k.quit},
	}
}
