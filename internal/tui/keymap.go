package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts for the review screen.
type KeyMap struct {
	// Navigation
	Next key.Binding
	Prev key.Binding

	// Actions
	Salary key.Binding
	Other  key.Binding
	Skip   key.Binding

	// Application
	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next: key.NewBinding(
			key.WithKeys("j", "down", "right"),
			key.WithHelp("↓/j", "next"),
		),
		Prev: key.NewBinding(
			key.WithKeys("k", "up", "left"),
			key.WithHelp("↑/k", "previous"),
		),
		Salary: key.NewBinding(
			key.WithKeys("s", "enter"),
			key.WithHelp("s/enter", "salary"),
		),
		Other: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "not income"),
		),
		Skip: key.NewBinding(
			key.WithKeys("n", "tab"),
			key.WithHelp("n", "skip"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q/esc", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Salary, k.Other, k.Skip, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Salary, k.Other, k.Skip},
		{k.Next, k.Prev},
		{k.Help, k.Quit},
	}
}
