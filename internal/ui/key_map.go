package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	next    key.Binding
	prev    key.Binding
	submit  key.Binding
	back    key.Binding
	recent  key.Binding
	sort    key.Binding
	desc    key.Binding
	refresh key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		next:    key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		prev:    key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "previous field")),
		submit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "build schedule")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		recent:  key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "recent playlists")),
		sort:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		desc:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "reverse")),
		refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refetch")),
		quit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.next, k.prev, k.submit},
		{k.back, k.recent},
		{k.sort, k.desc, k.refresh, k.quit},
	}
}
