package tui

import "charm.land/bubbles/v2/key"

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	PrevPage  key.Binding
	NextPage  key.Binding
	Open      key.Binding
	Favorite  key.Binding
	Evolve    key.Binding
	Search    key.Binding
	Favorites key.Binding
	Remove    key.Binding
	Retry     key.Binding
	Back      key.Binding
	Quit      key.Binding

	Confirm key.Binding
	Cancel  key.Binding
	Cycle   key.Binding
}

var keys = keyMap{
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	PrevPage:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev page")),
	NextPage:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next page")),
	Open:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
	Favorite:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "favorite")),
	Evolve:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "evolve")),
	Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Favorites: key.NewBinding(key.WithKeys("F"), key.WithHelp("F", "favorites")),
	Remove:    key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "remove")),
	Retry:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
	Back:      key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

	Confirm: key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y", "confirm")),
	Cancel:  key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "cancel")),
	Cycle:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next target")),
}
