package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	Quit        key.Binding
	ViewLogs    key.Binding
	ViewStats   key.Binding
	ViewStorage key.Binding

	Pause  key.Binding
	Follow key.Binding
	Search key.Binding
	Escape key.Binding

	ToggleError   key.Binding
	ToggleWarning key.Binding
	ToggleInfo    key.Binding
	ToggleDebug   key.Binding
	ToggleVerbose key.Binding

	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding

	Confirm key.Binding
}

// defaultKeyMap returns the default key bindings.
func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "Quit"),
		),
		ViewLogs: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "Logs view"),
		),
		ViewStats: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "Stats view"),
		),
		ViewStorage: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "Storage view"),
		),
		Pause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "Pause/resume"),
		),
		Follow: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "Tail mode"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Search"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Clear search"),
		),
		ToggleError: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "Toggle errors"),
		),
		ToggleWarning: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "Toggle warnings"),
		),
		ToggleInfo: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "Toggle info"),
		),
		ToggleDebug: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Toggle debug"),
		),
		ToggleVerbose: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "Toggle verbose"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "Scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "Scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "Page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "Page down"),
		),
		Top: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "Oldest"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "Newest"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
	}
}
