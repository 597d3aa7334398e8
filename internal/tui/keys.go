package tui

import "github.com/charmbracelet/bubbles/key"

// Keys defines the review console keybindings.
type Keys struct {
	Quit     key.Binding
	Back     key.Binding
	Select   key.Binding
	Prev     key.Binding
	Next     key.Binding
	Intake   key.Binding
	Review   key.Binding
	Settings key.Binding
	Download key.Binding
	Filter   key.Binding
	Save     key.Binding
	Delete   key.Binding
	NavUp    key.Binding
	NavDown  key.Binding
	Tabs     []key.Binding
}

func NewKeys() Keys {
	return Keys{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Prev: key.NewBinding(
			key.WithKeys("left", "["),
			key.WithHelp("←/[", "previous"),
		),
		Next: key.NewBinding(
			key.WithKeys("right", "]"),
			key.WithHelp("→/]", "next"),
		),
		Intake: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "choose images"),
		),
		Review: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "review"),
		),
		Settings: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "settings"),
		),
		Download: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "download saliency"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
		Delete: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "delete"),
		),
		NavUp: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		NavDown: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Tabs: []key.Binding{
			key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "main")),
			key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "instructions")),
			key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "database")),
			key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "about")),
		},
	}
}
