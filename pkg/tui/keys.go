package tui

import "github.com/charmbracelet/bubbles/key"

func binding(help string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], help))
}

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Play     key.Binding
	Kind     key.Binding
	NextRoot key.Binding
	PrevRoot key.Binding
	Help     key.Binding
	Quit     key.Binding
}

var defaultKeys = keyMap{
	Up:       binding("up", "up", "k"),
	Down:     binding("down", "down", "j"),
	Left:     binding("left", "left", "h"),
	Right:    binding("right", "right", "l"),
	Play:     binding("play", "enter", " "),
	Kind:     binding("notes/triads/sevenths", "tab"),
	NextRoot: binding("root up", "]"),
	PrevRoot: binding("root down", "["),
	Help:     binding("more", "?"),
	Quit:     binding("quit", "q", "ctrl+c"),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Kind, k.NextRoot, k.PrevRoot, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Play, k.Kind},
		{k.NextRoot, k.PrevRoot},
		{k.Help, k.Quit},
	}
}
