// Package keys holds the key bindings shared by the screens.
package keys

import "charm.land/bubbles/v2/key"

// Nav moves through menus.
type Nav struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Back   key.Binding
	Quit   key.Binding
}

// Board drives the play screen.
type Board struct {
	Pick     key.Binding
	Left     key.Binding
	Right    key.Binding
	Drop     key.Binding
	Remove   key.Binding
	Submit   key.Binding
	Next     key.Binding
	SlotL    key.Binding
	SlotR    key.Binding
	Clear    key.Binding
	Continue key.Binding
}

// Menu is the shared menu keymap.
var Menu = Nav{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "select")),
	Back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "back")),
	Quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("Ctrl+C", "quit")),
}

// Play is the play screen keymap.
var Play = Board{
	Pick:     key.NewBinding(key.WithKeys("1", "2", "3", "4"), key.WithHelp("1-4", "pick block")),
	Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "column")),
	Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "column")),
	Drop:     key.NewBinding(key.WithKeys("space", "enter"), key.WithHelp("Space", "drop")),
	Remove:   key.NewBinding(key.WithKeys("x", "backspace"), key.WithHelp("x", "remove")),
	Submit:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "submit")),
	Next:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next")),
	SlotL:    key.NewBinding(key.WithKeys("[", "a"), key.WithHelp("[", "left slot")),
	SlotR:    key.NewBinding(key.WithKeys("]", "d"), key.WithHelp("]", "right slot")),
	Clear:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
	Continue: key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "continue")),
}

// PickIndex returns the tray index for a pick key, or -1.
func PickIndex(k string) int {
	if len(k) == 1 && k[0] >= '1' && k[0] <= '9' {
		return int(k[0] - '1')
	}
	return -1
}
