package components

import (
	"strings"
	"unicode"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

// NameInput wraps bubbles/textinput for a learner's name: letters,
// digits, spaces and hyphens only.
type NameInput struct {
	Model textinput.Model
}

// NewNameInput returns a focused input.
func NewNameInput(placeholder string, limit int) NameInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Focus()
	return NameInput{Model: ti}
}

// Update filters printable keys before delegating.
func (n NameInput) Update(msg tea.Msg) (NameInput, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok && kmsg.Text != "" {
		for _, r := range kmsg.Text {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != ' ' && r != '-' {
				return n, nil
			}
		}
	}
	var cmd tea.Cmd
	n.Model, cmd = n.Model.Update(msg)
	return n, cmd
}

// View renders the input.
func (n NameInput) View() string {
	return n.Model.View()
}

// Value returns the trimmed input.
func (n NameInput) Value() string {
	return strings.TrimSpace(n.Model.Value())
}
