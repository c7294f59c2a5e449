package keys

import (
	"testing"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
)

func TestPickIndex(t *testing.T) {
	assert.Equal(t, 0, PickIndex("1"))
	assert.Equal(t, 3, PickIndex("4"))
	assert.Equal(t, -1, PickIndex("0"))
	assert.Equal(t, -1, PickIndex("x"))
	assert.Equal(t, -1, PickIndex("enter"))
}

func TestPlayBindings(t *testing.T) {
	msg := tea.KeyPressMsg{Code: 'x', Text: "x"}
	assert.True(t, key.Matches(msg, Play.Remove))
	assert.False(t, key.Matches(msg, Play.Drop))

	enter := tea.KeyPressMsg{Code: tea.KeyEnter}
	assert.True(t, key.Matches(enter, Play.Drop))
	assert.True(t, key.Matches(enter, Menu.Select))
}
