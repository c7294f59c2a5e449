package screen

import (
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mathblocks/internal/ui/layout"
)

// Screen is one view in the router stack.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the content area, excluding header and footer.
	View(width, height int) string

	// Title is shown in the header.
	Title() string
}

// KeyHintProvider screens supply their own footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Leaver screens are told when they leave the stack so they can stop
// timers and release the board.
type Leaver interface {
	Leave()
}

// Resumer screens are told when they become active again after the
// screen above them is popped.
type Resumer interface {
	Resume() tea.Cmd
}

// BackHandler screens consume Esc themselves. Back returns false to let
// the router pop them.
type BackHandler interface {
	Back() (bool, tea.Cmd)
}

// TickMsg is sent to the active screen after the shared scheduler has
// fired every timer due at Now.
type TickMsg struct {
	Now   time.Time
	Fired int
}
