package welcome

import (
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathblocks/internal/router"
	"github.com/abhisek/mathblocks/internal/screen"
	"github.com/abhisek/mathblocks/internal/ui/components"
	"github.com/abhisek/mathblocks/internal/ui/keys"
	"github.com/abhisek/mathblocks/internal/ui/layout"
	"github.com/abhisek/mathblocks/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	stackEnd     = 800 * time.Millisecond
	totalDur     = 1500 * time.Millisecond

	nameLimit = 24
)

// Blocks drop in one per tick until the stack is complete.
var stackRows = []string{
	"          ▆▆          ",
	"       ▆▆ ▆▆ ▆▆       ",
	"    ▆▆ ▆▆ ▆▆ ▆▆ ▆▆    ",
	" ▆▆ ▆▆ ▆▆ ▆▆ ▆▆ ▆▆ ▆▆ ",
}

type tickMsg time.Time

// SignIn starts a session for name and returns the screen to show next.
type SignIn func(name string) screen.Screen

// WelcomeScreen plays a short splash, then asks for the learner's name.
type WelcomeScreen struct {
	signIn       SignIn
	input        components.NameInput
	elapsed      time.Duration
	tickCount    int
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New returns a WelcomeScreen with the name prefilled.
func New(signIn SignIn, name string) *WelcomeScreen {
	in := components.NewNameInput("your name", nameLimit)
	in.Model.SetValue(name)
	return &WelcomeScreen{signIn: signIn, input: in}
}

func (w *WelcomeScreen) Title() string { return "" }

func (w *WelcomeScreen) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (w *WelcomeScreen) ready() bool { return w.elapsed >= totalDur }

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		w.tickCount++
		if w.ready() {
			return w, nil
		}
		w.elapsed += tickInterval
		return w, tick()

	case tea.KeyPressMsg:
		if !w.ready() {
			w.elapsed = totalDur
			return w, nil
		}
		if key.Matches(msg, keys.Menu.Select) {
			return w, w.transition()
		}
		var cmd tea.Cmd
		w.input, cmd = w.input.Update(msg)
		return w, cmd
	}
	return w, nil
}

func (w *WelcomeScreen) transition() tea.Cmd {
	name := w.input.Value()
	if w.transitioned || name == "" {
		return nil
	}
	w.transitioned = true
	next := w.signIn(name)
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: next}
	}
}

// KeyHints implements screen.KeyHintProvider.
func (w *WelcomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Start"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (w *WelcomeScreen) View(width, height int) string {
	var sections []string

	shown := min(int(w.elapsed*time.Duration(len(stackRows))/stackEnd), len(stackRows))
	rows := make([]string, len(stackRows))
	for i := range stackRows {
		// bottom row lands first
		row := len(stackRows) - 1 - i
		if i < shown {
			rows[row] = lipgloss.NewStyle().Foreground(theme.BlockColor(i)).Render(stackRows[row])
		} else {
			rows[row] = strings.Repeat(" ", lipgloss.Width(stackRows[row]))
		}
	}
	sections = append(sections, strings.Join(rows, "\n"))

	if w.ready() {
		sections = append(sections,
			"",
			RenderBanner(width),
			"",
			lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render("Build numbers with blocks!"),
			"",
			theme.Body.Render("What's your name?"),
			w.input.View(),
			"",
			theme.Hint.Render("press Enter to start"),
		)
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(sections, "\n"))
}
