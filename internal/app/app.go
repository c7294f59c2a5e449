package app

import (
	"fmt"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathblocks/internal/router"
	"github.com/abhisek/mathblocks/internal/screen"
	"github.com/abhisek/mathblocks/internal/screens/env"
	"github.com/abhisek/mathblocks/internal/screens/models"
	"github.com/abhisek/mathblocks/internal/screens/welcome"
	"github.com/abhisek/mathblocks/internal/ui/layout"
)

// TickInterval is how often the shared scheduler is advanced.
const TickInterval = 50 * time.Millisecond

type clockMsg time.Time

// AppModel is the root Bubble Tea model.
type AppModel struct {
	env    *env.Env
	router *router.Router
	width  int
	height int
}

// New returns the root model starting at the welcome screen.
func New(e *env.Env) AppModel {
	signIn := func(name string) screen.Screen {
		e.SignIn(name)
		return models.New(e)
	}
	return AppModel{
		env:    e,
		router: router.New(welcome.New(signIn, e.LastLearner())),
	}
}

func clock() tea.Cmd {
	return tea.Tick(TickInterval, func(t time.Time) tea.Msg { return clockMsg(t) })
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(clock(), m.router.Active().Init())
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case clockMsg:
		now := time.Time(msg)
		fired := m.env.Sched.Advance(now)
		cmd := m.router.Update(screen.TickMsg{Now: now, Fired: fired})
		return m, tea.Batch(cmd, clock())

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.leaveAll()
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, m.router.Back()
			}
			return m, nil
		}
	}

	return m, m.router.Update(msg)
}

// leaveAll unwinds the stack so open activities are closed and saved.
func (m AppModel) leaveAll() {
	for m.router.Depth() > 1 {
		m.router.Pop()
	}
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion

	if m.width == 0 || m.height == 0 {
		return v
	}
	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	learner := ""
	if u := m.env.User(); u != nil {
		learner = u.Name
	}
	header := layout.RenderHeader(active.Title(), learner, m.width)

	var hints []layout.KeyHint
	if p, ok := active.(screen.KeyHintProvider); ok {
		hints = p.KeyHints()
	} else if m.router.Depth() > 1 {
		hints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		hints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	footer := layout.RenderFooter(hints, m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)
	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

// Run starts the program and blocks until it exits.
func Run(e *env.Env) error {
	p := tea.NewProgram(New(e))
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
