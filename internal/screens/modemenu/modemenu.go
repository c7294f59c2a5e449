// Package modemenu is a model's mode selection screen.
package modemenu

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathblocks/internal/modes"
	"github.com/abhisek/mathblocks/internal/playbox"
	"github.com/abhisek/mathblocks/internal/router"
	"github.com/abhisek/mathblocks/internal/screen"
	"github.com/abhisek/mathblocks/internal/screens/env"
	"github.com/abhisek/mathblocks/internal/screens/history"
	"github.com/abhisek/mathblocks/internal/screens/info"
	"github.com/abhisek/mathblocks/internal/screens/play"
	"github.com/abhisek/mathblocks/internal/ui/components"
	"github.com/abhisek/mathblocks/internal/ui/layout"
	"github.com/abhisek/mathblocks/internal/ui/theme"
)

// MenuScreen offers the activities of one model.
type MenuScreen struct {
	env    *env.Env
	pb     *playbox.Playbox
	menu   components.Menu
	errMsg string
}

var _ screen.Screen = (*MenuScreen)(nil)

// New returns the menu for pb, which must be in modes.Selection.
func New(e *env.Env, pb *playbox.Playbox) *MenuScreen {
	s := &MenuScreen{env: e, pb: pb}
	s.menu = components.NewMenu(s.items())
	return s
}

func (s *MenuScreen) items() []components.MenuItem {
	m := s.pb.Model()
	challengeDetail := fmt.Sprintf("%d questions", len(m.Questions))
	if best, err := s.env.Best(m.Name); err == nil && best != nil {
		challengeDetail += fmt.Sprintf(", best %d", best.Score)
	}
	return []components.MenuItem{
		{Label: "Training", Detail: "learn step by step", Action: s.enter(modes.Training), Disabled: m.Script == nil},
		{Label: "Free Play", Detail: "build anything", Action: s.enter(modes.FreePlay)},
		{Label: "Challenge", Detail: challengeDetail, Action: s.enter(modes.Challenge), Disabled: len(m.Questions) == 0},
		{Label: "Info", Detail: "how these blocks work", Action: s.enter(modes.Info)},
		{Label: "Scores", Action: func() tea.Cmd {
			return push(history.New(s.env.Results, m.Name))
		}},
	}
}

func (s *MenuScreen) enter(mode modes.Mode) func() tea.Cmd {
	return func() tea.Cmd {
		if err := s.pb.Enter(mode); err != nil {
			s.errMsg = err.Error()
			return nil
		}
		s.errMsg = ""
		if mode == modes.Info {
			return push(info.New(s.env, s.pb))
		}
		return push(play.New(s.env, s.pb))
	}
}

func push(sc screen.Screen) tea.Cmd {
	return func() tea.Msg { return router.PushScreenMsg{Screen: sc} }
}

func (s *MenuScreen) Init() tea.Cmd { return nil }

// Resume refreshes the best score after an activity.
func (s *MenuScreen) Resume() tea.Cmd {
	selected := s.menu.Selected
	s.menu = components.NewMenu(s.items())
	s.menu.Selected = selected
	return nil
}

func (s *MenuScreen) Title() string { return s.pb.Model().Title }

func (s *MenuScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(tea.MouseClickMsg); ok {
		if msg.Button == tea.MouseLeft {
			return s, s.menu.Click(msg.Y - layout.ContentTop(layout.MinWidth) - 3)
		}
		return s, nil
	}
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *MenuScreen) View(width, height int) string {
	b := []string{
		"",
		theme.Title.Width(width).Render("What would you like to do?"),
		"",
		s.menu.View(),
	}
	if s.errMsg != "" {
		b = append(b, lipgloss.NewStyle().Foreground(theme.Error).Render("  "+s.errMsg))
	}
	return lipgloss.JoinVertical(lipgloss.Left, b...)
}
