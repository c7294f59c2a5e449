// Package models is the top-level list of manipulative models.
package models

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathblocks/internal/router"
	"github.com/abhisek/mathblocks/internal/screen"
	"github.com/abhisek/mathblocks/internal/screens/env"
	"github.com/abhisek/mathblocks/internal/screens/history"
	"github.com/abhisek/mathblocks/internal/screens/modemenu"
	"github.com/abhisek/mathblocks/internal/ui/components"
	"github.com/abhisek/mathblocks/internal/ui/layout"
	"github.com/abhisek/mathblocks/internal/ui/theme"
)

// ModelsScreen lets the learner pick a model.
type ModelsScreen struct {
	env    *env.Env
	menu   components.Menu
	errMsg string
}

var _ screen.Screen = (*ModelsScreen)(nil)

// New lists every model in the library.
func New(e *env.Env) *ModelsScreen {
	s := &ModelsScreen{env: e}
	s.menu = components.NewMenu(s.items())
	return s
}

func (s *ModelsScreen) items() []components.MenuItem {
	var items []components.MenuItem
	for _, name := range s.env.Library.Models() {
		pack := s.env.Library[name]
		detail := ""
		if best, err := s.env.Best(name); err == nil && best != nil {
			detail = fmt.Sprintf("best %d", best.Score)
		}
		items = append(items, components.MenuItem{
			Label:  pack.Title,
			Detail: detail,
			Action: s.open(name),
		})
	}
	items = append(items, components.MenuItem{
		Label: "Scores",
		Action: func() tea.Cmd {
			return push(history.New(s.env.Results, ""))
		},
	})
	return items
}

func (s *ModelsScreen) open(name string) func() tea.Cmd {
	return func() tea.Cmd {
		pb, err := s.env.Playbox(name)
		if err == nil {
			err = pb.Open()
		}
		if err != nil {
			s.errMsg = err.Error()
			return nil
		}
		s.errMsg = ""
		return push(modemenu.New(s.env, pb))
	}
}

func push(sc screen.Screen) tea.Cmd {
	return func() tea.Msg { return router.PushScreenMsg{Screen: sc} }
}

func (s *ModelsScreen) Init() tea.Cmd { return nil }

// Resume refreshes best scores after returning from a model.
func (s *ModelsScreen) Resume() tea.Cmd {
	selected := s.menu.Selected
	s.menu = components.NewMenu(s.items())
	s.menu.Selected = selected
	return nil
}

func (s *ModelsScreen) Title() string { return "Choose Blocks" }

func (s *ModelsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.MouseClickMsg:
		if msg.Button == tea.MouseLeft {
			return s, s.menu.Click(msg.Y - s.menuTop())
		}
		return s, nil
	}
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

// menuTop is the screen row of the first menu item.
func (s *ModelsScreen) menuTop() int {
	return layout.ContentTop(layout.MinWidth) + 3
}

func (s *ModelsScreen) View(width, height int) string {
	var b []string
	b = append(b, "", theme.Title.Width(width).Render("Which blocks today?"), "")
	b = append(b, s.menu.View())
	if s.errMsg != "" {
		b = append(b, lipgloss.NewStyle().Foreground(theme.Error).Render("  "+s.errMsg))
	}
	return lipgloss.JoinVertical(lipgloss.Left, b...)
}
