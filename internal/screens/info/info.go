// Package info shows a model's explanation text.
package info

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathblocks/internal/playbox"
	"github.com/abhisek/mathblocks/internal/screen"
	"github.com/abhisek/mathblocks/internal/screens/env"
	"github.com/abhisek/mathblocks/internal/ui/components"
	"github.com/abhisek/mathblocks/internal/ui/theme"
)

// InfoScreen renders the info text while the playbox is in modes.Info.
type InfoScreen struct {
	env *env.Env
	pb  *playbox.Playbox
}

var _ screen.Screen = (*InfoScreen)(nil)
var _ screen.Leaver = (*InfoScreen)(nil)

// New returns an InfoScreen for pb.
func New(e *env.Env, pb *playbox.Playbox) *InfoScreen {
	return &InfoScreen{env: e, pb: pb}
}

func (s *InfoScreen) Init() tea.Cmd { return nil }

func (s *InfoScreen) Title() string { return s.pb.Model().Title + " · Info" }

func (s *InfoScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }

// Leave returns the playbox to mode selection.
func (s *InfoScreen) Leave() {
	if err := s.pb.Exit(); err != nil {
		s.env.Log.Error().Err(err).Msg("leave info")
	}
}

func (s *InfoScreen) View(width, height int) string {
	m := s.pb.Model()
	cw := components.ContentWidth(width)
	var cols []string
	for i, c := range m.Layout.Categories {
		cols = append(cols, lipgloss.NewStyle().Foreground(theme.BlockColor(i)).Render("■ "+c.Label))
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		theme.Title.Render(m.Title),
		"",
		theme.Body.Width(cw-6).Render(m.Info),
		"",
		theme.Subtitle.Render("Blocks"),
		lipgloss.JoinHorizontal(lipgloss.Top, joinSpaced(cols)...),
		"",
		theme.Hint.Render("Esc to go back"),
	)
	return components.Center(components.Card(body, cw), width, height)
}

func joinSpaced(parts []string) []string {
	out := make([]string, 0, 2*len(parts))
	for i, p := range parts {
		if i > 0 {
			out = append(out, "   ")
		}
		out = append(out, p)
	}
	return out
}
