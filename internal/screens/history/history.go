package history

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathblocks/internal/screen"
	"github.com/abhisek/mathblocks/internal/store"
	"github.com/abhisek/mathblocks/internal/ui/keys"
	"github.com/abhisek/mathblocks/internal/ui/layout"
	"github.com/abhisek/mathblocks/internal/ui/theme"
)

const limit = 50

type historyLoadedMsg struct {
	Results []store.ChallengeResult
	Err     error
}

// HistoryScreen lists past challenge runs, optionally for one model.
type HistoryScreen struct {
	repo     store.ChallengeRepo
	model    string
	results  []store.ChallengeResult
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New returns a HistoryScreen. An empty model lists every model.
func New(repo store.ChallengeRepo, model string) *HistoryScreen {
	return &HistoryScreen{
		repo:     repo,
		model:    model,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		if s.repo == nil {
			return historyLoadedMsg{}
		}
		all, err := s.repo.Recent(context.Background(), limit)
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		if s.model == "" {
			return historyLoadedMsg{Results: all}
		}
		var out []store.ChallengeResult
		for _, r := range all {
			if r.Model == s.model {
				out = append(out, r)
			}
		}
		return historyLoadedMsg{Results: out}
	}
}

func (s *HistoryScreen) Title() string {
	return "Scores"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.results = msg.Results
		}
		s.loaded = true

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Menu.Up):
			if s.selected > 0 {
				s.selected--
			}
		case key.Matches(msg, keys.Menu.Down):
			if s.selected < len(s.results)-1 {
				s.selected++
			}
		case key.Matches(msg, keys.Menu.Select):
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func center(width int, style lipgloss.Style, text string) string {
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(text))
}

func (s *HistoryScreen) View(width, height int) string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	if s.errMsg != "" {
		return center(width, lipgloss.NewStyle().Foreground(theme.Error), "\n\nError: "+s.errMsg)
	}
	if !s.loaded {
		return center(width, dim, "\n\n  Loading scores...")
	}
	if len(s.results) == 0 {
		return center(width, dim.Italic(true), "\n\n  No challenges yet. Try one!")
	}

	var b strings.Builder
	b.WriteString("\n")
	for i, r := range s.results {
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			prefix = "> "
			style = style.Foreground(theme.Primary).Bold(true)
		}
		line := fmt.Sprintf("%s%s  %-12s  %4d pts  %d/%d right",
			prefix, r.Timestamp.Local().Format("Jan 02 15:04"), r.Model, r.Score, r.Correct, r.Answered)
		b.WriteString(center(width, style, line))
		b.WriteString("\n")

		if s.expanded[i] {
			detail := fmt.Sprintf("    %s  %s  session %s", r.Learner, r.Policy, shortID(r.SessionID))
			b.WriteString(center(width, dim.Italic(true), detail))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
