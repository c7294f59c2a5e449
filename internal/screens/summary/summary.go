package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathblocks/internal/challenge"
	"github.com/abhisek/mathblocks/internal/router"
	"github.com/abhisek/mathblocks/internal/screen"
	"github.com/abhisek/mathblocks/internal/store"
	"github.com/abhisek/mathblocks/internal/ui/layout"
	"github.com/abhisek/mathblocks/internal/ui/theme"
)

// Result is the end state of a challenge run.
type Result struct {
	Title string
	State challenge.State
	Best  *store.ChallengeResult // best earlier run, if any
}

// SummaryScreen shows the outcome of a challenge run.
type SummaryScreen struct {
	result Result
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New returns a SummaryScreen for r.
func New(r Result) *SummaryScreen {
	return &SummaryScreen{result: r}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Challenge Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok && kmsg.String() == "enter" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	return s, nil
}

// NewBest reports whether this run beat every earlier one.
func (s *SummaryScreen) NewBest() bool {
	st := s.result.State
	return st.Score > 0 && (s.result.Best == nil || st.Score > s.result.Best.Score)
}

func (s *SummaryScreen) View(width, height int) string {
	st := s.result.State
	line := func(style lipgloss.Style, text string) string {
		return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Inherit(style).Render(text)
	}

	var b strings.Builder
	b.WriteString(line(theme.Title, s.result.Title+" challenge complete!"))
	b.WriteString("\n\n")

	accuracy := 0.0
	if st.Answered > 0 {
		accuracy = float64(st.Right) / float64(st.Answered) * 100
	}
	b.WriteString(line(theme.Body, fmt.Sprintf("Score: %d        Answered: %d        Right: %d        Accuracy: %.0f%%",
		st.Score, st.Answered, st.Right, accuracy)))
	b.WriteString("\n\n")

	switch {
	case s.NewBest():
		b.WriteString(line(theme.Correct, "★ New best score! ★"))
	case s.result.Best != nil:
		b.WriteString(line(theme.Hint, fmt.Sprintf("Best so far: %d by %s", s.result.Best.Score, s.result.Best.Learner)))
	}
	b.WriteString("\n\n")
	b.WriteString(line(theme.Hint, "Press Enter to continue"))
	return b.String()
}
