package summary

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mathblocks/internal/challenge"
	"github.com/abhisek/mathblocks/internal/router"
	"github.com/abhisek/mathblocks/internal/store"
)

func finished(score, answered, right int) challenge.State {
	return challenge.State{Status: challenge.Finished, Score: score, Answered: answered, Right: right}
}

func TestSummaryView(t *testing.T) {
	s := New(Result{Title: "Place Value", State: finished(50, 6, 5)})
	v := s.View(100, 30)

	for _, want := range []string{"Place Value challenge complete!", "Score: 50", "Answered: 6", "Right: 5", "83%"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if !strings.Contains(v, "New best") {
		t.Error("first scored run should be a new best")
	}
}

func TestSummaryBest(t *testing.T) {
	best := &store.ChallengeResult{Score: 80, Learner: "Ravi"}
	s := New(Result{Title: "Fractions", State: finished(50, 6, 5), Best: best})
	if s.NewBest() {
		t.Error("50 does not beat 80")
	}
	if !strings.Contains(s.View(100, 30), "Best so far: 80 by Ravi") {
		t.Error("expected earlier best to be shown")
	}

	s = New(Result{State: finished(90, 9, 9), Best: best})
	if !s.NewBest() {
		t.Error("90 beats 80")
	}

	s = New(Result{State: finished(0, 3, 0)})
	if s.NewBest() {
		t.Error("a zero score is never a best")
	}
}

func TestSummaryEnterPops(t *testing.T) {
	s := New(Result{State: finished(10, 1, 1)})
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Errorf("expected PopScreenMsg, got %T", cmd())
	}
}
