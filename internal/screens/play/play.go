// Package play is the board screen shared by training, free play and
// challenge modes.
package play

import (
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mathblocks/internal/board"
	"github.com/abhisek/mathblocks/internal/challenge"
	"github.com/abhisek/mathblocks/internal/fraction"
	"github.com/abhisek/mathblocks/internal/interaction"
	"github.com/abhisek/mathblocks/internal/modes"
	"github.com/abhisek/mathblocks/internal/playbox"
	"github.com/abhisek/mathblocks/internal/router"
	"github.com/abhisek/mathblocks/internal/screen"
	"github.com/abhisek/mathblocks/internal/screens/env"
	"github.com/abhisek/mathblocks/internal/screens/summary"
	"github.com/abhisek/mathblocks/internal/store"
	"github.com/abhisek/mathblocks/internal/ui/keys"
	"github.com/abhisek/mathblocks/internal/ui/layout"
)

// flashFor is how long a cue message stays up.
const flashFor = 1500 * time.Millisecond

// PlayScreen drives one activity of a playbox.
type PlayScreen struct {
	env     *env.Env
	pb      *playbox.Playbox
	gesture *interaction.Gesture
	mode    modes.Mode

	pick   int // tray piece, by category index
	target int // hovered column, by category index

	flash      playbox.Cue
	flashUntil time.Time
	now        time.Time

	best *store.ChallengeResult
	done bool // activity over, waiting for the router

	geo geometry
}

var _ screen.Screen = (*PlayScreen)(nil)
var _ screen.Leaver = (*PlayScreen)(nil)
var _ screen.KeyHintProvider = (*PlayScreen)(nil)

// New returns a PlayScreen for pb, which must already be in the activity.
func New(e *env.Env, pb *playbox.Playbox) *PlayScreen {
	s := &PlayScreen{
		env:     e,
		pb:      pb,
		gesture: pb.Gesture(),
		mode:    pb.Mode(),
		now:     e.Sched.Now(),
	}
	if s.mode == modes.Challenge {
		best, err := e.Best(pb.Model().Name)
		if err != nil {
			e.Log.Warn().Err(err).Msg("load best score")
		}
		s.best = best
	}
	return s
}

func (s *PlayScreen) Init() tea.Cmd { return nil }

func (s *PlayScreen) Title() string {
	return s.pb.Model().Title + " · " + modeTitle(s.mode)
}

func modeTitle(m modes.Mode) string {
	switch m {
	case modes.Training:
		return "Training"
	case modes.FreePlay:
		return "Free Play"
	case modes.Challenge:
		return "Challenge"
	default:
		return m.String()
	}
}

// Leave returns the playbox to mode selection, which stops the lesson or
// the quiz and records the challenge result.
func (s *PlayScreen) Leave() {
	if err := s.pb.Exit(); err != nil {
		s.env.Log.Error().Err(err).Msg("leave activity")
	}
}

func (s *PlayScreen) KeyHints() []layout.KeyHint {
	k := keys.Play
	hints := []layout.KeyHint{
		{Key: k.Pick.Help().Key, Description: k.Pick.Help().Desc},
		{Key: "←→", Description: "column"},
		{Key: k.Drop.Help().Key, Description: k.Drop.Help().Desc},
	}
	switch s.mode {
	case modes.FreePlay:
		hints = append(hints, layout.KeyHint{Key: k.Remove.Help().Key, Description: k.Remove.Help().Desc})
	case modes.Challenge:
		hints = append(hints,
			layout.KeyHint{Key: k.Submit.Help().Key, Description: k.Submit.Help().Desc},
			layout.KeyHint{Key: k.Next.Help().Key, Description: k.Next.Help().Desc},
		)
	}
	if s.pb.Model().Equation {
		hints = append(hints, layout.KeyHint{Key: "[ ]", Description: "slots"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
}

func (s *PlayScreen) categories() []board.Category {
	return s.pb.Model().Layout.Categories
}

func (s *PlayScreen) piece() fraction.Fraction {
	return s.categories()[s.pick].Magnitude
}

func (s *PlayScreen) targetKey() string {
	return s.categories()[s.target].Key
}

func (s *PlayScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	if s.done {
		return s, nil
	}
	switch msg := msg.(type) {
	case screen.TickMsg:
		s.now = msg.Now
	case tea.KeyPressMsg:
		cmd = s.handleKey(msg)
	case tea.MouseClickMsg:
		s.handleClick(msg.Mouse())
	case tea.MouseMotionMsg:
		s.handleMotion(msg.Mouse())
	case tea.MouseReleaseMsg:
		s.handleRelease(msg.Mouse())
	}
	s.takeCue()
	return s, cmd
}

func (s *PlayScreen) takeCue() {
	if c := s.pb.TakeCue(); c != playbox.CueNone {
		s.flash = c
		s.flashUntil = s.now.Add(flashFor)
	}
}

func (s *PlayScreen) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	k := keys.Play
	n := len(s.categories())

	if s.lessonFinished() && key.Matches(msg, k.Continue) {
		if s.pb.ConfirmComplete() {
			s.done = true
			return pop()
		}
		return nil
	}

	switch {
	case key.Matches(msg, k.Pick):
		if i := keys.PickIndex(msg.String()); i >= 0 && i < n {
			s.pick, s.target = i, i
		}
	case key.Matches(msg, k.Left):
		s.target = (s.target + n - 1) % n
	case key.Matches(msg, k.Right):
		s.target = (s.target + 1) % n
	case key.Matches(msg, k.Drop):
		s.pb.Drop(s.piece(), s.targetKey())
	case key.Matches(msg, k.Remove):
		s.removeLast()
	case key.Matches(msg, k.SlotL):
		s.pb.SelectPiece(s.piece(), board.SlotLeft)
	case key.Matches(msg, k.SlotR):
		s.pb.SelectPiece(s.piece(), board.SlotRight)
	case key.Matches(msg, k.Clear):
		s.pb.ClearSlot(board.SlotLeft)
		s.pb.ClearSlot(board.SlotRight)
	case key.Matches(msg, k.Submit):
		s.pb.Submit()
	case key.Matches(msg, k.Next):
		return s.next()
	}
	return nil
}

func (s *PlayScreen) removeLast() {
	units := s.pb.Board().Units(s.targetKey())
	for i := len(units) - 1; i >= 0; i-- {
		if !units[i].State.Exiting() {
			s.pb.Remove(s.targetKey(), units[i].ID)
			return
		}
	}
}

func (s *PlayScreen) lessonFinished() bool {
	snap := s.pb.Snapshot()
	return snap.Lesson != nil && snap.Lesson.Finished
}

// next moves to the next question, or to the summary once the run ends.
func (s *PlayScreen) next() tea.Cmd {
	snap := s.pb.Snapshot()
	if snap.Challenge == nil || snap.Challenge.Status == challenge.Playing {
		return nil
	}
	if s.pb.Next() {
		return nil
	}
	s.done = true
	sum := summary.New(summary.Result{
		Title: s.pb.Model().Title,
		State: *s.pb.Snapshot().Challenge,
		Best:  s.best,
	})
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: sum} }
}

func pop() tea.Cmd {
	return func() tea.Msg { return router.PopScreenMsg{} }
}

func (s *PlayScreen) handleClick(m tea.Mouse) {
	if m.Button != tea.MouseLeft {
		return
	}
	if i, ok := s.geo.trayAt(m.X, m.Y); ok && i < len(s.categories()) {
		s.pick = i
		s.gesture.Start(s.piece())
		return
	}
	if i, ok := s.geo.columnAt(m.X, m.Y); ok && i < len(s.categories()) {
		s.target = i
	}
}

func (s *PlayScreen) handleMotion(m tea.Mouse) {
	if !s.gesture.Active() {
		return
	}
	if i, ok := s.geo.columnAt(m.X, m.Y); ok && i < len(s.categories()) {
		s.target = i
		s.gesture.Move(s.categories()[i].Key)
		return
	}
	s.gesture.Move("")
}

func (s *PlayScreen) handleRelease(m tea.Mouse) {
	if !s.gesture.Active() {
		return
	}
	s.handleMotion(m)
	value := s.gesture.Value()
	// An illegal release still goes through Drop so the learner sees the
	// reject cue.
	if target, _ := s.gesture.End(); target != "" {
		s.pb.Drop(value, target)
	}
}

func (s *PlayScreen) flashText() string {
	if s.now.After(s.flashUntil) {
		return ""
	}
	switch s.flash {
	case playbox.CueReject:
		return "That block can't go there."
	case playbox.CueTransformStart:
		return "Regrouping..."
	case playbox.CueTransformDone:
		return "Regrouped!"
	case playbox.CueCelebrate:
		return "Correct!"
	case playbox.CueIncorrect:
		return "Not quite. Press n for the next one."
	case playbox.CueTimeout:
		return "Time's up!"
	}
	return ""
}
