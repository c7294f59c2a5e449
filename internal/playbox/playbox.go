// Package playbox runs one manipulative model end to end: its board,
// regrouping engine, training lesson, challenge quiz and mode machine.
//
// A Playbox is driven from a single goroutine. Learner input arrives as
// method calls and time arrives through the shared scheduler.
package playbox

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"

	"github.com/abhisek/mathblocks/internal/analytics"
	"github.com/abhisek/mathblocks/internal/board"
	"github.com/abhisek/mathblocks/internal/challenge"
	"github.com/abhisek/mathblocks/internal/fraction"
	"github.com/abhisek/mathblocks/internal/interaction"
	"github.com/abhisek/mathblocks/internal/modes"
	"github.com/abhisek/mathblocks/internal/narration"
	"github.com/abhisek/mathblocks/internal/schedule"
	"github.com/abhisek/mathblocks/internal/store"
	"github.com/abhisek/mathblocks/internal/training"
	"github.com/abhisek/mathblocks/internal/transform"
)

// settleDelay is how long a dropped unit shows as entering.
const settleDelay = 250 * time.Millisecond

// Cue is a one-shot feedback signal for the UI.
type Cue int

const (
	CueNone Cue = iota
	CueDrop
	CueReject
	CueTransformStart
	CueTransformDone
	CueCelebrate
	CueIncorrect
	CueTimeout
)

// Config holds a Playbox's collaborators.
type Config struct {
	Narrator     narration.Narrator
	Locale       string
	Events       *analytics.Logger
	User         *analytics.User
	Results      store.ChallengeRepo
	FallbackWait time.Duration
	Durations    challenge.Durations
	Policy       challenge.Policy
	Length       int
	Rand         *rand.Rand
	Log          zerolog.Logger
}

// Playbox is one model instance.
type Playbox struct {
	model   Model
	cfg     Config
	sched   *schedule.Scheduler
	machine *modes.Machine
	board   *board.Board
	eq      *board.Equation
	engine  *transform.Engine
	sink    *analytics.Sink

	scope   *schedule.Scope
	runner  *training.Runner
	quiz    *challenge.Runner
	caption string
	cue     Cue
	saved   bool
}

// New wires a Playbox for model on sched. It starts in modes.Welcome.
func New(model Model, sched *schedule.Scheduler, cfg Config) *Playbox {
	if cfg.Narrator == nil {
		cfg.Narrator = narration.Silent{}
	}
	if cfg.Locale == "" {
		cfg.Locale = "en"
	}
	p := &Playbox{
		model:   model,
		cfg:     cfg,
		sched:   sched,
		machine: modes.NewMachine(),
		eq:      board.NewEquation(),
		sink:    cfg.Events.For(cfg.User, model.Name),
	}
	p.board = board.New(model.Layout, sched)
	p.scope = sched.NewScope()
	p.engine = transform.New(p.board, p.scope, transform.Config{Delay: model.TransformDelay})
	p.engine.OnBegin(func(transform.Pending) { p.cue = CueTransformStart })
	p.engine.OnCommit(p.transformed)
	p.board.OnChange(p.boardChanged)

	p.machine.OnExit(p.teardown)
	p.machine.OnEnter(func(from, to modes.Mode) {
		p.sink.Record("mode_enter", map[string]any{"from": from.String(), "mode": to.String()})
		p.cfg.Log.Debug().Str("model", model.Name).Str("from", from.String()).Str("to", to.String()).Msg("mode change")
	})
	return p
}

// Model returns the model definition.
func (p *Playbox) Model() Model { return p.model }

// Mode returns the current mode.
func (p *Playbox) Mode() modes.Mode { return p.machine.Current() }

// Board exposes the board for rendering.
func (p *Playbox) Board() *board.Board { return p.board }

// Open moves from the welcome screen to mode selection.
func (p *Playbox) Open() error {
	if p.machine.Current() != modes.Welcome {
		return nil
	}
	return p.Enter(modes.Selection)
}

// Enter switches to mode. Leaving a mode cancels its timers and
// narration; entering one starts from an empty board.
func (p *Playbox) Enter(mode modes.Mode) error {
	if !p.machine.Can(mode) {
		return fmt.Errorf("%w: %s -> %s", modes.ErrInvalidTransition, p.machine.Current(), mode)
	}
	scope := p.sched.NewScope()

	var quiz *challenge.Runner
	if mode == modes.Challenge {
		var err error
		quiz, err = challenge.NewRunner(p.model.Questions, scope, challenge.Config{
			Durations: p.cfg.Durations,
			Policy:    p.cfg.Policy,
			Length:    p.cfg.Length,
			MaxTotal:  p.model.Layout.MaxTotal(),
			Rand:      p.cfg.Rand,
		}, challenge.WithEvents(p.sink), challenge.WithReset(p.resetWork))
		if err != nil {
			scope.Close()
			return fmt.Errorf("start challenge: %w", err)
		}
	}
	if mode == modes.Training && p.model.Script == nil {
		scope.Close()
		return fmt.Errorf("model %s has no training script", p.model.Name)
	}

	if err := p.machine.Transition(mode); err != nil {
		scope.Close()
		return err
	}

	p.scope = scope
	p.engine.Rebind(scope)
	p.resetWork()
	p.caption = ""
	p.cue = CueNone

	switch mode {
	case modes.Training:
		p.runner = training.NewRunner(p.model.Script, p.board, scope,
			training.WithNarrator(p.cfg.Narrator),
			training.WithLocale(p.cfg.Locale),
			training.WithEvents(p.sink),
			training.WithFallbackWait(p.cfg.FallbackWait),
			training.WithReset(p.resetWork),
		)
		p.runner.OnStep(func(st training.Step) { p.caption = st.Narration })
		p.runner.Start()
	case modes.Challenge:
		p.quiz = quiz
		p.saved = false
		p.quiz.OnResult(p.challengeResult)
		p.quiz.Begin()
	}
	return nil
}

// Exit returns to mode selection. It is a no-op outside an activity.
func (p *Playbox) Exit() error {
	switch p.machine.Current() {
	case modes.Welcome, modes.Selection:
		return nil
	}
	return p.Enter(modes.Selection)
}

func (p *Playbox) teardown(from, _ modes.Mode) {
	if p.runner != nil {
		p.runner.Close()
		p.runner = nil
	}
	if p.quiz != nil {
		p.quiz.Close()
		p.saveChallenge()
		p.quiz = nil
	}
	p.cfg.Narrator.Cancel()
	p.scope.Close()
}

func (p *Playbox) resetWork() {
	p.engine.Cancel()
	p.board.Clear()
	p.eq.Reset()
}

func (p *Playbox) boardChanged() {
	if p.runner != nil {
		p.runner.ObserveBoard()
	}
}

func (p *Playbox) transformed(res transform.Result) {
	p.cue = CueTransformDone
	p.sink.Record("regroup", map[string]any{"from": res.From, "into": res.Into})
	if p.runner != nil {
		p.runner.ObserveTransform(res)
	}
}

func (p *Playbox) currentStep() *training.Step {
	if p.machine.Current() != modes.Training || p.runner == nil {
		return nil
	}
	st := p.runner.Current()
	return &st
}

func (p *Playbox) quizOpen() bool {
	return p.quiz != nil && p.quiz.State().Status == challenge.Playing
}

// CanDrop reports whether a unit of value may be dropped on category now.
func (p *Playbox) CanDrop(value fraction.Fraction, category string) bool {
	mode := p.machine.Current()
	if mode == modes.Challenge && !p.quizOpen() {
		return false
	}
	return interaction.IsActionAllowed(value, category, mode, p.currentStep(), p.board)
}

// Drop adds a unit if the drop is legal.
func (p *Playbox) Drop(value fraction.Fraction, category string) bool {
	if !p.CanDrop(value, category) {
		p.cue = CueReject
		return false
	}
	if _, ok := p.board.AddUnit(category, value); !ok {
		p.cue = CueReject
		return false
	}
	if p.cue != CueTransformStart {
		p.cue = CueDrop
	}
	p.scope.After(settleDelay, p.board.Settle)
	return true
}

// Gesture returns a pointer gesture bound to CanDrop.
func (p *Playbox) Gesture() *interaction.Gesture {
	return interaction.NewGesture(p.CanDrop)
}

// Remove takes a unit off the board. Training locks removal.
func (p *Playbox) Remove(category, id string) bool {
	switch p.machine.Current() {
	case modes.FreePlay:
	case modes.Challenge:
		if !p.quizOpen() {
			return false
		}
	default:
		return false
	}
	return p.board.RemoveUnit(category, id)
}

// CanSelect reports whether piece may go into an equation slot.
func (p *Playbox) CanSelect(piece fraction.Fraction, slot string) bool {
	if !p.model.Equation {
		return false
	}
	mode := p.machine.Current()
	if mode == modes.Challenge && !p.quizOpen() {
		return false
	}
	return interaction.IsSelectionAllowed(piece, slot, mode, p.currentStep(), p.model.Layout, p.eq)
}

// SelectPiece puts piece into an equation slot.
func (p *Playbox) SelectPiece(piece fraction.Fraction, slot string) bool {
	if !p.CanSelect(piece, slot) {
		p.cue = CueReject
		return false
	}
	p.eq.Set(slot, piece)
	p.cue = CueDrop
	return true
}

// ClearSlot empties an equation slot.
func (p *Playbox) ClearSlot(slot string) {
	if p.machine.Current() == modes.Challenge && !p.quizOpen() {
		return
	}
	p.eq.ClearSlot(slot)
}

// Answer is the value the learner has built for the current question:
// the equation result, or the board total. Units being regrouped do not
// count until the regroup commits.
func (p *Playbox) Answer() fraction.Fraction {
	if p.quiz != nil && p.quiz.State().Question.Kind == challenge.KindEquation {
		return p.eq.Result()
	}
	return p.board.Total()
}

// Submit scores the current answer. ok is false outside a live question.
func (p *Playbox) Submit() (status challenge.Status, ok bool) {
	if p.machine.Current() != modes.Challenge || !p.quizOpen() {
		return challenge.Finished, false
	}
	return p.quiz.Submit(p.Answer()), true
}

// Next moves to the next question. It reports false when the run is over.
func (p *Playbox) Next() bool {
	if p.quiz == nil {
		return false
	}
	return p.quiz.Next()
}

// ConfirmComplete acknowledges the end of a lesson and returns to mode
// selection. It reports false while the lesson is still running.
func (p *Playbox) ConfirmComplete() bool {
	if p.runner == nil || !p.runner.Confirm() {
		return false
	}
	if err := p.Exit(); err != nil {
		p.cfg.Log.Error().Err(err).Msg("leave training")
		return false
	}
	return true
}

// Advance fires every timer due at now. The scheduler is shared, so
// this advances every playbox on it.
func (p *Playbox) Advance(now time.Time) int {
	return p.sched.Advance(now)
}

// TakeCue returns the pending cue and clears it.
func (p *Playbox) TakeCue() Cue {
	c := p.cue
	p.cue = CueNone
	return c
}

func (p *Playbox) challengeResult(st challenge.State) {
	switch st.Status {
	case challenge.Correct:
		p.cue = CueCelebrate
	case challenge.Incorrect:
		p.cue = CueIncorrect
	case challenge.TimedOut:
		p.cue = CueTimeout
	case challenge.Finished:
		p.saveChallenge()
	}
}

func (p *Playbox) saveChallenge() {
	if p.saved || p.quiz == nil || p.cfg.Results == nil {
		return
	}
	st := p.quiz.State()
	if st.Answered == 0 {
		return
	}
	p.saved = true
	r := store.ChallengeResult{
		Model:    p.model.Name,
		Policy:   string(p.cfg.Policy),
		Score:    st.Score,
		Answered: st.Answered,
		Correct:  st.Right,
	}
	if u := p.cfg.User; u != nil {
		r.Learner, r.SessionID = u.Name, u.SessionID
	}
	if err := p.cfg.Results.Save(context.Background(), r); err != nil {
		p.cfg.Log.Warn().Err(err).Msg("save challenge result")
	}
}
