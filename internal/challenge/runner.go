package challenge

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/abhisek/mathblocks/internal/fraction"
	"github.com/abhisek/mathblocks/internal/schedule"
)

// ErrEmptyPool is returned when no question fits the board.
var ErrEmptyPool = errors.New("no playable challenge questions")

// Status of the current question.
type Status int

const (
	Playing Status = iota
	Correct
	Incorrect
	TimedOut
	Finished
)

func (s Status) String() string {
	switch s {
	case Playing:
		return "playing"
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	case TimedOut:
		return "timed_out"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// Policy decides what happens when the queue runs out.
type Policy string

const (
	Endless     Policy = "endless"      // reshuffle and keep going
	FixedLength Policy = "fixed_length" // stop after Length questions
)

// Config controls a challenge run.
type Config struct {
	Durations Durations
	Policy    Policy
	Length    int               // questions per run for FixedLength; 0 means the whole pool
	MaxTotal  fraction.Fraction // questions above this cannot be built and are dropped
	Rand      *rand.Rand
}

// EventSink records learner-facing analytics events.
type EventSink interface {
	Record(name string, payload map[string]any)
}

type nopSink struct{}

func (nopSink) Record(string, map[string]any) {}

// State is a snapshot for rendering.
type State struct {
	Status    Status
	Index     int
	Round     int
	Question  Question
	Score     int
	Answered  int
	Right     int
	Remaining time.Duration
	Revealed  *fraction.Fraction
}

// Runner serves questions one at a time with a countdown.
type Runner struct {
	pool   []Question
	queue  []Question
	cfg    Config
	scope  *schedule.Scope
	events EventSink
	reset  func()
	rng    *rand.Rand

	state   State
	tick    schedule.TaskID
	started bool
	results []func(State)
	dropped int
}

// Option configures a Runner.
type Option func(*Runner)

// WithEvents sets the analytics sink.
func WithEvents(e EventSink) Option {
	return func(r *Runner) { r.events = e }
}

// WithReset sets the function that clears the learner's work between
// questions.
func WithReset(fn func()) Option {
	return func(r *Runner) { r.reset = fn }
}

// NewRunner filters pool to questions whose answer fits within
// cfg.MaxTotal and prepares a run. Timers go on scope.
func NewRunner(pool []Question, scope *schedule.Scope, cfg Config, opts ...Option) (*Runner, error) {
	if cfg.Durations == nil {
		cfg.Durations = DefaultDurations()
	}
	if cfg.Policy == "" {
		cfg.Policy = Endless
	}
	r := &Runner{
		cfg:    cfg,
		scope:  scope,
		events: nopSink{},
		reset:  func() {},
		rng:    cfg.Rand,
	}
	if r.rng == nil {
		r.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	for _, o := range opts {
		o(r)
	}
	limit := !cfg.MaxTotal.IsZero()
	for _, q := range pool {
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("challenge pool: %w", err)
		}
		if limit && cfg.MaxTotal.Less(q.Expected) {
			r.dropped++
			continue
		}
		r.pool = append(r.pool, q)
	}
	if len(r.pool) == 0 {
		return nil, ErrEmptyPool
	}
	return r, nil
}

// Playable returns the number of questions that survived filtering.
func (r *Runner) Playable() int { return len(r.pool) }

// Dropped returns the number of questions filtered out.
func (r *Runner) Dropped() int { return r.dropped }

// OnResult registers fn to run whenever a question is decided or the run
// finishes.
func (r *Runner) OnResult(fn func(State)) {
	r.results = append(r.results, fn)
}

// State returns the current snapshot.
func (r *Runner) State() State {
	s := r.state
	if s.Revealed != nil {
		v := *s.Revealed
		s.Revealed = &v
	}
	return s
}

// Begin shuffles the pool and presents the first question.
func (r *Runner) Begin() {
	r.started = true
	r.state = State{}
	r.shuffle()
	r.present(0)
}

// Submit scores answer against the current question. It does nothing
// unless the question is still being played.
func (r *Runner) Submit(answer fraction.Fraction) Status {
	if !r.started || r.state.Status != Playing {
		return r.state.Status
	}
	r.stopTick()
	q := r.state.Question
	r.state.Answered++
	if answer.Equal(q.Expected) {
		r.state.Status = Correct
		r.state.Right++
		r.state.Score += q.Points()
	} else {
		r.state.Status = Incorrect
		r.reveal()
	}
	r.events.Record("challenge_submit", map[string]any{
		"question":   q.ID,
		"difficulty": q.Difficulty,
		"answer":     answer.String(),
		"expected":   q.Expected.String(),
		"correct":    r.state.Status == Correct,
		"remaining":  r.state.Remaining.Seconds(),
		"score":      r.state.Score,
	})
	r.notify()
	return r.state.Status
}

// Next moves to the following question. It reports false once a
// fixed-length run is over.
func (r *Runner) Next() bool {
	if !r.started || r.state.Status == Finished {
		return false
	}
	r.stopTick()
	next := r.state.Index + 1
	if next >= len(r.queue) {
		if r.cfg.Policy == FixedLength {
			r.finish()
			return false
		}
		r.state.Round++
		r.shuffle()
		next = 0
	}
	r.present(next)
	return true
}

// Close stops the countdown.
func (r *Runner) Close() {
	r.stopTick()
}

func (r *Runner) shuffle() {
	r.queue = append(r.queue[:0], r.pool...)
	r.rng.Shuffle(len(r.queue), func(i, j int) {
		r.queue[i], r.queue[j] = r.queue[j], r.queue[i]
	})
	if r.cfg.Policy == FixedLength && r.cfg.Length > 0 && r.cfg.Length < len(r.queue) {
		r.queue = r.queue[:r.cfg.Length]
	}
}

func (r *Runner) present(i int) {
	r.reset()
	q := r.queue[i]
	r.state.Index = i
	r.state.Question = q
	r.state.Status = Playing
	r.state.Revealed = nil
	r.state.Remaining = r.cfg.Durations.For(q.Difficulty)
	r.tick = r.scope.After(time.Second, r.onTick)
}

func (r *Runner) onTick() {
	r.tick = 0
	if r.state.Status != Playing {
		return
	}
	r.state.Remaining -= time.Second
	if r.state.Remaining > 0 {
		r.tick = r.scope.After(time.Second, r.onTick)
		return
	}
	r.state.Remaining = 0
	r.state.Status = TimedOut
	r.state.Answered++
	r.reveal()
	r.events.Record("challenge_timeout", map[string]any{
		"question":   r.state.Question.ID,
		"difficulty": r.state.Question.Difficulty,
		"expected":   r.state.Question.Expected.String(),
	})
	r.notify()
}

func (r *Runner) reveal() {
	if r.state.Revealed != nil {
		return
	}
	v := r.state.Question.Expected
	r.state.Revealed = &v
}

func (r *Runner) finish() {
	r.state.Status = Finished
	r.events.Record("challenge_finished", map[string]any{
		"score":    r.state.Score,
		"answered": r.state.Answered,
		"correct":  r.state.Right,
	})
	r.notify()
}

func (r *Runner) stopTick() {
	if r.tick != 0 {
		r.scope.Cancel(r.tick)
		r.tick = 0
	}
}

func (r *Runner) notify() {
	s := r.State()
	for _, fn := range r.results {
		fn(s)
	}
}
