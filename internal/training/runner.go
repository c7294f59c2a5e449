package training

import (
	"time"

	"github.com/abhisek/mathblocks/internal/board"
	"github.com/abhisek/mathblocks/internal/narration"
	"github.com/abhisek/mathblocks/internal/schedule"
	"github.com/abhisek/mathblocks/internal/transform"
)

// DefaultFallbackWait is used for timed steps that carry no timeout.
const DefaultFallbackWait = 3 * time.Second

// EventSink records learner-facing analytics events.
type EventSink interface {
	Record(name string, payload map[string]any)
}

type nopSink struct{}

func (nopSink) Record(string, map[string]any) {}

// Option configures a Runner.
type Option func(*Runner)

// WithNarrator sets the narrator. The default is narration.Silent.
func WithNarrator(n narration.Narrator) Option {
	return func(r *Runner) { r.narrator = n }
}

// WithLocale sets the narration locale.
func WithLocale(locale string) Option {
	return func(r *Runner) { r.locale = locale }
}

// WithEvents sets the analytics sink.
func WithEvents(e EventSink) Option {
	return func(r *Runner) { r.events = e }
}

// WithFallbackWait overrides DefaultFallbackWait.
func WithFallbackWait(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.fallback = d
		}
	}
}

// WithReset sets the function that empties the board for steps marked
// clears_board. The default clears the board.
func WithReset(fn func()) Option {
	return func(r *Runner) { r.reset = fn }
}

// Runner walks a Script. The cursor only moves forward: timed steps
// advance on their timer, required_action steps advance on what the
// learner builds, and complete waits for Confirm.
type Runner struct {
	script   *Script
	board    *board.Board
	scope    *schedule.Scope
	narrator narration.Narrator
	events   EventSink
	locale   string
	fallback time.Duration
	reset    func()

	cursor   int
	started  bool
	visited  map[int]bool
	timer    schedule.TaskID
	onChange []func(Step)
}

// NewRunner prepares a runner for script on b. Timers go on scope.
func NewRunner(script *Script, b *board.Board, scope *schedule.Scope, opts ...Option) *Runner {
	r := &Runner{
		script:   script,
		board:    b,
		scope:    scope,
		narrator: narration.Silent{},
		events:   nopSink{},
		locale:   "en",
		fallback: DefaultFallbackWait,
		visited:  make(map[int]bool),
	}
	r.reset = b.Clear
	for _, o := range opts {
		o(r)
	}
	return r
}

// OnStep registers fn to run whenever the cursor enters a step.
func (r *Runner) OnStep(fn func(Step)) {
	r.onChange = append(r.onChange, fn)
}

// Start enters the first step.
func (r *Runner) Start() {
	if r.started {
		return
	}
	r.started = true
	r.enter(0)
}

// Started reports whether Start has been called.
func (r *Runner) Started() bool { return r.started }

// Cursor returns the index of the current step.
func (r *Runner) Cursor() int { return r.cursor }

// Current returns the current step. Before Start it is the first step.
func (r *Runner) Current() Step { return r.script.Step(r.cursor) }

// Script returns the script being run.
func (r *Runner) Script() *Script { return r.script }

// Finished reports whether the runner sits on the complete step.
func (r *Runner) Finished() bool {
	return r.started && r.Current().Kind == KindComplete
}

// Confirm acknowledges the complete step. It reports whether the lesson
// is over and the host should leave training.
func (r *Runner) Confirm() bool {
	if !r.Finished() {
		return false
	}
	r.events.Record("training_complete", map[string]any{"script": r.script.Name()})
	return true
}

// ObserveBoard runs after every board mutation. Simple required_action
// steps pass once the target category holds enough active units.
func (r *Runner) ObserveBoard() {
	if !r.started {
		return
	}
	st := r.Current()
	if st.Kind != KindRequiredAction || r.script.IsRegroup(st) {
		return
	}
	if r.board.ActiveCount(st.Action.TargetCategory) >= st.Action.RequiredCount {
		r.events.Record("training_action", map[string]any{
			"script": r.script.Name(),
			"order":  st.Order,
		})
		r.enter(r.cursor + 1)
	}
}

// ObserveTransform runs after a transform commits. A regroup step passes
// when the transform consumed units from its target category; the cursor
// then jumps to the paired transform_feedback step.
func (r *Runner) ObserveTransform(res transform.Result) {
	if !r.started {
		return
	}
	st := r.Current()
	if !r.script.IsRegroup(st) || res.From != st.Action.TargetCategory {
		return
	}
	r.events.Record("training_regroup", map[string]any{
		"script": r.script.Name(),
		"order":  st.Order,
		"from":   res.From,
		"into":   res.Into,
	})
	r.enter(r.pairedFeedback())
}

// pairedFeedback finds the first transform_feedback step after the cursor
// and before the next required_action; without one it is the next step.
func (r *Runner) pairedFeedback() int {
	for i := r.cursor + 1; i < r.script.Len(); i++ {
		switch r.script.Step(i).Kind {
		case KindTransformFeedback:
			return i
		case KindRequiredAction, KindComplete:
			return r.cursor + 1
		}
	}
	return r.cursor + 1
}

// Close cancels the step timer and any narration in flight.
func (r *Runner) Close() {
	if r.timer != 0 {
		r.scope.Cancel(r.timer)
		r.timer = 0
	}
	r.narrator.Cancel()
}

func (r *Runner) enter(i int) {
	if i >= r.script.Len() {
		return
	}
	if r.timer != 0 {
		r.scope.Cancel(r.timer)
		r.timer = 0
	}
	r.cursor = i
	st := r.script.Step(i)

	r.narrator.Cancel()
	if !r.visited[st.Order] {
		r.visited[st.Order] = true
		if st.Narration != "" {
			r.narrator.Speak(st.Narration, r.locale)
		}
		r.events.Record("training_step", map[string]any{
			"script": r.script.Name(),
			"order":  st.Order,
			"kind":   string(st.Kind),
		})
	}

	if st.Kind.Timed() {
		wait := st.Timeout
		if wait <= 0 {
			wait = r.fallback
		}
		order := st.Order
		r.timer = r.scope.After(wait, func() { r.expire(order) })
	}

	for _, fn := range r.onChange {
		fn(st)
	}

	if st.Kind == KindRequiredAction {
		r.ObserveBoard()
	}
}

func (r *Runner) expire(order int) {
	r.timer = 0
	st := r.Current()
	if st.Order != order {
		return
	}
	if st.ClearsBoard {
		r.reset()
	}
	r.enter(r.cursor + 1)
}
