// Package transform regroups like units on a board once enough of them
// accumulate: ten ones become a ten, two eighths become a quarter.
//
// A transform runs in two phases. Begin marks the consumed units so they
// leave the total at once and starts the animation; commit, one delay
// later, swaps them for a single unit of the next category. At most one
// transform is in flight per engine.
package transform

import (
	"time"

	"github.com/abhisek/mathblocks/internal/board"
	"github.com/abhisek/mathblocks/internal/schedule"
)

// Default timings.
const (
	PlaceValueDelay  = 600 * time.Millisecond
	FractionDelay    = 900 * time.Millisecond
	DefaultHighlight = 1000 * time.Millisecond
)

// Config holds engine timings.
type Config struct {
	Delay        time.Duration // between begin and commit
	HighlightFor time.Duration // how long the new unit stays highlighted
}

// Pending describes the transform in flight.
type Pending struct {
	ID       uint64
	From     string
	Into     string
	UnitIDs  []string
	Deadline time.Time

	task schedule.TaskID
}

// Result reports a committed transform.
type Result struct {
	ID       uint64
	From     string
	Into     string
	UnitID   string
	Consumed int
}

// Engine watches one board and runs its transforms.
type Engine struct {
	board    *board.Board
	scope    *schedule.Scope
	cfg      Config
	pending  *Pending
	seq      uint64
	onBegin  []func(Pending)
	onCommit []func(Result)
}

// New creates an engine for b and registers it to run after every board
// mutation. Timers are scheduled on scope.
func New(b *board.Board, scope *schedule.Scope, cfg Config) *Engine {
	if cfg.HighlightFor <= 0 {
		cfg.HighlightFor = DefaultHighlight
	}
	e := &Engine{board: b, scope: scope, cfg: cfg}
	b.OnChange(e.Check)
	return e
}

// Rebind cancels anything in flight and moves the engine onto a new
// scope. Used when the owning screen is re-entered.
func (e *Engine) Rebind(scope *schedule.Scope) {
	e.Cancel()
	e.scope = scope
}

// OnBegin registers fn to run when phase one starts. Hosts use it for the
// transform-start cue.
func (e *Engine) OnBegin(fn func(Pending)) {
	e.onBegin = append(e.onBegin, fn)
}

// OnCommit registers fn to run after phase two.
func (e *Engine) OnCommit(fn func(Result)) {
	e.onCommit = append(e.onCommit, fn)
}

// Pending returns the transform in flight, if any.
func (e *Engine) Pending() (Pending, bool) {
	if e.pending == nil {
		return Pending{}, false
	}
	p := *e.pending
	p.UnitIDs = append([]string(nil), e.pending.UnitIDs...)
	return p, true
}

// InProgress reports whether a transform is in flight.
func (e *Engine) InProgress() bool {
	return e.pending != nil
}

// Check starts a transform for the lowest adjacent pair whose lower
// category holds at least ratio active units and whose upper category has
// room. It does nothing while another transform is in flight.
func (e *Engine) Check() {
	if e.pending != nil || e.scope == nil || e.scope.Closed() {
		return
	}
	layout := e.board.Layout()
	cats := layout.Categories
	for i := 0; i+1 < len(cats); i++ {
		low, high := cats[i].Key, cats[i+1].Key
		ratio := layout.Ratio(low)
		if ratio < 2 || e.board.ActiveCount(low) < ratio || !e.board.HasRoom(high) {
			continue
		}
		e.begin(low, high, ratio)
		return
	}
}

func (e *Engine) begin(from, into string, ratio int) {
	ids := e.board.MarkExiting(from, ratio)
	if ids == nil {
		return
	}
	e.seq++
	p := &Pending{
		ID:       e.seq,
		From:     from,
		Into:     into,
		UnitIDs:  ids,
		Deadline: e.scope.Now().Add(e.cfg.Delay),
	}
	e.pending = p
	p.task = e.scope.After(e.cfg.Delay, func() { e.commit(p) })
	for _, fn := range e.onBegin {
		fn(*p)
	}
}

func (e *Engine) commit(p *Pending) {
	if e.pending != p {
		return
	}
	u, ok := e.board.Commit(p.From, p.UnitIDs, p.Into)
	e.pending = nil
	if !ok {
		// The upper column filled up during the animation. It may now be
		// at its own threshold.
		e.board.Restore(p.From, p.UnitIDs)
		e.Check()
		return
	}
	into, id := p.Into, u.ID
	e.scope.After(e.cfg.HighlightFor, func() {
		e.board.SetHighlight(into, id, false)
	})
	res := Result{ID: p.ID, From: p.From, Into: p.Into, UnitID: u.ID, Consumed: len(p.UnitIDs)}
	for _, fn := range e.onCommit {
		fn(res)
	}
	e.Check()
}

// Cancel drops the transform in flight and returns its units to the
// board.
func (e *Engine) Cancel() {
	if e.pending == nil {
		return
	}
	p := e.pending
	e.pending = nil
	if e.scope != nil {
		e.scope.Cancel(p.task)
	}
	e.board.Restore(p.From, p.UnitIDs)
}
