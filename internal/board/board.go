// Package board holds the quantity model: units of fixed magnitudes
// arranged in ordered categories, with a derived total.
package board

import (
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/mathblocks/internal/fraction"
	"github.com/abhisek/mathblocks/internal/schedule"
)

// DefaultRemoveDelay is how long a removed unit stays in its column
// for the exit animation.
const DefaultRemoveDelay = 300 * time.Millisecond

// UnitState is the animation state of a unit.
type UnitState int

const (
	Idle           UnitState = iota
	Entering                 // just dropped
	ExitingKept              // marked by a transform, replaced on commit
	ExitingRemoved           // removed by the learner, deleted after the exit delay
)

// Exiting reports whether the unit no longer counts toward totals.
func (s UnitState) Exiting() bool {
	return s == ExitingKept || s == ExitingRemoved
}

func (s UnitState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Entering:
		return "entering"
	case ExitingKept:
		return "exiting-kept"
	case ExitingRemoved:
		return "exiting-removed"
	default:
		return "unknown"
	}
}

// Unit is one manipulative piece.
type Unit struct {
	ID        string
	Value     fraction.Fraction
	State     UnitState
	Highlight bool // newly created by a transform
}

// Board is the quantity model for one model instance. It is driven from a
// single goroutine together with the scheduler it was built with.
type Board struct {
	layout      Layout
	columns     map[string][]*Unit
	scope       *schedule.Scope
	removeDelay time.Duration
	newID       func() string
	listeners   []func()
}

// Option configures a Board.
type Option func(*Board)

// WithRemoveDelay overrides DefaultRemoveDelay.
func WithRemoveDelay(d time.Duration) Option {
	return func(b *Board) { b.removeDelay = d }
}

// WithIDFunc overrides the uuid-based unit id generator.
func WithIDFunc(fn func() string) Option {
	return func(b *Board) { b.newID = fn }
}

// New creates an empty board. Deferred removals run on their own scope of
// sched, which is never closed by mode changes.
func New(layout Layout, sched *schedule.Scheduler, opts ...Option) *Board {
	b := &Board{
		layout:      layout,
		columns:     make(map[string][]*Unit, len(layout.Categories)),
		scope:       sched.NewScope(),
		removeDelay: DefaultRemoveDelay,
		newID:       uuid.NewString,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Layout returns the board's category layout.
func (b *Board) Layout() Layout {
	return b.layout
}

// OnChange registers fn to run after every mutation that changes which
// units count: add, learner removal, clear, and transform commit.
// Listeners run in registration order.
func (b *Board) OnChange(fn func()) {
	b.listeners = append(b.listeners, fn)
}

func (b *Board) changed() {
	for _, fn := range b.listeners {
		fn()
	}
}

// HasRoom reports whether category can take another unit. Units still
// animating out occupy their slot until they are gone.
func (b *Board) HasRoom(category string) bool {
	c, ok := b.layout.Category(category)
	if !ok {
		return false
	}
	return len(b.columns[category]) < c.Capacity
}

// AddUnit appends a unit of value to category. It is a no-op returning
// false if the category is unknown, the value does not belong there, or
// the category is full.
func (b *Board) AddUnit(category string, value fraction.Fraction) (*Unit, bool) {
	c, ok := b.layout.Category(category)
	if !ok || !c.Magnitude.Equal(value) || !b.HasRoom(category) {
		return nil, false
	}
	u := &Unit{ID: b.newID(), Value: c.Magnitude, State: Entering}
	b.columns[category] = append(b.columns[category], u)
	b.changed()
	return u, true
}

// RemoveUnit marks a unit as exiting; it is deleted after the remove
// delay. Returns false if the unit is unknown or already exiting.
func (b *Board) RemoveUnit(category, id string) bool {
	u := b.find(category, id)
	if u == nil || u.State.Exiting() {
		return false
	}
	u.State = ExitingRemoved
	b.scope.After(b.removeDelay, func() {
		b.delete(category, id)
	})
	b.changed()
	return true
}

// Settle moves entering units to idle once their drop animation is done.
func (b *Board) Settle() {
	for _, col := range b.columns {
		for _, u := range col {
			if u.State == Entering {
				u.State = Idle
			}
		}
	}
}

// Total is the sum over categories of non-exiting units times magnitude.
func (b *Board) Total() fraction.Fraction {
	total := fraction.Whole(0)
	for _, c := range b.layout.Categories {
		n := b.ActiveCount(c.Key)
		if n > 0 {
			total = total.Add(c.Magnitude.Scale(n))
		}
	}
	return total
}

// Count returns every unit in category, including exiting ones.
func (b *Board) Count(category string) int {
	return len(b.columns[category])
}

// ActiveCount returns units in category that still count: it excludes
// units marked for removal or consumed by an in-flight transform.
func (b *Board) ActiveCount(category string) int {
	n := 0
	for _, u := range b.columns[category] {
		if !u.State.Exiting() {
			n++
		}
	}
	return n
}

// Units returns a copy of the units in category, oldest first.
func (b *Board) Units(category string) []Unit {
	col := b.columns[category]
	out := make([]Unit, len(col))
	for i, u := range col {
		out[i] = *u
	}
	return out
}

// Clear empties every category.
func (b *Board) Clear() {
	b.columns = make(map[string][]*Unit, len(b.layout.Categories))
	b.changed()
}

// MarkExiting marks the oldest n active units in category as consumed by a
// transform and returns their ids. It returns nil, changing nothing, if
// fewer than n are active. Listeners are not notified.
func (b *Board) MarkExiting(category string, n int) []string {
	if b.ActiveCount(category) < n {
		return nil
	}
	ids := make([]string, 0, n)
	for _, u := range b.columns[category] {
		if len(ids) == n {
			break
		}
		if u.State.Exiting() {
			continue
		}
		u.State = ExitingKept
		ids = append(ids, u.ID)
	}
	return ids
}

// Restore returns units marked by MarkExiting to idle.
func (b *Board) Restore(category string, ids []string) {
	for _, id := range ids {
		if u := b.find(category, id); u != nil && u.State == ExitingKept {
			u.State = Idle
		}
	}
}

// Commit deletes the marked units from `from` and appends one
// highlighted unit to `into`. It fails without changes if `into` is full
// or any marked unit is gone.
func (b *Board) Commit(from string, ids []string, into string) (*Unit, bool) {
	c, ok := b.layout.Category(into)
	if !ok || !b.HasRoom(into) {
		return nil, false
	}
	for _, id := range ids {
		if u := b.find(from, id); u == nil || u.State != ExitingKept {
			return nil, false
		}
	}
	for _, id := range ids {
		b.delete(from, id)
	}
	u := &Unit{ID: b.newID(), Value: c.Magnitude, State: Idle, Highlight: true}
	b.columns[into] = append(b.columns[into], u)
	b.changed()
	return u, true
}

// SetHighlight toggles the newly-created flag on a unit.
func (b *Board) SetHighlight(category, id string, on bool) {
	if u := b.find(category, id); u != nil {
		u.Highlight = on
	}
}

func (b *Board) find(category, id string) *Unit {
	for _, u := range b.columns[category] {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (b *Board) delete(category, id string) {
	col := b.columns[category]
	for i, u := range col {
		if u.ID == id {
			b.columns[category] = append(col[:i:i], col[i+1:]...)
			return
		}
	}
}
