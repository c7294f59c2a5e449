package board

import "github.com/abhisek/mathblocks/internal/fraction"

// Equation slot names used by the fraction model.
const (
	SlotLeft  = "left"
	SlotRight = "right"
)

// Equation is an ordered row of slots, each holding at most one piece.
type Equation struct {
	slots  []string
	pieces map[string]fraction.Fraction
}

// NewEquation returns an empty equation with the given slots. With no
// arguments it uses left and right.
func NewEquation(slots ...string) *Equation {
	if len(slots) == 0 {
		slots = []string{SlotLeft, SlotRight}
	}
	return &Equation{slots: slots, pieces: make(map[string]fraction.Fraction)}
}

// Slots returns the slot names in order.
func (e *Equation) Slots() []string {
	return append([]string(nil), e.slots...)
}

// Has reports whether slot is one of the equation's slots.
func (e *Equation) Has(slot string) bool {
	for _, s := range e.slots {
		if s == slot {
			return true
		}
	}
	return false
}

// Piece returns the piece in slot.
func (e *Equation) Piece(slot string) (fraction.Fraction, bool) {
	p, ok := e.pieces[slot]
	return p, ok
}

// Set places piece in slot, replacing what was there.
func (e *Equation) Set(slot string, piece fraction.Fraction) bool {
	if !e.Has(slot) {
		return false
	}
	e.pieces[slot] = piece
	return true
}

// ClearSlot empties one slot.
func (e *Equation) ClearSlot(slot string) {
	delete(e.pieces, slot)
}

// Reset empties every slot.
func (e *Equation) Reset() {
	e.pieces = make(map[string]fraction.Fraction)
}

// Filled reports whether every slot holds a piece.
func (e *Equation) Filled() bool {
	return len(e.pieces) == len(e.slots)
}

// Result is the exact sum of the filled slots.
func (e *Equation) Result() fraction.Fraction {
	sum := fraction.Whole(0)
	for _, s := range e.slots {
		if p, ok := e.pieces[s]; ok {
			sum = sum.Add(p)
		}
	}
	return sum.Reduce()
}
