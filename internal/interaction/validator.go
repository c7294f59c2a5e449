// Package interaction decides whether a learner action is legal right
// now and tracks pointer gestures that carry a piece to a target.
package interaction

import (
	"github.com/abhisek/mathblocks/internal/board"
	"github.com/abhisek/mathblocks/internal/fraction"
	"github.com/abhisek/mathblocks/internal/modes"
	"github.com/abhisek/mathblocks/internal/training"
)

// IsActionAllowed reports whether a unit of value candidate may be dropped
// on category target.
//
// In training only the current required_action step's exact value and
// category are accepted; every other step locks the board. Elsewhere the
// value must belong to the target category and the category must have
// room. step may be nil outside training.
func IsActionAllowed(candidate fraction.Fraction, target string, mode modes.Mode, step *training.Step, b *board.Board) bool {
	switch {
	case mode == modes.Training:
		if !matchesStep(candidate, target, step) {
			return false
		}
		return b.HasRoom(target)
	case mode.Playing():
		c, ok := b.Layout().CategoryFor(candidate)
		return ok && c.Key == target && b.HasRoom(target)
	default:
		return false
	}
}

// IsSelectionAllowed reports whether fraction piece may go into an
// equation slot. Training applies the same step match as IsActionAllowed;
// elsewhere the piece must be a known magnitude and the slot empty.
func IsSelectionAllowed(piece fraction.Fraction, slot string, mode modes.Mode, step *training.Step, layout board.Layout, eq *board.Equation) bool {
	if !eq.Has(slot) {
		return false
	}
	switch {
	case mode == modes.Training:
		return matchesStep(piece, slot, step)
	case mode.Playing():
		if _, ok := layout.CategoryFor(piece); !ok {
			return false
		}
		_, taken := eq.Piece(slot)
		return !taken
	default:
		return false
	}
}

func matchesStep(value fraction.Fraction, target string, step *training.Step) bool {
	if step == nil || step.Kind != training.KindRequiredAction || step.Action == nil {
		return false
	}
	return value.Equal(step.Action.SourceValue) && target == step.Action.TargetCategory
}
