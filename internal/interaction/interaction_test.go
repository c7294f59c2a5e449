package interaction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/abhisek/mathblocks/internal/board"
	"github.com/abhisek/mathblocks/internal/fraction"
	"github.com/abhisek/mathblocks/internal/modes"
	"github.com/abhisek/mathblocks/internal/schedule"
	"github.com/abhisek/mathblocks/internal/training"
)

func newBoard(layout board.Layout) *board.Board {
	return board.New(layout, schedule.New(time.Unix(0, 0)))
}

func TestIsActionAllowed_FreePlay(t *testing.T) {
	b := newBoard(board.PlaceValue)

	assert.True(t, IsActionAllowed(fraction.Whole(10), "tens", modes.FreePlay, nil, b))
	assert.False(t, IsActionAllowed(fraction.Whole(10), "ones", modes.FreePlay, nil, b))
	assert.False(t, IsActionAllowed(fraction.Whole(7), "ones", modes.Challenge, nil, b))
	assert.False(t, IsActionAllowed(fraction.Whole(1), "ones", modes.Info, nil, b))
	assert.False(t, IsActionAllowed(fraction.Whole(1), "ones", modes.Selection, nil, b))

	for i := 0; i < 20; i++ {
		b.AddUnit("tens", fraction.Whole(10))
	}
	assert.False(t, IsActionAllowed(fraction.Whole(10), "tens", modes.FreePlay, nil, b))
}

func TestIsActionAllowed_Training(t *testing.T) {
	b := newBoard(board.PlaceValue)
	step := &training.Step{
		Order: 2,
		Kind:  training.KindRequiredAction,
		Action: &training.ActionSpec{
			SourceValue:    fraction.Whole(1),
			TargetCategory: "ones",
			RequiredCount:  3,
		},
	}

	assert.True(t, IsActionAllowed(fraction.Whole(1), "ones", modes.Training, step, b))
	assert.False(t, IsActionAllowed(fraction.Whole(10), "tens", modes.Training, step, b),
		"legal in free play, but not what the step asks for")
	assert.False(t, IsActionAllowed(fraction.Whole(1), "ones", modes.Training, nil, b))

	feedback := &training.Step{Order: 3, Kind: training.KindTimedFeedback}
	assert.False(t, IsActionAllowed(fraction.Whole(1), "ones", modes.Training, feedback, b))
}

func TestIsSelectionAllowed(t *testing.T) {
	eq := board.NewEquation()
	quarter := fraction.MustNew(1, 4)

	assert.True(t, IsSelectionAllowed(quarter, board.SlotLeft, modes.FreePlay, nil, board.FractionBars, eq))
	assert.False(t, IsSelectionAllowed(fraction.MustNew(1, 3), board.SlotLeft, modes.FreePlay, nil, board.FractionBars, eq))
	assert.False(t, IsSelectionAllowed(quarter, "middle", modes.FreePlay, nil, board.FractionBars, eq))

	eq.Set(board.SlotLeft, quarter)
	assert.False(t, IsSelectionAllowed(quarter, board.SlotLeft, modes.Challenge, nil, board.FractionBars, eq))
	assert.True(t, IsSelectionAllowed(quarter, board.SlotRight, modes.Challenge, nil, board.FractionBars, eq))

	step := &training.Step{Kind: training.KindRequiredAction, Action: &training.ActionSpec{
		SourceValue: quarter, TargetCategory: board.SlotRight, RequiredCount: 1,
	}}
	assert.True(t, IsSelectionAllowed(quarter, board.SlotRight, modes.Training, step, board.FractionBars, eq))
	assert.False(t, IsSelectionAllowed(quarter, board.SlotLeft, modes.Training, step, board.FractionBars, eq))
}

func TestGesture_ReevaluatesOnEveryMove(t *testing.T) {
	open := true
	g := NewGesture(func(v fraction.Fraction, target string) bool {
		return open && target == "ones" && v.Equal(fraction.Whole(1))
	})

	assert.False(t, g.Move("ones"), "no piece picked up")

	g.Start(fraction.Whole(1))
	assert.True(t, g.Active())
	assert.False(t, g.Move("tens"))
	assert.True(t, g.Move("ones"))

	open = false // a step timer fired mid-drag
	assert.False(t, g.Move("ones"))
	open = true
	assert.True(t, g.Move("ones"))
	open = false

	target, ok := g.End()
	assert.Equal(t, "ones", target)
	assert.False(t, ok, "release re-checks the rule")
	assert.False(t, g.Active())
}

func TestGesture_EndWithoutTarget(t *testing.T) {
	g := NewGesture(func(fraction.Fraction, string) bool { return true })
	g.Start(fraction.Whole(1))
	_, ok := g.End()
	assert.False(t, ok)

	g.Start(fraction.Whole(1))
	g.Move("ones")
	g.Cancel()
	_, ok = g.End()
	assert.False(t, ok)
}
