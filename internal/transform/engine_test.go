package transform

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mathblocks/internal/board"
	"github.com/abhisek/mathblocks/internal/fraction"
	"github.com/abhisek/mathblocks/internal/schedule"
)

var epoch = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

type harness struct {
	sched   *schedule.Scheduler
	board   *board.Board
	engine  *Engine
	begins  []Pending
	commits []Result
}

func newHarness(layout board.Layout, delay time.Duration) *harness {
	h := &harness{sched: schedule.New(epoch)}
	h.board = board.New(layout, h.sched)
	h.engine = New(h.board, h.sched.NewScope(), Config{Delay: delay})
	h.engine.OnBegin(func(p Pending) { h.begins = append(h.begins, p) })
	h.engine.OnCommit(func(r Result) { h.commits = append(h.commits, r) })
	return h
}

// activeTotal sums the units that still count, straight from the columns.
func (h *harness) activeTotal() fraction.Fraction {
	total := fraction.Whole(0)
	for _, c := range h.board.Layout().Categories {
		for _, u := range h.board.Units(c.Key) {
			if !u.State.Exiting() {
				total = total.Add(u.Value)
			}
		}
	}
	return total
}

// inFlight is the value held by units a pending transform has consumed.
func (h *harness) inFlight() fraction.Fraction {
	p, ok := h.engine.Pending()
	if !ok {
		return fraction.Whole(0)
	}
	c, _ := h.board.Layout().Category(p.From)
	return c.Magnitude.Scale(len(p.UnitIDs))
}

func (h *harness) add(t *testing.T, cat string, n int) {
	t.Helper()
	c, ok := h.board.Layout().Category(cat)
	require.True(t, ok)
	for i := 0; i < n; i++ {
		_, ok := h.board.AddUnit(cat, c.Magnitude)
		require.True(t, ok)
	}
}

func TestEngine_TenOnesBecomeATen(t *testing.T) {
	h := newHarness(board.PlaceValue, PlaceValueDelay)

	h.add(t, "ones", 9)
	assert.False(t, h.engine.InProgress())
	assert.True(t, h.board.Total().Equal(fraction.Whole(9)))

	h.add(t, "ones", 1)
	require.True(t, h.engine.InProgress())
	require.Len(t, h.begins, 1)
	assert.Equal(t, "ones", h.begins[0].From)
	assert.Equal(t, "tens", h.begins[0].Into)
	assert.Equal(t, epoch.Add(PlaceValueDelay), h.begins[0].Deadline)

	// Phase one: consumed units leave the total but keep their slots.
	assert.True(t, h.board.Total().IsZero())
	assert.True(t, h.board.Total().Equal(h.activeTotal()))
	assert.True(t, h.inFlight().Equal(fraction.Whole(10)))
	assert.Equal(t, 0, h.board.ActiveCount("ones"))
	assert.Equal(t, 10, h.board.Count("ones"))

	h.sched.AdvanceBy(PlaceValueDelay - time.Millisecond)
	assert.Empty(t, h.commits)

	h.sched.AdvanceBy(time.Millisecond)
	require.Len(t, h.commits, 1)
	assert.False(t, h.engine.InProgress())
	assert.Equal(t, 0, h.board.Count("ones"))
	tens := h.board.Units("tens")
	require.Len(t, tens, 1)
	assert.True(t, tens[0].Highlight)
	assert.Equal(t, tens[0].ID, h.commits[0].UnitID)
	assert.Equal(t, 10, h.commits[0].Consumed)
	assert.True(t, h.board.Total().Equal(fraction.Whole(10)))

	h.sched.AdvanceBy(DefaultHighlight)
	assert.False(t, h.board.Units("tens")[0].Highlight)
}

func TestEngine_OnlyOneTransformInFlight(t *testing.T) {
	h := newHarness(board.PlaceValue, PlaceValueDelay)

	h.add(t, "ones", 10)
	h.add(t, "tens", 9)
	h.add(t, "tens", 1) // tens reach ten while ones are still animating
	require.Len(t, h.begins, 1)

	// Ones commit into tens (now 11), then the chained pass regroups tens.
	h.sched.AdvanceBy(PlaceValueDelay)
	require.Len(t, h.commits, 1)
	require.Len(t, h.begins, 2)
	assert.Equal(t, "tens", h.begins[1].From)

	h.sched.AdvanceBy(PlaceValueDelay)
	require.Len(t, h.commits, 2)
	assert.Equal(t, 1, h.board.Count("hundreds"))
	assert.Equal(t, 1, h.board.Count("tens"))
	assert.True(t, h.board.Total().Equal(fraction.Whole(110)))
}

func TestEngine_ChainedRegroupRunsAsTwoTransforms(t *testing.T) {
	h := newHarness(board.PlaceValue, PlaceValueDelay)
	h.add(t, "tens", 9)
	h.add(t, "ones", 9)
	assert.Empty(t, h.begins)

	h.add(t, "ones", 1)
	require.Len(t, h.begins, 1)
	assert.Equal(t, "ones", h.begins[0].From)

	h.sched.AdvanceBy(PlaceValueDelay)
	require.Len(t, h.commits, 1)
	require.Len(t, h.begins, 2)
	assert.Equal(t, "tens", h.begins[1].From)
	assert.Equal(t, "hundreds", h.begins[1].Into)
	assert.Equal(t, epoch.Add(2*PlaceValueDelay), h.begins[1].Deadline)
	assert.True(t, h.board.Total().IsZero(), "all ten tens are animating")
	assert.True(t, h.inFlight().Equal(fraction.Whole(100)))

	h.sched.AdvanceBy(PlaceValueDelay)
	require.Len(t, h.commits, 2)
	assert.Equal(t, 0, h.board.Count("ones"))
	assert.Equal(t, 0, h.board.Count("tens"))
	assert.Equal(t, 1, h.board.Count("hundreds"))
	assert.True(t, h.board.Total().Equal(fraction.Whole(100)))
}

func TestEngine_FractionHalving(t *testing.T) {
	h := newHarness(board.FractionBars, FractionDelay)
	h.add(t, "eighths", 3)
	require.Len(t, h.begins, 1)
	assert.True(t, h.board.Total().Equal(fraction.MustNew(1, 8)))
	assert.True(t, h.inFlight().Equal(fraction.MustNew(1, 4)))

	h.sched.AdvanceBy(FractionDelay)
	require.Len(t, h.commits, 1)
	assert.Equal(t, "quarters", h.commits[0].Into)
	assert.Equal(t, 1, h.board.Count("quarters"))
	assert.True(t, h.board.Total().Equal(fraction.MustNew(3, 8)))
}

func TestEngine_NoTransformWhenUpperColumnFull(t *testing.T) {
	// Tens hold fewer than ten blocks, so they never regroup themselves.
	narrow := board.Layout{
		Name: "narrow",
		Categories: []board.Category{
			{Key: "ones", Magnitude: fraction.Whole(1), Capacity: 20},
			{Key: "tens", Magnitude: fraction.Whole(10), Capacity: 5},
			{Key: "hundreds", Magnitude: fraction.Whole(100), Capacity: 5},
		},
	}
	h := newHarness(narrow, PlaceValueDelay)
	h.add(t, "tens", 5)
	h.add(t, "ones", 10)
	assert.Empty(t, h.begins)
	assert.Equal(t, 10, h.board.ActiveCount("ones"))
	assert.True(t, h.board.Total().Equal(fraction.Whole(60)))
}

func TestEngine_FailedCommitRechecksBoard(t *testing.T) {
	h := newHarness(board.PlaceValue, PlaceValueDelay)
	h.add(t, "ones", 10)
	require.Len(t, h.begins, 1)

	// Tens fill up while the ones are still animating.
	h.add(t, "tens", 20)
	require.Len(t, h.begins, 1)

	h.sched.AdvanceBy(PlaceValueDelay)
	assert.Empty(t, h.commits)
	assert.Equal(t, 10, h.board.Count("ones"))

	// The ones are back and the full tens column regroups next.
	require.Len(t, h.begins, 2)
	assert.Equal(t, "tens", h.begins[1].From)
	assert.Equal(t, "hundreds", h.begins[1].Into)
	assert.True(t, h.engine.InProgress())
	assert.Equal(t, 10, h.board.ActiveCount("ones"))
	assert.True(t, h.board.Total().Add(h.inFlight()).Equal(fraction.Whole(210)))

	// After tens regroup the ones get their turn.
	h.sched.AdvanceBy(PlaceValueDelay)
	require.Len(t, h.commits, 1)
	require.Len(t, h.begins, 3)
	assert.Equal(t, "ones", h.begins[2].From)

	// Eleven tens again cross the threshold.
	h.sched.AdvanceBy(PlaceValueDelay)
	require.Len(t, h.commits, 2)
	require.Len(t, h.begins, 4)
	assert.Equal(t, "tens", h.begins[3].From)

	h.sched.AdvanceBy(PlaceValueDelay)
	require.Len(t, h.commits, 3)
	assert.False(t, h.engine.InProgress())
	assert.Equal(t, 2, h.board.Count("hundreds"))
	assert.Equal(t, 1, h.board.Count("tens"))
	assert.Equal(t, 0, h.board.Count("ones"))
	assert.True(t, h.board.Total().Equal(fraction.Whole(210)))
}

func TestEngine_FullBoardReachesMaxTotal(t *testing.T) {
	h := newHarness(board.PlaceValue, PlaceValueDelay)
	h.add(t, "thousands", 20)
	h.add(t, "hundreds", 20)
	h.add(t, "tens", 20)
	h.add(t, "ones", 20)
	assert.Empty(t, h.begins)
	assert.True(t, h.board.Total().Equal(board.PlaceValue.MaxTotal()))
}

func TestEngine_TopCategoryNeverTransforms(t *testing.T) {
	h := newHarness(board.PlaceValue, PlaceValueDelay)
	h.add(t, "thousands", 15)
	assert.Empty(t, h.begins)
}

func TestEngine_CancelRestoresUnits(t *testing.T) {
	h := newHarness(board.PlaceValue, PlaceValueDelay)
	h.add(t, "ones", 10)
	require.True(t, h.engine.InProgress())

	h.engine.Cancel()
	assert.False(t, h.engine.InProgress())
	assert.Equal(t, 10, h.board.ActiveCount("ones"))
	assert.True(t, h.board.Total().Equal(fraction.Whole(10)))

	h.sched.AdvanceBy(time.Second)
	assert.Empty(t, h.commits)
}

func TestEngine_RebindClosedScopeStopsTimers(t *testing.T) {
	h := newHarness(board.PlaceValue, PlaceValueDelay)
	scope := h.sched.NewScope()
	h.engine.Rebind(scope)
	h.add(t, "ones", 10)
	require.True(t, h.engine.InProgress())

	scope.Close()
	h.sched.AdvanceBy(time.Second)
	assert.Empty(t, h.commits)

	h.engine.Rebind(h.sched.NewScope())
	assert.False(t, h.engine.InProgress())
	assert.Equal(t, 10, h.board.ActiveCount("ones"))
}

// Every threshold crossing yields exactly one transform that moves ratio
// units up one column. While it runs the total counts only active units;
// once it settles the total is back to what was added.
func TestEngine_TransformPreservesTotalProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 150
	properties := gopter.NewProperties(parameters)

	properties.Property("transforms conserve the total", prop.ForAll(
		func(steps []int) bool {
			h := newHarness(board.PlaceValue, PlaceValueDelay)
			added := int64(0)
			running := 0
			h.engine.OnBegin(func(Pending) { running++ })
			h.engine.OnCommit(func(Result) { running-- })
			for _, st := range steps {
				if st%4 == 0 {
					h.sched.AdvanceBy(time.Duration(st) * 10 * time.Millisecond)
				} else if _, ok := h.board.AddUnit("ones", fraction.Whole(1)); ok {
					added++
				}
				if running < 0 || running > 1 {
					return false
				}
				if !h.board.Total().Equal(h.activeTotal()) {
					return false
				}
				if h.engine.InProgress() {
					if !h.board.Total().Add(h.inFlight()).Equal(fraction.Whole(added)) {
						return false
					}
				} else if !h.board.Total().Equal(fraction.Whole(added)) {
					return false
				}
			}
			h.sched.AdvanceBy(time.Minute)
			if h.engine.InProgress() || h.board.ActiveCount("ones") >= 10 {
				return false
			}
			if len(h.begins) != len(h.commits) {
				return false
			}
			return h.board.Total().Equal(fraction.Whole(added))
		},
		gen.SliceOf(gen.IntRange(0, 100)),
	))

	properties.TestingRun(t)
}
