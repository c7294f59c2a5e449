package board

import (
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mathblocks/internal/fraction"
	"github.com/abhisek/mathblocks/internal/schedule"
)

var epoch = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

func seqIDs() Option {
	n := 0
	return WithIDFunc(func() string {
		n++
		return fmt.Sprintf("u%d", n)
	})
}

func newPlaceValue(t *testing.T) (*Board, *schedule.Scheduler) {
	t.Helper()
	s := schedule.New(epoch)
	return New(PlaceValue, s, seqIDs()), s
}

func TestLayouts_Valid(t *testing.T) {
	require.NoError(t, PlaceValue.Validate())
	require.NoError(t, FractionBars.Validate())

	assert.Equal(t, 10, PlaceValue.Ratio("ones"))
	assert.Equal(t, 10, PlaceValue.Ratio("hundreds"))
	assert.Equal(t, 0, PlaceValue.Ratio("thousands"))
	assert.Equal(t, 2, FractionBars.Ratio("eighths"))
	assert.Equal(t, 2, FractionBars.Ratio("halves"))
}

func TestLayout_ValidateRejectsBadLayouts(t *testing.T) {
	bad := Layout{Name: "bad", Categories: []Category{
		{Key: "ones", Magnitude: fraction.Whole(1), Capacity: 5},
		{Key: "threes", Magnitude: fraction.MustNew(3, 2), Capacity: 5},
	}}
	assert.Error(t, bad.Validate())

	dup := Layout{Name: "dup", Categories: []Category{
		{Key: "ones", Magnitude: fraction.Whole(1), Capacity: 5},
		{Key: "ones", Magnitude: fraction.Whole(10), Capacity: 5},
	}}
	assert.Error(t, dup.Validate())
	assert.Error(t, Layout{Name: "empty"}.Validate())
}

func TestLayout_MaxTotal(t *testing.T) {
	assert.True(t, PlaceValue.MaxTotal().Equal(fraction.Whole(22220)))
	// 16/8 + 8/4 + 4/2 + 4
	assert.True(t, FractionBars.MaxTotal().Equal(fraction.Whole(10)))
}

func TestLayout_CategoryFor(t *testing.T) {
	c, ok := FractionBars.CategoryFor(fraction.MustNew(2, 4))
	require.True(t, ok)
	assert.Equal(t, "halves", c.Key)

	_, ok = PlaceValue.CategoryFor(fraction.Whole(5))
	assert.False(t, ok)
}

func TestBoard_AddUnit(t *testing.T) {
	b, _ := newPlaceValue(t)

	u, ok := b.AddUnit("tens", fraction.Whole(10))
	require.True(t, ok)
	assert.Equal(t, Entering, u.State)
	assert.True(t, b.Total().Equal(fraction.Whole(10)))

	_, ok = b.AddUnit("tens", fraction.Whole(1))
	assert.False(t, ok, "value must match the category magnitude")
	_, ok = b.AddUnit("millions", fraction.Whole(1000000))
	assert.False(t, ok)
	assert.Equal(t, 1, b.Count("tens"))
}

func TestBoard_CapacityRejects(t *testing.T) {
	b, _ := newPlaceValue(t)
	for i := 0; i < 20; i++ {
		_, ok := b.AddUnit("hundreds", fraction.Whole(100))
		require.True(t, ok)
	}
	_, ok := b.AddUnit("hundreds", fraction.Whole(100))
	assert.False(t, ok)
	assert.Equal(t, 20, b.Count("hundreds"))
	assert.True(t, b.Total().Equal(fraction.Whole(2000)))
}

func TestBoard_RemoveUnitIsDeferred(t *testing.T) {
	b, s := newPlaceValue(t)
	u, _ := b.AddUnit("ones", fraction.Whole(1))
	b.AddUnit("ones", fraction.Whole(1))

	require.True(t, b.RemoveUnit("ones", u.ID))
	assert.True(t, b.Total().Equal(fraction.Whole(1)), "exiting units leave the total at once")
	assert.Equal(t, 2, b.Count("ones"))
	assert.Equal(t, 1, b.ActiveCount("ones"))
	assert.False(t, b.RemoveUnit("ones", u.ID), "already exiting")

	s.AdvanceBy(299 * time.Millisecond)
	assert.Equal(t, 2, b.Count("ones"))
	s.AdvanceBy(time.Millisecond)
	assert.Equal(t, 1, b.Count("ones"))
}

func TestBoard_ExitingUnitsStillOccupyCapacity(t *testing.T) {
	b, s := newPlaceValue(t)
	var last *Unit
	for i := 0; i < 20; i++ {
		last, _ = b.AddUnit("ones", fraction.Whole(1))
	}
	b.RemoveUnit("ones", last.ID)
	assert.False(t, b.HasRoom("ones"))

	s.AdvanceBy(DefaultRemoveDelay)
	assert.True(t, b.HasRoom("ones"))
}

func TestBoard_MarkRestoreCommit(t *testing.T) {
	b, _ := newPlaceValue(t)
	for i := 0; i < 12; i++ {
		b.AddUnit("ones", fraction.Whole(1))
	}

	assert.Nil(t, b.MarkExiting("ones", 13))
	ids := b.MarkExiting("ones", 10)
	require.Len(t, ids, 10)
	assert.Equal(t, "u1", ids[0], "oldest units go first")
	assert.True(t, b.Total().Equal(fraction.Whole(2)))

	b.Restore("ones", ids)
	assert.True(t, b.Total().Equal(fraction.Whole(12)))

	ids = b.MarkExiting("ones", 10)
	u, ok := b.Commit("ones", ids, "tens")
	require.True(t, ok)
	assert.True(t, u.Highlight)
	assert.Equal(t, 2, b.Count("ones"))
	assert.Equal(t, 1, b.Count("tens"))
	assert.True(t, b.Total().Equal(fraction.Whole(12)))
}

func TestBoard_CommitIntoFullColumnFails(t *testing.T) {
	b, _ := newPlaceValue(t)
	for i := 0; i < 20; i++ {
		b.AddUnit("tens", fraction.Whole(10))
	}
	for i := 0; i < 10; i++ {
		b.AddUnit("ones", fraction.Whole(1))
	}
	ids := b.MarkExiting("ones", 10)
	_, ok := b.Commit("ones", ids, "tens")
	assert.False(t, ok)
	assert.Equal(t, 10, b.Count("ones"))
}

func TestBoard_OnChange(t *testing.T) {
	b, _ := newPlaceValue(t)
	calls := 0
	b.OnChange(func() { calls++ })

	u, _ := b.AddUnit("ones", fraction.Whole(1))
	b.AddUnit("ones", fraction.Whole(2)) // rejected, no notification
	b.RemoveUnit("ones", u.ID)
	b.Clear()
	assert.Equal(t, 3, calls)
}

func TestBoard_ClearDropsEverything(t *testing.T) {
	b, s := newPlaceValue(t)
	u, _ := b.AddUnit("ones", fraction.Whole(1))
	b.RemoveUnit("ones", u.ID)
	b.AddUnit("tens", fraction.Whole(10))
	b.Clear()

	assert.True(t, b.Total().IsZero())
	s.AdvanceBy(time.Second)
	assert.Zero(t, b.Count("ones"))
}

func TestBoard_SettleAndHighlight(t *testing.T) {
	b, _ := newPlaceValue(t)
	u, _ := b.AddUnit("ones", fraction.Whole(1))
	b.Settle()
	assert.Equal(t, Idle, b.Units("ones")[0].State)

	b.SetHighlight("ones", u.ID, true)
	assert.True(t, b.Units("ones")[0].Highlight)
}

func TestEquation(t *testing.T) {
	eq := NewEquation()
	assert.True(t, eq.Result().IsZero())
	require.True(t, eq.Set(SlotLeft, fraction.MustNew(1, 4)))
	assert.False(t, eq.Filled())
	require.True(t, eq.Set(SlotRight, fraction.MustNew(1, 4)))
	assert.True(t, eq.Filled())
	assert.True(t, eq.Result().Equal(fraction.MustNew(1, 2)))
	assert.False(t, eq.Set("middle", fraction.Whole(1)))

	eq.ClearSlot(SlotLeft)
	assert.True(t, eq.Result().Equal(fraction.MustNew(1, 4)))
	eq.Reset()
	_, ok := eq.Piece(SlotRight)
	assert.False(t, ok)
}

// The total always equals the sum of active units times magnitude, no
// matter how adds and removals interleave with the exit delay.
func TestBoard_TotalMatchesActiveUnitsProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("total equals active sum", prop.ForAll(
		func(ops []int) bool {
			s := schedule.New(epoch)
			b := New(PlaceValue, s)
			for _, op := range ops {
				cat := PlaceValue.Categories[op%len(PlaceValue.Categories)]
				switch {
				case op%5 == 0:
					if us := b.Units(cat.Key); len(us) > 0 {
						b.RemoveUnit(cat.Key, us[len(us)-1].ID)
					}
				case op%7 == 0:
					s.AdvanceBy(150 * time.Millisecond)
				default:
					b.AddUnit(cat.Key, cat.Magnitude)
				}
				want := fraction.Whole(0)
				for _, c := range PlaceValue.Categories {
					for _, u := range b.Units(c.Key) {
						if !u.State.Exiting() {
							want = want.Add(u.Value)
						}
					}
					if b.Count(c.Key) > c.Capacity {
						return false
					}
				}
				if !b.Total().Equal(want) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 200)),
	))

	properties.TestingRun(t)
}
