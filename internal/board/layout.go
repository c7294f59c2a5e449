package board

import (
	"fmt"

	"github.com/abhisek/mathblocks/internal/fraction"
)

// Category is one ordered bucket on the board, e.g. "tens" or "quarters".
type Category struct {
	Key       string
	Label     string
	Magnitude fraction.Fraction
	Capacity  int
}

// Layout is the ordered set of categories for one manipulative model,
// smallest magnitude first.
type Layout struct {
	Name       string
	Categories []Category
}

// PlaceValue is the base-ten blocks layout.
var PlaceValue = Layout{
	Name: "place-value",
	Categories: []Category{
		{Key: "ones", Label: "Ones", Magnitude: fraction.Whole(1), Capacity: 20},
		{Key: "tens", Label: "Tens", Magnitude: fraction.Whole(10), Capacity: 20},
		{Key: "hundreds", Label: "Hundreds", Magnitude: fraction.Whole(100), Capacity: 20},
		{Key: "thousands", Label: "Thousands", Magnitude: fraction.Whole(1000), Capacity: 20},
	},
}

// FractionBars is the halving chain of fraction pieces.
var FractionBars = Layout{
	Name: "fractions",
	Categories: []Category{
		{Key: "eighths", Label: "1/8", Magnitude: fraction.MustNew(1, 8), Capacity: 16},
		{Key: "quarters", Label: "1/4", Magnitude: fraction.MustNew(1, 4), Capacity: 8},
		{Key: "halves", Label: "1/2", Magnitude: fraction.MustNew(1, 2), Capacity: 4},
		{Key: "wholes", Label: "1", Magnitude: fraction.Whole(1), Capacity: 4},
	},
}

// Index returns the position of key, or -1.
func (l Layout) Index(key string) int {
	for i, c := range l.Categories {
		if c.Key == key {
			return i
		}
	}
	return -1
}

// Category looks up a category by key.
func (l Layout) Category(key string) (Category, bool) {
	if i := l.Index(key); i >= 0 {
		return l.Categories[i], true
	}
	return Category{}, false
}

// CategoryFor returns the canonical category for a unit value: the one
// whose magnitude equals it.
func (l Layout) CategoryFor(value fraction.Fraction) (Category, bool) {
	for _, c := range l.Categories {
		if c.Magnitude.Equal(value) {
			return c, true
		}
	}
	return Category{}, false
}

// Next returns the category above key.
func (l Layout) Next(key string) (Category, bool) {
	i := l.Index(key)
	if i < 0 || i+1 >= len(l.Categories) {
		return Category{}, false
	}
	return l.Categories[i+1], true
}

// Ratio returns how many units of key make one unit of the next category,
// or 0 for the top category.
func (l Layout) Ratio(key string) int {
	c, ok := l.Category(key)
	if !ok {
		return 0
	}
	next, ok := l.Next(key)
	if !ok {
		return 0
	}
	r, err := next.Magnitude.Div(c.Magnitude)
	if err != nil || !r.IsWhole() {
		return 0
	}
	return int(r.Int())
}

// MaxTotal is the largest total the board can hold: every column at
// capacity. Lower columns only stay that full once the column above has
// no room left to regroup into.
func (l Layout) MaxTotal() fraction.Fraction {
	total := fraction.Whole(0)
	for _, c := range l.Categories {
		total = total.Add(c.Magnitude.Scale(c.Capacity))
	}
	return total
}

// Validate checks ordering, capacities and integral ratios.
func (l Layout) Validate() error {
	if len(l.Categories) == 0 {
		return fmt.Errorf("layout %q has no categories", l.Name)
	}
	seen := make(map[string]bool)
	for i, c := range l.Categories {
		if c.Key == "" {
			return fmt.Errorf("layout %q: category %d has no key", l.Name, i)
		}
		if seen[c.Key] {
			return fmt.Errorf("layout %q: duplicate category %q", l.Name, c.Key)
		}
		seen[c.Key] = true
		if c.Capacity <= 0 {
			return fmt.Errorf("layout %q: category %q needs a positive capacity", l.Name, c.Key)
		}
		if i > 0 {
			prev := l.Categories[i-1]
			if !prev.Magnitude.Less(c.Magnitude) {
				return fmt.Errorf("layout %q: %q must be larger than %q", l.Name, c.Key, prev.Key)
			}
			if l.Ratio(prev.Key) < 2 {
				return fmt.Errorf("layout %q: %q is not a whole multiple of %q", l.Name, c.Key, prev.Key)
			}
		}
	}
	return nil
}

// Layouts lists the built-in layouts.
func Layouts() []Layout {
	return []Layout{PlaceValue, FractionBars}
}

// LayoutByName finds a built-in layout.
func LayoutByName(name string) (Layout, bool) {
	for _, l := range Layouts() {
		if l.Name == name {
			return l, true
		}
	}
	return Layout{}, false
}
