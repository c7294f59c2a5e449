package interaction

import "github.com/abhisek/mathblocks/internal/fraction"

// Rule decides whether value may land on target at this instant.
type Rule func(value fraction.Fraction, target string) bool

// Gesture is one pick-up, hover, release sequence, whether it comes from
// a mouse drag or from keyboard selection. The rule is consulted on every
// move and again on release, never cached, since timers can change the
// active step mid-gesture.
type Gesture struct {
	rule    Rule
	value   fraction.Fraction
	target  string
	active  bool
	allowed bool
}

// NewGesture returns an idle gesture evaluated with rule.
func NewGesture(rule Rule) *Gesture {
	return &Gesture{rule: rule}
}

// Start picks up a piece of value.
func (g *Gesture) Start(value fraction.Fraction) {
	g.value = value
	g.target = ""
	g.active = true
	g.allowed = false
}

// Move hovers over target and reports whether a drop there is legal now.
func (g *Gesture) Move(target string) bool {
	if !g.active {
		return false
	}
	g.target = target
	g.allowed = target != "" && g.rule(g.value, target)
	return g.allowed
}

// End releases the piece over the last target. ok is false if there is
// no target or the drop is not legal at release time.
func (g *Gesture) End() (target string, ok bool) {
	if !g.active {
		return "", false
	}
	target = g.target
	ok = target != "" && g.rule(g.value, target)
	g.reset()
	return target, ok
}

// Cancel drops the gesture without a target.
func (g *Gesture) Cancel() {
	g.reset()
}

func (g *Gesture) reset() {
	g.active = false
	g.target = ""
	g.allowed = false
}

// Active reports whether a piece is being carried.
func (g *Gesture) Active() bool { return g.active }

// Value is the piece being carried.
func (g *Gesture) Value() fraction.Fraction { return g.value }

// Target is the target currently hovered.
func (g *Gesture) Target() string { return g.target }

// Allowed is the verdict of the last Move.
func (g *Gesture) Allowed() bool { return g.allowed }
