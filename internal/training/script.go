// Package training runs a guided lesson: an ordered script of steps that
// advances on timers or on what the learner builds.
package training

import (
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/mathblocks/internal/board"
	"github.com/abhisek/mathblocks/internal/fraction"
)

// ErrInvalidScript is returned for scripts that cannot be run.
var ErrInvalidScript = errors.New("invalid training script")

// Kind is the type of a training step.
type Kind string

const (
	KindIntro             Kind = "intro"
	KindRequiredAction    Kind = "required_action"
	KindTimedFeedback     Kind = "timed_feedback"
	KindTransformFeedback Kind = "transform_feedback"
	KindComplete          Kind = "complete"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindIntro, KindRequiredAction, KindTimedFeedback, KindTransformFeedback, KindComplete:
		return true
	}
	return false
}

// Timed reports whether steps of this kind advance on a timer.
func (k Kind) Timed() bool {
	return k == KindIntro || k == KindTimedFeedback || k == KindTransformFeedback
}

// ActionSpec is what the learner must do to pass a required_action step.
type ActionSpec struct {
	SourceValue    fraction.Fraction `yaml:"source_value"`
	TargetCategory string            `yaml:"target_category"`
	RequiredCount  int               `yaml:"required_count"`
}

// Step is one entry of a script.
type Step struct {
	Order            int           `yaml:"order"`
	Kind             Kind          `yaml:"kind"`
	Action           *ActionSpec   `yaml:"action,omitempty"`
	Narration        string        `yaml:"narration"`
	Timeout          time.Duration `yaml:"timeout,omitempty"`
	FeedbackCategory string        `yaml:"feedback_category,omitempty"`
	ClearsBoard      bool          `yaml:"clears_board,omitempty"`
}

// Script is a validated, immutable step sequence for one layout.
type Script struct {
	name   string
	layout board.Layout
	steps  []Step
}

// NewScript validates steps against layout.
func NewScript(name string, layout board.Layout, steps []Step) (*Script, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: %s has no steps", ErrInvalidScript, name)
	}
	for i, st := range steps {
		if err := validateStep(layout, st); err != nil {
			return nil, fmt.Errorf("%w: %s step %d: %v", ErrInvalidScript, name, st.Order, err)
		}
		if i > 0 && st.Order <= steps[i-1].Order {
			return nil, fmt.Errorf("%w: %s step %d: order must be greater than %d",
				ErrInvalidScript, name, st.Order, steps[i-1].Order)
		}
		last := i == len(steps)-1
		if last != (st.Kind == KindComplete) {
			return nil, fmt.Errorf("%w: %s: exactly the last step must be %q",
				ErrInvalidScript, name, KindComplete)
		}
	}
	return &Script{
		name:   name,
		layout: layout,
		steps:  append([]Step(nil), steps...),
	}, nil
}

func validateStep(layout board.Layout, st Step) error {
	if !st.Kind.Valid() {
		return fmt.Errorf("unknown kind %q", st.Kind)
	}
	if st.Timeout < 0 {
		return errors.New("negative timeout")
	}
	if st.Kind != KindRequiredAction {
		if st.Action != nil {
			return fmt.Errorf("%s step carries an action", st.Kind)
		}
	} else {
		a := st.Action
		if a == nil {
			return errors.New("required_action step without action")
		}
		c, ok := layout.Category(a.TargetCategory)
		if !ok {
			return fmt.Errorf("unknown category %q", a.TargetCategory)
		}
		if !c.Magnitude.Equal(a.SourceValue) {
			return fmt.Errorf("value %s does not fit %q", a.SourceValue, a.TargetCategory)
		}
		if a.RequiredCount <= 0 {
			return errors.New("required_count must be positive")
		}
	}
	if st.FeedbackCategory != "" {
		if _, ok := layout.Category(st.FeedbackCategory); !ok {
			return fmt.Errorf("unknown feedback category %q", st.FeedbackCategory)
		}
	}
	return nil
}

// Name returns the script name.
func (s *Script) Name() string { return s.name }

// Layout returns the layout the script was validated against.
func (s *Script) Layout() board.Layout { return s.layout }

// Len returns the number of steps.
func (s *Script) Len() int { return len(s.steps) }

// Step returns the step at index i.
func (s *Script) Step(i int) Step { return s.steps[i] }

// Steps returns a copy of every step.
func (s *Script) Steps() []Step { return append([]Step(nil), s.steps...) }

// IsRegroup reports whether a required_action step can only be satisfied
// by a transform: its count reaches the regroup ratio of its category.
func (s *Script) IsRegroup(st Step) bool {
	if st.Kind != KindRequiredAction || st.Action == nil {
		return false
	}
	ratio := s.layout.Ratio(st.Action.TargetCategory)
	return ratio > 0 && st.Action.RequiredCount >= ratio
}
