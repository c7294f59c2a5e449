package questiongen

import (
	"fmt"
	"strings"

	"github.com/abhisek/mathblocks/internal/board"
	"github.com/abhisek/mathblocks/internal/challenge"
	"github.com/abhisek/mathblocks/internal/fraction"
)

// Validator checks one draft against the board it was written for.
type Validator interface {
	Name() string
	Validate(d *Draft, in Input) *ValidationError
}

// ValidationError says why a draft was rejected.
type ValidationError struct {
	Validator string
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

func reject(v Validator, format string, args ...any) *ValidationError {
	return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf(format, args...)}
}

// Structural checks the fields are present and in range.
type Structural struct{}

func (Structural) Name() string { return "structural" }

func (v Structural) Validate(d *Draft, in Input) *ValidationError {
	switch {
	case strings.TrimSpace(d.Prompt) == "":
		return reject(v, "empty prompt")
	case d.Kind != in.Kind:
		return reject(v, "asked for %s, got %s", in.Kind, d.Kind)
	case d.Difficulty < 1 || d.Difficulty > 3:
		return reject(v, "difficulty %d out of range", d.Difficulty)
	case len(d.Parts) == 0:
		return reject(v, "no parts")
	}
	return nil
}

// Recompute sums the parts on the board's magnitudes and requires the
// result to equal the stated answer exactly.
type Recompute struct{}

func (Recompute) Name() string { return "recompute" }

func (v Recompute) Validate(d *Draft, in Input) *ValidationError {
	sum := fraction.Whole(0)
	for _, p := range d.Parts {
		c, ok := in.Layout.Category(p.Category)
		if !ok {
			return reject(v, "unknown column %q", p.Category)
		}
		sum = sum.Add(c.Magnitude.Scale(p.Count))
	}
	if !sum.Equal(d.value) {
		return reject(v, "parts add to %s, not %s", sum, d.value)
	}
	return nil
}

// Buildable checks the answer can actually be placed without overflowing
// a column or triggering a regroup mid-question.
type Buildable struct{}

func (Buildable) Name() string { return "buildable" }

func (v Buildable) Validate(d *Draft, in Input) *ValidationError {
	if in.Layout.MaxTotal().Less(d.value) {
		return reject(v, "%s is larger than the board holds", d.value)
	}
	switch d.Kind {
	case challenge.KindEquation:
		if len(d.Parts) != 2 || d.Parts[0].Count != 1 || d.Parts[1].Count != 1 {
			return reject(v, "equation needs exactly two single pieces")
		}
	default:
		seen := make(map[string]bool)
		for _, p := range d.Parts {
			if seen[p.Category] {
				return reject(v, "column %s listed twice", p.Category)
			}
			seen[p.Category] = true
			if limit := regroupLimit(in.Layout, p.Category); p.Count > limit {
				return reject(v, "%d blocks in %s, limit %d", p.Count, p.Category, limit)
			}
		}
	}
	return nil
}

func regroupLimit(l board.Layout, key string) int {
	c, _ := l.Category(key)
	if r := l.Ratio(key); r > 0 && r-1 < c.Capacity {
		return r - 1
	}
	return c.Capacity
}

// Unique rejects answers already in the pool.
type Unique struct{}

func (Unique) Name() string { return "unique" }

func (v Unique) Validate(d *Draft, in Input) *ValidationError {
	for _, u := range in.Used {
		if f, err := fraction.Parse(u); err == nil && f.Equal(d.value) {
			return reject(v, "answer %s already used", d.value)
		}
	}
	return nil
}
