// Package challenge runs timed quizzes scored against the board total.
package challenge

import (
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/mathblocks/internal/fraction"
)

// Kind says what the learner builds to answer.
type Kind string

const (
	KindBuild    Kind = "build"    // total of the board
	KindEquation Kind = "equation" // result of the equation slots
)

// Question is one entry of a pool.
type Question struct {
	ID         string            `yaml:"id" json:"id"`
	Difficulty int               `yaml:"difficulty" json:"difficulty"`
	Prompt     string            `yaml:"prompt" json:"prompt"`
	Kind       Kind              `yaml:"kind" json:"kind"`
	Expected   fraction.Fraction `yaml:"expected" json:"expected"`
}

// Validate checks a question's fields.
func (q Question) Validate() error {
	if q.ID == "" {
		return errors.New("question without id")
	}
	if q.Difficulty < 1 || q.Difficulty > 3 {
		return fmt.Errorf("question %s: difficulty %d out of range 1..3", q.ID, q.Difficulty)
	}
	if q.Prompt == "" {
		return fmt.Errorf("question %s: empty prompt", q.ID)
	}
	switch q.Kind {
	case KindBuild, KindEquation:
	default:
		return fmt.Errorf("question %s: unknown kind %q", q.ID, q.Kind)
	}
	if q.Expected.Num < 0 {
		return fmt.Errorf("question %s: negative answer", q.ID)
	}
	return nil
}

// Points awarded for a correct answer.
func (q Question) Points() int {
	return 10 * q.Difficulty
}

// Durations maps difficulty to countdown length.
type Durations map[int]time.Duration

// DefaultDurations gives easier questions more time.
func DefaultDurations() Durations {
	return Durations{1: 45 * time.Second, 2: 30 * time.Second, 3: 20 * time.Second}
}

// For returns the countdown for difficulty, falling back to the
// hardest configured level's time for unknown levels.
func (d Durations) For(difficulty int) time.Duration {
	if v, ok := d[difficulty]; ok && v > 0 {
		return v
	}
	if v, ok := DefaultDurations()[difficulty]; ok {
		return v
	}
	return 20 * time.Second
}
