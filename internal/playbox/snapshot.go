package playbox

import (
	"github.com/abhisek/mathblocks/internal/board"
	"github.com/abhisek/mathblocks/internal/challenge"
	"github.com/abhisek/mathblocks/internal/fraction"
	"github.com/abhisek/mathblocks/internal/modes"
	"github.com/abhisek/mathblocks/internal/training"
	"github.com/abhisek/mathblocks/internal/transform"
)

// Column is one category as rendered.
type Column struct {
	Category board.Category
	Units    []board.Unit
	Active   int
	Full     bool
}

// Slot is one equation slot as rendered.
type Slot struct {
	Name  string
	Piece *fraction.Fraction
}

// Lesson is the training progress as rendered.
type Lesson struct {
	Step     training.Step
	Index    int
	Count    int
	Finished bool
}

// Snapshot is a read-only view of a Playbox for the UI.
type Snapshot struct {
	Model     string
	Title     string
	Info      string
	Mode      modes.Mode
	Columns   []Column
	Total     fraction.Fraction
	Slots     []Slot
	Result    fraction.Fraction
	Pending   *transform.Pending
	Lesson    *Lesson
	Caption   string
	Challenge *challenge.State
}

// Snapshot captures the current state.
func (p *Playbox) Snapshot() Snapshot {
	s := Snapshot{
		Model: p.model.Name,
		Title: p.model.Title,
		Info:  p.model.Info,
		Mode:  p.machine.Current(),
		Total: p.board.Total(),
	}
	for _, c := range p.model.Layout.Categories {
		s.Columns = append(s.Columns, Column{
			Category: c,
			Units:    p.board.Units(c.Key),
			Active:   p.board.ActiveCount(c.Key),
			Full:     !p.board.HasRoom(c.Key),
		})
	}
	if p.model.Equation {
		for _, name := range p.eq.Slots() {
			slot := Slot{Name: name}
			if v, ok := p.eq.Piece(name); ok {
				slot.Piece = &v
			}
			s.Slots = append(s.Slots, slot)
		}
		s.Result = p.eq.Result()
	}
	if pend, ok := p.engine.Pending(); ok {
		s.Pending = &pend
	}
	if p.runner != nil && p.runner.Started() {
		s.Lesson = &Lesson{
			Step:     p.runner.Current(),
			Index:    p.runner.Cursor(),
			Count:    p.model.Script.Len(),
			Finished: p.runner.Finished(),
		}
		s.Caption = p.caption
	}
	if p.quiz != nil {
		st := p.quiz.State()
		s.Challenge = &st
	}
	return s
}
