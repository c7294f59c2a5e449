package playbox

import (
	"time"

	"github.com/abhisek/mathblocks/internal/board"
	"github.com/abhisek/mathblocks/internal/challenge"
	"github.com/abhisek/mathblocks/internal/content"
	"github.com/abhisek/mathblocks/internal/training"
	"github.com/abhisek/mathblocks/internal/transform"
)

// Model is everything one manipulative needs to run.
type Model struct {
	Name           string
	Title          string
	Info           string
	Layout         board.Layout
	Script         *training.Script
	Questions      []challenge.Question
	TransformDelay time.Duration
	Equation       bool // offers the two-slot equation row
}

// FromPack builds a Model from loaded content.
func FromPack(p *content.Pack) Model {
	m := Model{
		Name:      p.Model,
		Title:     p.Title,
		Info:      p.Info,
		Layout:    p.Layout,
		Script:    p.Script,
		Questions: p.Questions,
	}
	if m.Title == "" {
		m.Title = p.Model
	}
	switch p.Layout.Name {
	case board.FractionBars.Name:
		m.TransformDelay = transform.FractionDelay
		m.Equation = true
	default:
		m.TransformDelay = transform.PlaceValueDelay
	}
	return m
}
