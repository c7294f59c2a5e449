// Package questiongen drafts challenge questions with a language model
// and keeps only the ones whose answers check out on the board.
package questiongen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/abhisek/mathblocks/internal/board"
	"github.com/abhisek/mathblocks/internal/challenge"
	"github.com/abhisek/mathblocks/internal/fraction"
	"github.com/abhisek/mathblocks/internal/llm"
)

// Part is one column's share of an answer.
type Part struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Draft is a model response before validation.
type Draft struct {
	Prompt     string         `json:"prompt"`
	Kind       challenge.Kind `json:"kind"`
	Difficulty int            `json:"difficulty"`
	Expected   string         `json:"expected"`
	Parts      []Part         `json:"parts"`

	value fraction.Fraction
}

// Input says what to ask for.
type Input struct {
	Layout     board.Layout
	Kind       challenge.Kind
	Difficulty int
	Used       []string // answers already in the pool, as fraction strings
}

// Config controls generation.
type Config struct {
	Validators  []Validator
	MaxTokens   int
	Temperature float64
	MaxPrior    int // answers listed in the prompt
	MaxAttempts int // per question in GenerateN
}

// DefaultConfig returns the standard validator chain.
func DefaultConfig() Config {
	return Config{
		Validators:  []Validator{Structural{}, Recompute{}, Buildable{}, Unique{}},
		MaxTokens:   400,
		Temperature: 0.7,
		MaxPrior:    30,
		MaxAttempts: 3,
	}
}

// Generator drafts questions through an llm.Provider.
type Generator struct {
	provider llm.Provider
	cfg      Config
	newID    func() string
}

// New returns a Generator.
func New(p llm.Provider, cfg Config) *Generator {
	return &Generator{provider: p, cfg: cfg, newID: func() string { return "gen-" + uuid.NewString()[:8] }}
}

// Generate asks for one question and validates it.
func (g *Generator) Generate(ctx context.Context, in Input) (challenge.Question, error) {
	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildUserMessage(in, g.cfg.MaxPrior)}},
		Schema:      QuestionSchema,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
		Purpose:     "question-generation",
	})
	if err != nil {
		return challenge.Question{}, fmt.Errorf("generate question: %w", err)
	}

	var d Draft
	if err := json.Unmarshal(resp.Content, &d); err != nil {
		return challenge.Question{}, fmt.Errorf("decode question: %w", err)
	}
	if d.value, err = fraction.Parse(d.Expected); err != nil {
		return challenge.Question{}, &ValidationError{Validator: "structural", Message: fmt.Sprintf("expected %q: %v", d.Expected, err)}
	}
	for _, v := range g.cfg.Validators {
		if verr := v.Validate(&d, in); verr != nil {
			return challenge.Question{}, verr
		}
	}

	q := challenge.Question{
		ID:         g.newID(),
		Difficulty: d.Difficulty,
		Prompt:     d.Prompt,
		Kind:       d.Kind,
		Expected:   d.value,
	}
	if err := q.Validate(); err != nil {
		return challenge.Question{}, err
	}
	return q, nil
}

// Result of a batch run.
type Result struct {
	Questions []challenge.Question
	Rejected  []error
}

// GenerateN collects up to n questions, cycling difficulty 1..3. Drafts
// rejected by a validator are retried up to MaxAttempts times each;
// provider errors stop the batch.
func (g *Generator) GenerateN(ctx context.Context, in Input, n int) (Result, error) {
	var res Result
	attempts := max(g.cfg.MaxAttempts, 1)
	for i := 0; i < n; i++ {
		req := in
		req.Difficulty = i%3 + 1
		for try := 0; try < attempts; try++ {
			q, err := g.Generate(ctx, req)
			var verr *ValidationError
			if errors.As(err, &verr) {
				res.Rejected = append(res.Rejected, err)
				continue
			}
			if err != nil {
				return res, err
			}
			res.Questions = append(res.Questions, q)
			in.Used = append(in.Used, q.Expected.String())
			break
		}
	}
	return res, nil
}
