package questiongen

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mathblocks/internal/board"
	"github.com/abhisek/mathblocks/internal/challenge"
	"github.com/abhisek/mathblocks/internal/fraction"
	"github.com/abhisek/mathblocks/internal/llm"
)

func reply(v string) llm.MockResponse {
	return llm.MockResponse{Content: json.RawMessage(v)}
}

func newGen(replies ...llm.MockResponse) (*Generator, *llm.MockProvider) {
	m := llm.NewMockProvider(replies...)
	g := New(m, DefaultConfig())
	n := 0
	g.newID = func() string {
		n++
		return "gen-" + strings.Repeat("x", n)
	}
	return g, m
}

func pvInput() Input {
	return Input{Layout: board.PlaceValue, Kind: challenge.KindBuild, Difficulty: 2, Used: []string{"7", "23"}}
}

func TestGenerate_Build(t *testing.T) {
	g, m := newGen(reply(`{"prompt":"Build 342.","kind":"build","difficulty":2,"expected":"342",
		"parts":[{"category":"hundreds","count":3},{"category":"tens","count":4},{"category":"ones","count":2}]}`))

	q, err := g.Generate(context.Background(), pvInput())
	require.NoError(t, err)
	assert.Equal(t, "gen-x", q.ID)
	assert.Equal(t, challenge.KindBuild, q.Kind)
	assert.True(t, q.Expected.Equal(fraction.Whole(342)))

	require.Equal(t, 1, m.CallCount())
	req := m.Calls[0]
	assert.Equal(t, "question-generation", req.Purpose)
	assert.Equal(t, QuestionSchema, req.Schema)
	assert.Contains(t, req.Messages[0].Content, "Difficulty: 2")
	assert.Contains(t, req.Messages[0].Content, "1. 7")
}

func TestGenerate_Equation(t *testing.T) {
	g, _ := newGen(reply(`{"prompt":"Pick two pieces that make 3/4.","kind":"equation","difficulty":1,"expected":"3/4",
		"parts":[{"category":"halves","count":1},{"category":"quarters","count":1}]}`))
	in := Input{Layout: board.FractionBars, Kind: challenge.KindEquation, Difficulty: 1}

	q, err := g.Generate(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, q.Expected.Equal(fraction.MustNew(3, 4)))
}

func TestGenerate_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		in        Input
		body      string
		validator string
	}{
		{
			name:      "parts do not add up",
			in:        pvInput(),
			body:      `{"prompt":"Build 343.","kind":"build","difficulty":2,"expected":"343","parts":[{"category":"hundreds","count":3},{"category":"tens","count":4}]}`,
			validator: "recompute",
		},
		{
			name:      "unknown column",
			in:        pvInput(),
			body:      `{"prompt":"Build 5.","kind":"build","difficulty":1,"expected":"5","parts":[{"category":"fives","count":1}]}`,
			validator: "recompute",
		},
		{
			name:      "would regroup",
			in:        pvInput(),
			body:      `{"prompt":"Build 12.","kind":"build","difficulty":1,"expected":"12","parts":[{"category":"ones","count":12}]}`,
			validator: "buildable",
		},
		{
			name:      "already used",
			in:        pvInput(),
			body:      `{"prompt":"Build 23.","kind":"build","difficulty":1,"expected":"23","parts":[{"category":"tens","count":2},{"category":"ones","count":3}]}`,
			validator: "unique",
		},
		{
			name:      "wrong kind",
			in:        pvInput(),
			body:      `{"prompt":"Pick two.","kind":"equation","difficulty":1,"expected":"2","parts":[{"category":"ones","count":1},{"category":"ones","count":1}]}`,
			validator: "structural",
		},
		{
			name:      "bad answer text",
			in:        pvInput(),
			body:      `{"prompt":"Build it.","kind":"build","difficulty":1,"expected":"forty","parts":[{"category":"tens","count":4}]}`,
			validator: "structural",
		},
		{
			name:      "equation with three pieces",
			in:        Input{Layout: board.FractionBars, Kind: challenge.KindEquation},
			body:      `{"prompt":"Make 1.","kind":"equation","difficulty":1,"expected":"1","parts":[{"category":"halves","count":1},{"category":"quarters","count":2}]}`,
			validator: "buildable",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := newGen(reply(tt.body))
			_, err := g.Generate(context.Background(), tt.in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.validator, verr.Validator)
		})
	}
}

func TestGenerate_SchemaMismatch(t *testing.T) {
	g, _ := newGen(reply(`{"prompt":"Build 5."}`))
	_, err := g.Generate(context.Background(), pvInput())
	var inv *llm.ErrInvalidResponse
	assert.ErrorAs(t, err, &inv)
}

func TestGenerateN_RetriesRejectedDrafts(t *testing.T) {
	g, m := newGen(
		reply(`{"prompt":"Build 8.","kind":"build","difficulty":1,"expected":"8","parts":[{"category":"ones","count":8}]}`),
		reply(`{"prompt":"Build 8 again.","kind":"build","difficulty":2,"expected":"8","parts":[{"category":"ones","count":8}]}`),
		reply(`{"prompt":"Build 90.","kind":"build","difficulty":2,"expected":"90","parts":[{"category":"tens","count":9}]}`),
	)
	res, err := g.GenerateN(context.Background(), Input{Layout: board.PlaceValue, Kind: challenge.KindBuild}, 2)
	require.NoError(t, err)
	require.Len(t, res.Questions, 2)
	assert.Len(t, res.Rejected, 1, "the repeated 8 is rejected as a duplicate")
	assert.Equal(t, 3, m.CallCount())
	assert.Contains(t, m.Calls[1].Messages[0].Content, "1. 8")
}

func TestGenerateN_StopsOnProviderError(t *testing.T) {
	g, _ := newGen(llm.MockResponse{Err: errors.New("offline")})
	res, err := g.GenerateN(context.Background(), pvInput(), 3)
	assert.Error(t, err)
	assert.Empty(t, res.Questions)
}

func TestDescribeLayout(t *testing.T) {
	s := describeLayout(board.PlaceValue)
	assert.Contains(t, s, "ones (")
	assert.Contains(t, s, "10 regroup into the next column")
}
