package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mathblocks/internal/store"
)

func TestDecodeLLMCall_RoundTripsThroughStore(t *testing.T) {
	s := openStore(t)
	l := NewLogger(s.EventRepo(), zerolog.Nop())
	sink := l.For(nil, "place-value")

	sink.Record(LLMRequestEvent, map[string]any{
		"purpose":       "question-generation",
		"llm_model":     "gpt-4o-mini",
		"latency_ms":    int64(420),
		"success":       true,
		"input_tokens":  1000,
		"output_tokens": 200,
		"cost_usd":      0.00027,
	})

	events, err := s.EventRepo().Query(context.Background(), store.QueryOpts{Name: LLMRequestEvent})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "place-value", events[0].Model)

	c := DecodeLLMCall(events[0])
	assert.Equal(t, "question-generation", c.Purpose)
	assert.Equal(t, "gpt-4o-mini", c.Model)
	assert.Equal(t, 1000, c.InputTokens)
	assert.Equal(t, 200, c.OutputTokens)
	assert.Equal(t, 420, c.LatencyMs)
	assert.True(t, c.Success)
	assert.True(t, c.Priced)
	assert.InDelta(t, 0.00027, c.CostUSD, 1e-9)
}

func TestSummarizeLLM(t *testing.T) {
	now := time.Now()
	calls := []LLMCall{
		{Timestamp: now, Model: "gpt-4o-mini", InputTokens: 100, OutputTokens: 10, CostUSD: 0.5, Priced: true, Success: true},
		{Timestamp: now, Model: "gpt-4o-mini", InputTokens: 50, OutputTokens: 5, CostUSD: 0.25, Priced: true, Success: true},
		{Timestamp: now, Model: "local-model", InputTokens: 10, OutputTokens: 1, Success: true},
		{Timestamp: now, Model: "local-model", Success: false, Error: "timeout"},
		{Timestamp: now, Model: "local-model", Success: false},
	}

	got := SummarizeLLM(calls)
	require.Len(t, got, 2)

	assert.Equal(t, "local-model", got[0].Model)
	assert.Equal(t, 3, got[0].Calls)
	assert.Equal(t, 2, got[0].Failures)
	assert.Equal(t, 1, got[0].Unpriced)

	assert.Equal(t, "gpt-4o-mini", got[1].Model)
	assert.Equal(t, 150, got[1].InputTokens)
	assert.Equal(t, 15, got[1].OutputTokens)
	assert.InDelta(t, 0.75, got[1].CostUSD, 1e-9)
	assert.Zero(t, got[1].Unpriced)
}
