package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func answerSchema() *Schema {
	return &Schema{
		Name: "test-answer",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"prompt":     map[string]any{"type": "string"},
				"difficulty": map[string]any{"type": "integer", "minimum": 1, "maximum": 3},
				"kind":       map[string]any{"type": "string", "enum": []any{"build", "equation"}},
			},
			"required":             []any{"prompt", "difficulty"},
			"additionalProperties": false,
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		{"valid", `{"prompt":"Build 7","difficulty":1,"kind":"build"}`, true},
		{"optional omitted", `{"prompt":"Build 7","difficulty":2}`, true},
		{"missing required", `{"prompt":"Build 7"}`, false},
		{"wrong type", `{"prompt":"Build 7","difficulty":"easy"}`, false},
		{"out of range", `{"prompt":"Build 7","difficulty":4}`, false},
		{"bad enum", `{"prompt":"Build 7","difficulty":1,"kind":"guess"}`, false},
		{"extra field", `{"prompt":"Build 7","difficulty":1,"x":1}`, false},
		{"not json", `Build 7`, false},
		{"empty", ``, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(answerSchema(), json.RawMessage(tt.raw))
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var inv *ErrInvalidResponse
			assert.ErrorAs(t, err, &inv)
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	assert.NoError(t, validateResponse(nil, json.RawMessage(`anything`)))
}

func TestMockProvider(t *testing.T) {
	m := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Err: &ErrRateLimit{}},
	)
	resp, err := m.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(resp.Content))
	assert.Equal(t, 10, resp.Usage.InputTokens)

	_, err = m.Generate(context.Background(), Request{})
	var rl *ErrRateLimit
	assert.ErrorAs(t, err, &rl)

	_, err = m.Generate(context.Background(), Request{})
	var down *ErrProviderUnavailable
	assert.ErrorAs(t, err, &down)

	assert.Equal(t, 3, m.CallCount())
	assert.Equal(t, "hi", m.Calls[0].Messages[0].Content)
}

func TestMockProvider_ValidatesSchema(t *testing.T) {
	m := NewMockProvider(MockResponse{Content: json.RawMessage(`{"prompt":1}`)})
	_, err := m.Generate(context.Background(), Request{Schema: answerSchema()})
	var inv *ErrInvalidResponse
	assert.ErrorAs(t, err, &inv)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, Config{Provider: Mock}.Validate())
	assert.NoError(t, Config{Provider: Gemini, APIKey: "k"}.Validate())
	assert.Error(t, Config{Provider: OpenAI}.Validate())
	assert.Error(t, Config{Provider: "bard", APIKey: "k"}.Validate())
}

func TestConfigFromEnv(t *testing.T) {
	for _, kv := range keyVars {
		t.Setenv(kv.env, "")
	}
	t.Setenv("MATHBLOCKS_LLM_PROVIDER", "")
	t.Setenv("MATHBLOCKS_LLM_API_KEY", "")
	t.Setenv("MATHBLOCKS_LLM_MODEL", "")
	t.Setenv("MATHBLOCKS_LLM_BASE_URL", "")

	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg := ConfigFromEnv()
	assert.Equal(t, OpenAI, cfg.Provider)
	assert.Equal(t, "sk-test", cfg.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.ModelName())

	t.Setenv("MATHBLOCKS_LLM_PROVIDER", Anthropic)
	t.Setenv("ANTHROPIC_API_KEY", "ak")
	t.Setenv("MATHBLOCKS_LLM_MODEL", "claude-sonnet")
	cfg = ConfigFromEnv()
	assert.Equal(t, Anthropic, cfg.Provider)
	assert.Equal(t, "ak", cfg.APIKey)
	assert.Equal(t, "claude-sonnet", cfg.ModelName())
}

func TestNew_Mock(t *testing.T) {
	p, err := New(context.Background(), Config{Provider: Mock}, zerolog.Nop(), nil)
	require.NoError(t, err)
	assert.Equal(t, "mock", p.ModelID())

	_, err = New(context.Background(), Config{Provider: Anthropic}, zerolog.Nop(), nil)
	assert.Error(t, err)
}

func instantRetry(p Provider, attempts int) *retryProvider {
	r := WithRetry(p, RetryConfig{MaxAttempts: attempts, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond, Multiplier: 2}).(*retryProvider)
	r.sleep = func(context.Context, time.Duration) error { return nil }
	return r
}

func TestRetry(t *testing.T) {
	ok := MockResponse{Content: json.RawMessage(`{"ok":true}`)}
	down := MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}}
	invalid := MockResponse{Err: &ErrInvalidResponse{Err: errors.New("bad")}}
	trunc := MockResponse{Err: &ErrMaxTokensExceeded{}}

	tests := []struct {
		name    string
		replies []MockResponse
		calls   int
		wantErr bool
	}{
		{"first try", []MockResponse{ok}, 1, false},
		{"transient then ok", []MockResponse{down, ok}, 2, false},
		{"all fail", []MockResponse{down, down, down, ok}, 3, true},
		{"truncation not retried", []MockResponse{trunc, ok}, 1, true},
		{"invalid retried once", []MockResponse{invalid, invalid, ok}, 2, true},
		{"invalid then ok", []MockResponse{invalid, ok}, 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMockProvider(tt.replies...)
			_, err := instantRetry(m, 3).Generate(context.Background(), Request{})
			assert.Equal(t, tt.wantErr, err != nil, "err = %v", err)
			assert.Equal(t, tt.calls, m.CallCount())
		})
	}
}

func TestRetry_StopsOnCancelledContext(t *testing.T) {
	m := NewMockProvider(MockResponse{Err: &ErrProviderUnavailable{}}, MockResponse{Content: json.RawMessage(`{}`)})
	p := WithRetry(m, RetryConfig{MaxAttempts: 3, InitialWait: time.Hour, MaxWait: time.Hour, Multiplier: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Generate(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, m.CallCount())
}

func TestRetry_BackoffHonoursRetryAfter(t *testing.T) {
	r := instantRetry(NewMockProvider(), 3)
	assert.Equal(t, 7*time.Second, r.backoff(0, &ErrRateLimit{RetryAfter: 7 * time.Second}))

	d := r.backoff(10, errors.New("x"))
	assert.LessOrEqual(t, d, 6*time.Millisecond, "capped at MaxWait plus jitter")
}

type events struct {
	names    []string
	payloads []map[string]any
}

func (e *events) Record(name string, payload map[string]any) {
	e.names = append(e.names, name)
	e.payloads = append(e.payloads, payload)
}

func TestWithLogging_RecordsUsage(t *testing.T) {
	ev := &events{}
	m := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{}`), Usage: Usage{InputTokens: 100, OutputTokens: 20}},
		MockResponse{Err: errors.New("boom")},
	)
	p := WithLogging(m, zerolog.Nop(), ev)

	_, err := p.Generate(context.Background(), Request{Purpose: "question-generation"})
	require.NoError(t, err)
	_, err = p.Generate(context.Background(), Request{Purpose: "question-generation"})
	require.Error(t, err)

	require.Equal(t, []string{"llm_request", "llm_request"}, ev.names)
	assert.Equal(t, "question-generation", ev.payloads[0]["purpose"])
	assert.Equal(t, 100, ev.payloads[0]["input_tokens"])
	assert.Equal(t, true, ev.payloads[0]["success"])
	assert.Equal(t, false, ev.payloads[1]["success"])
	assert.Equal(t, "boom", ev.payloads[1]["error"])
	assert.Equal(t, "unknown", ev.payloads[1]["failure"])
}

func TestLookupCost(t *testing.T) {
	c := LookupCost("gpt-4o-mini")
	require.NotNil(t, c)
	assert.InDelta(t, 0.00075, c.Cost(1000, 1000), 1e-9)
	assert.Nil(t, LookupCost("unknown-model"))
}

func TestResolveModel(t *testing.T) {
	assert.Equal(t, "gemini-2.0-flash", resolveModel("gemini-flash", geminiAliases))
	assert.Equal(t, "claude-haiku-4-5-20251001", resolveModel("claude-haiku", anthropicAliases))
	assert.Equal(t, "custom-id", resolveModel("custom-id", anthropicAliases))
}

func TestGeminiSchema(t *testing.T) {
	s := geminiSchema(answerSchema().Definition)
	assert.Equal(t, "OBJECT", string(s.Type))
	require.Len(t, s.Properties, 3)
	assert.Equal(t, "INTEGER", string(s.Properties["difficulty"].Type))
	assert.Equal(t, []string{"build", "equation"}, s.Properties["kind"].Enum)
	assert.ElementsMatch(t, []string{"prompt", "difficulty"}, s.Required)
}

func TestWithRateLimit(t *testing.T) {
	ok := MockResponse{Content: json.RawMessage(`{}`)}
	m := NewMockProvider(ok, ok)
	assert.Same(t, Provider(m), WithRateLimit(m, 0, 1), "zero rate leaves the provider unwrapped")

	p := WithRateLimit(m, 60, 1)
	_, err := p.Generate(context.Background(), Request{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = p.Generate(ctx, Request{})
	assert.Error(t, err, "second call exceeds the burst and cannot wait a full second")
	assert.Equal(t, 1, m.CallCount())
}

func TestWithTimeout(t *testing.T) {
	m := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})
	assert.Same(t, Provider(m), withTimeout(m, 0))

	p := withTimeout(m, time.Second)
	_, err := p.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "mock", p.ModelID())
}
