package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, status int, body any, seen *map[string]any) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			b, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(b, seen)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func questionRequest() Request {
	return Request{
		System:    "You write place value questions.",
		Messages:  []Message{{Role: RoleUser, Content: "Write one."}},
		Schema:    answerSchema(),
		MaxTokens: 256,
		Purpose:   "question-generation",
	}
}

const questionJSON = `{"prompt":"Build 42","difficulty":1,"kind":"build"}`

func TestAnthropicProvider_Generate(t *testing.T) {
	var seen map[string]any
	url := serve(t, http.StatusOK, map[string]any{
		"id":          "msg_1",
		"type":        "message",
		"role":        "assistant",
		"model":       "claude-haiku-4-5-20251001",
		"stop_reason": "end_turn",
		"content":     []map[string]any{{"type": "text", "text": questionJSON}},
		"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
	}, &seen)

	p, err := NewAnthropicProvider(Config{Provider: Anthropic, APIKey: "k", BaseURL: url})
	require.NoError(t, err)
	assert.Equal(t, "claude-haiku-4-5-20251001", p.ModelID())

	resp, err := p.Generate(context.Background(), questionRequest())
	require.NoError(t, err)
	assert.JSONEq(t, questionJSON, string(resp.Content))
	assert.Equal(t, 80, resp.Usage.TotalTokens)
	assert.Equal(t, "end", resp.StopReason)
	assert.Equal(t, "claude-haiku-4-5-20251001", seen["model"])
}

func TestAnthropicProvider_Errors(t *testing.T) {
	errBody := map[string]any{"type": "error", "error": map[string]any{"type": "rate_limit_error", "message": "slow down"}}

	url := serve(t, http.StatusTooManyRequests, errBody, nil)
	p, err := NewAnthropicProvider(Config{Provider: Anthropic, APIKey: "k", BaseURL: url})
	require.NoError(t, err)
	_, err = p.Generate(context.Background(), questionRequest())
	var rl *ErrRateLimit
	assert.ErrorAs(t, err, &rl)

	url = serve(t, http.StatusInternalServerError, errBody, nil)
	p, err = NewAnthropicProvider(Config{Provider: Anthropic, APIKey: "k", BaseURL: url})
	require.NoError(t, err)
	_, err = p.Generate(context.Background(), questionRequest())
	var down *ErrProviderUnavailable
	assert.ErrorAs(t, err, &down)
}

func TestAnthropicProvider_RequiresKey(t *testing.T) {
	_, err := NewAnthropicProvider(Config{Provider: Anthropic})
	assert.Error(t, err)
}

func chatCompletion(content, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1767225600,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
	}
}

func TestOpenAIProvider_Generate(t *testing.T) {
	var seen map[string]any
	url := serve(t, http.StatusOK, chatCompletion(questionJSON, "stop"), &seen)
	p, err := NewOpenAIProvider(Config{Provider: OpenAI, APIKey: "k", BaseURL: url + "/v1"})
	require.NoError(t, err)

	resp, err := p.Generate(context.Background(), questionRequest())
	require.NoError(t, err)
	assert.Equal(t, 65, resp.Usage.TotalTokens)
	assert.Equal(t, "gpt-4o-mini", resp.Model)

	format, ok := seen["response_format"].(map[string]any)
	require.True(t, ok, "schema sent as response_format")
	assert.Equal(t, "json_schema", format["type"])
	msgs, ok := seen["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, msgs, 2, "system prompt plus user turn")
}

func TestOpenAIProvider_Failures(t *testing.T) {
	url := serve(t, http.StatusOK, chatCompletion(`{"prompt":"x"`, "length"), nil)
	p, err := NewOpenAIProvider(Config{Provider: OpenAI, APIKey: "k", BaseURL: url + "/v1"})
	require.NoError(t, err)
	_, err = p.Generate(context.Background(), questionRequest())
	var trunc *ErrMaxTokensExceeded
	assert.ErrorAs(t, err, &trunc)

	url = serve(t, http.StatusOK, chatCompletion(`{"prompt":"x"}`, "stop"), nil)
	p, err = NewOpenAIProvider(Config{Provider: OpenAI, APIKey: "k", BaseURL: url + "/v1"})
	require.NoError(t, err)
	_, err = p.Generate(context.Background(), questionRequest())
	var inv *ErrInvalidResponse
	assert.ErrorAs(t, err, &inv)

	url = serve(t, http.StatusTooManyRequests, map[string]any{"error": map[string]any{"message": "slow", "type": "rate_limit"}}, nil)
	p, err = NewOpenAIProvider(Config{Provider: OpenAI, APIKey: "k", BaseURL: url + "/v1"})
	require.NoError(t, err)
	_, err = p.Generate(context.Background(), questionRequest())
	var rl *ErrRateLimit
	assert.ErrorAs(t, err, &rl)
}

func TestOpenRouter_DefaultsBaseURL(t *testing.T) {
	p, err := NewOpenAIProvider(Config{Provider: OpenRouter, APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "google/gemini-2.0-flash-exp", p.ModelID())
}
