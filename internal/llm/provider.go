// Package llm talks to hosted language models for content authoring.
// Every provider returns JSON that has been checked against the
// request's schema.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates one structured response.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	ModelID() string
}

// Request is a single-turn prompt.
type Request struct {
	System      string
	Messages    []Message
	Schema      *Schema // nil means free text
	MaxTokens   int
	Temperature float64

	// Purpose labels the request in logs, e.g. "question-generation".
	Purpose string
}

// Message is one conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Role of a message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a JSON Schema the response must satisfy. Name doubles as the
// tool or schema name sent to the provider, so keep it kebab-case.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Response is the provider output.
type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason string // "end" or "max_tokens"
}

// Usage is token consumption for one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// resolveModel maps a short alias to a provider model id. Unknown names
// pass through so full ids work too.
func resolveModel(name string, aliases map[string]string) string {
	if id, ok := aliases[name]; ok {
		return id
	}
	return name
}
