package analytics

import (
	"sort"
	"time"

	"github.com/abhisek/mathblocks/internal/store"
)

// LLMRequestEvent is the event name the llm package records.
const LLMRequestEvent = "llm_request"

// LLMCall is one llm_request event decoded from its payload.
type LLMCall struct {
	ID           int64
	Timestamp    time.Time
	Purpose      string
	Model        string
	InputTokens  int
	OutputTokens int
	LatencyMs    int
	CostUSD      float64
	Priced       bool
	Success      bool
	Error        string
}

// DecodeLLMCall reads the payload of an llm_request event. Numbers come
// back from the store as float64.
func DecodeLLMCall(e store.Event) LLMCall {
	p := e.Payload
	c := LLMCall{
		ID:           e.ID,
		Timestamp:    e.Timestamp,
		Purpose:      str(p["purpose"]),
		Model:        str(p["llm_model"]),
		InputTokens:  num(p["input_tokens"]),
		OutputTokens: num(p["output_tokens"]),
		LatencyMs:    num(p["latency_ms"]),
		Error:        str(p["error"]),
	}
	c.Success, _ = p["success"].(bool)
	if v, ok := p["cost_usd"].(float64); ok {
		c.CostUSD, c.Priced = v, true
	}
	return c
}

// ModelUsage aggregates calls to one LLM model.
type ModelUsage struct {
	Model        string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	CostUSD      float64
	Unpriced     int // successful calls without a known price
}

// SummarizeLLM groups calls by model, most calls first.
func SummarizeLLM(calls []LLMCall) []ModelUsage {
	byModel := make(map[string]*ModelUsage)
	for _, c := range calls {
		u, ok := byModel[c.Model]
		if !ok {
			u = &ModelUsage{Model: c.Model}
			byModel[c.Model] = u
		}
		u.Calls++
		if !c.Success {
			u.Failures++
		}
		u.InputTokens += c.InputTokens
		u.OutputTokens += c.OutputTokens
		if c.Priced {
			u.CostUSD += c.CostUSD
		} else if c.Success {
			u.Unpriced++
		}
	}
	out := make([]ModelUsage, 0, len(byModel))
	for _, u := range byModel {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Calls != out[j].Calls {
			return out[i].Calls > out[j].Calls
		}
		return out[i].Model < out[j].Model
	})
	return out
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func num(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	}
	return 0
}
