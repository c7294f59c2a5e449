package llm

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// EventSink records analytics events.
type EventSink interface {
	Record(name string, payload map[string]any)
}

type loggingProvider struct {
	inner  Provider
	log    zerolog.Logger
	events EventSink
}

// WithLogging logs every request to log and, if events is non-nil,
// records an llm_request event with token usage and estimated cost.
func WithLogging(p Provider, log zerolog.Logger, events EventSink) Provider {
	return &loggingProvider{inner: p, log: log, events: events}
}

func (l *loggingProvider) ModelID() string { return l.inner.ModelID() }

func (l *loggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)
	elapsed := time.Since(start)

	model := l.inner.ModelID()
	payload := map[string]any{
		"purpose":    req.Purpose,
		"llm_model":  model,
		"latency_ms": elapsed.Milliseconds(),
		"success":    err == nil,
	}
	ev := l.log.Debug()
	if err != nil {
		failure := Classify(err).String()
		ev = l.log.Warn().Err(err).Str("failure", failure)
		payload["error"] = err.Error()
		payload["failure"] = failure
	}
	if resp != nil {
		if resp.Model != "" {
			model = resp.Model
			payload["llm_model"] = model
		}
		payload["input_tokens"] = resp.Usage.InputTokens
		payload["output_tokens"] = resp.Usage.OutputTokens
		if c := LookupCost(model); c != nil {
			payload["cost_usd"] = c.Cost(resp.Usage.InputTokens, resp.Usage.OutputTokens)
		}
		ev = ev.Int("input_tokens", resp.Usage.InputTokens).Int("output_tokens", resp.Usage.OutputTokens)
	}
	ev.Str("purpose", req.Purpose).Str("model", model).Dur("latency", elapsed).Msg("llm request")

	if l.events != nil {
		l.events.Record("llm_request", payload)
	}
	return resp, err
}
