package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// New builds the provider named by cfg wrapped as
// caller -> timeout -> retry -> rate limit -> logging -> provider.
func New(ctx context.Context, cfg Config, log zerolog.Logger, events EventSink) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case Anthropic:
		base, err = NewAnthropicProvider(cfg)
	case OpenAI, OpenRouter:
		base, err = NewOpenAIProvider(cfg)
	case Gemini:
		base, err = NewGeminiProvider(ctx, cfg)
	case Mock:
		base = NewMockProvider()
	}
	if err != nil {
		return nil, fmt.Errorf("init %s provider: %w", cfg.Provider, err)
	}
	limited := WithRateLimit(WithLogging(base, log, events), cfg.RequestsPerMinute, cfg.Burst)
	return withTimeout(WithRetry(limited, cfg.Retry), cfg.Timeout), nil
}

type timeoutProvider struct {
	inner   Provider
	timeout time.Duration
}

// withTimeout bounds each Generate call, retries and waits included.
func withTimeout(p Provider, d time.Duration) Provider {
	if d <= 0 {
		return p
	}
	return &timeoutProvider{inner: p, timeout: d}
}

func (t *timeoutProvider) ModelID() string { return t.inner.ModelID() }

func (t *timeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Generate(ctx, req)
}
