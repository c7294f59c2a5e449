package llm

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

type rateLimitedProvider struct {
	inner   Provider
	limiter *rate.Limiter
}

// WithRateLimit allows at most perMinute requests a minute, in bursts of
// up to burst. perMinute <= 0 disables the limit.
func WithRateLimit(p Provider, perMinute, burst int) Provider {
	if perMinute <= 0 {
		return p
	}
	every := rate.Every(time.Minute / time.Duration(perMinute))
	return &rateLimitedProvider{inner: p, limiter: rate.NewLimiter(every, max(burst, 1))}
}

func (r *rateLimitedProvider) ModelID() string { return r.inner.ModelID() }

func (r *rateLimitedProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.Generate(ctx, req)
}
