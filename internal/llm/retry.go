package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// RetryProvider retries transient failures with exponential backoff and
// ±20% jitter. A schema violation is retried once; truncation and
// cancellation are never retried.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

func WithRetry(p Provider, cfg RetryConfig) Provider {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &RetryProvider{inner: p, config: cfg}
}

func (r *RetryProvider) ModelID() string { return r.inner.ModelID() }

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var (
		err          error
		firstInvalid = true
	)
	for attempt := 0; attempt < r.config.MaxAttempts; attempt++ {
		var resp *Response
		resp, err = r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		if !retryable(err, firstInvalid) || attempt == r.config.MaxAttempts-1 {
			return nil, err
		}
		var invalid *ErrInvalidResponse
		if errors.As(err, &invalid) {
			firstInvalid = false
		}

		t := time.NewTimer(r.wait(attempt, err))
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
	return nil, err
}

// wait honours a provider supplied Retry-After, otherwise backs off.
func (r *RetryProvider) wait(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}
	d := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	d = math.Min(d, float64(r.config.MaxWait))
	d += d * 0.2 * (2*rand.Float64() - 1)
	return time.Duration(math.Max(d, 0))
}
