package llm

import (
	"context"
	"time"

	"resume-generator/internal/shared/telemetry"
)

const defaultRetryBaseDelay = 300 * time.Millisecond

type retryingClient struct {
	base      Client
	retries   int
	baseDelay time.Duration
}

// WithRetries wraps base so transient failures are retried up to retries times
// with exponential backoff starting at baseDelay. retries <= 0 returns base unchanged.
func WithRetries(base Client, retries int, baseDelay time.Duration) Client {
	if base == nil || retries <= 0 {
		return base
	}
	if baseDelay <= 0 {
		baseDelay = defaultRetryBaseDelay
	}
	return retryingClient{base: base, retries: retries, baseDelay: baseDelay}
}

func (r retryingClient) Complete(ctx context.Context, req Request) (Completion, error) {
	resp, err := r.base.Complete(ctx, req)
	for attempt := 1; attempt <= r.retries; attempt++ {
		if err == nil || !IsTransient(err) {
			return resp, err
		}
		telemetry.Warn("llm.retry", map[string]any{
			"attempt": attempt,
			"error":   err.Error(),
		})
		select {
		case <-time.After(backoff(r.baseDelay, attempt)):
		case <-ctx.Done():
			return Completion{}, ctx.Err()
		}
		resp, err = r.base.Complete(ctx, req)
	}
	return resp, err
}

// backoff returns the wait before retry attempt n (1-based): base, 2*base, 4*base...
func backoff(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return base << (attempt - 1)
}
