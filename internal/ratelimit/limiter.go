// Package ratelimit bounds how many generation calls start per window, optionally
// shared across processes through Redis.
package ratelimit

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("resume-generator/ratelimit")

// DefaultPoll is how long Wait sleeps after a denied attempt.
const DefaultPoll = 250 * time.Millisecond

// Window admits at most limit events per window.
type Window interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Limiter blocks callers until the window has room.
type Limiter struct {
	window Window
	key    string
	limit  int
	period time.Duration
	poll   time.Duration
}

// NewPerMinute builds a limiter admitting rpm calls per minute.
func NewPerMinute(w Window, key string, rpm int) (*Limiter, error) {
	if w == nil {
		return nil, errors.New("ratelimit: window is required")
	}
	if rpm <= 0 {
		return nil, errors.New("ratelimit: rpm must be positive")
	}
	return &Limiter{
		window: w,
		key:    key,
		limit:  rpm,
		period: time.Minute,
		poll:   DefaultPoll,
	}, nil
}

// Wait returns once the call is admitted or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "ratelimit.Wait")
	span.SetAttributes(
		attribute.String("ratelimit.key", l.key),
		attribute.Int("ratelimit.limit", l.limit),
	)
	defer span.End()

	denied := 0
	for {
		ok, err := l.window.Allow(ctx, l.key, l.limit, l.period)
		if err != nil {
			span.RecordError(err)
			return err
		}
		if ok {
			span.SetAttributes(attribute.Int("ratelimit.denied", denied))
			return nil
		}
		denied++
		timer := time.NewTimer(l.poll)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
