package ratelimit

import (
	"context"
	"sync"
	"time"
)

// LocalWindow is an in-process sliding window.
type LocalWindow struct {
	mu     sync.Mutex
	events map[string][]time.Time
	now    func() time.Time
}

// NewLocalWindow constructs a LocalWindow.
func NewLocalWindow() *LocalWindow {
	return &LocalWindow{events: make(map[string][]time.Time), now: time.Now}
}

// Allow records an event when fewer than limit happened in the last window.
func (w *LocalWindow) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	start := now.Add(-window)
	kept := w.events[key][:0]
	for _, at := range w.events[key] {
		if at.After(start) {
			kept = append(kept, at)
		}
	}
	if len(kept) >= limit {
		w.events[key] = kept
		return false, nil
	}
	w.events[key] = append(kept, now)
	return true, nil
}

var _ Window = (*LocalWindow)(nil)
