package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RedisWindow is a sliding window kept in a Redis sorted set, so every process
// pointed at the same key shares one budget.
type RedisWindow struct {
	rdb redis.Cmdable
	now func() time.Time
}

// NewRedisWindow wraps an existing client.
func NewRedisWindow(rdb redis.Cmdable) *RedisWindow {
	return &RedisWindow{rdb: rdb, now: time.Now}
}

// Dial connects to addr and verifies the connection.
func Dial(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return rdb, nil
}

// Allow trims the set to the window, then records the event if there is room.
func (w *RedisWindow) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	span := trace.SpanFromContext(ctx)

	now := w.now().UnixMilli()
	windowStart := now - window.Milliseconds()

	pipe := w.rdb.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
	countCmd := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("ratelimit window: %w", err)
	}

	count := countCmd.Val()
	span.SetAttributes(attribute.Int64("ratelimit.current_count", count))
	if count >= int64(limit) {
		return false, nil
	}

	pipe = w.rdb.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now),
		Member: fmt.Sprintf("%d-%s", now, uuid.NewString()),
	})
	pipe.Expire(ctx, key, window*2)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("ratelimit record: %w", err)
	}
	return true, nil
}

// Key builds the shared key for a model.
func Key(model string) string {
	return "ratelimit:resumegen:" + model
}

var _ Window = (*RedisWindow)(nil)
