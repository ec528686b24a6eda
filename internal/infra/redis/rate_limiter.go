package redis

import (
	"context"
	"time"

	"aria-support-chat/internal/domain/ports/adapter"
)

var _ adapter.TurnLimiter = (*RateLimiter)(nil)

// RateLimiter is a fixed-window counter per session: at most limit turns
// in each window, counted from the first turn of the window.
type RateLimiter struct {
	client RedisClient
	limit  int
	window time.Duration
}

func NewRateLimiter(client RedisClient, limit int, window time.Duration) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{client: client, limit: limit, window: window}
}

func (r *RateLimiter) Allow(ctx context.Context, sessionID string) (bool, error) {
	key := TurnKey(sessionID)
	count, err := r.client.Incr(ctx, key)
	if err != nil {
		return false, err
	}

	if count == 1 {
		err = r.client.Expire(ctx, key, r.window)
		if err != nil {
			return false, err
		}
	}

	if count > int64(r.limit) {
		return false, nil
	}

	return true, nil
}

func TurnKey(sessionID string) string {
	return "chat_turns:" + sessionID
}
