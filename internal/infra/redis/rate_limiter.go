package redis

import (
	"context"
	"time"

	"mitra-support/internal/domain"
	"mitra-support/internal/usecase"
)

var _ usecase.RateLimiter = (*MessageRateLimiter)(nil)

// MessageRateLimiter caps how many messages one user may send per window.
// Fixed-window counter: INCR + EXPIRE on first hit. Redis failures fail
// open; throttling is protective, not load-bearing.
type MessageRateLimiter struct {
	client *Client
	limit  int
	window time.Duration
}

func NewMessageRateLimiter(client *Client, perMinute int) *MessageRateLimiter {
	return &MessageRateLimiter{client: client, limit: perMinute, window: time.Minute}
}

func (r *MessageRateLimiter) Allow(ctx context.Context, userID string) error {
	if r.limit <= 0 {
		return nil
	}
	key := "rate_limit:messages:" + userID
	count, err := r.client.Incr(ctx, key)
	if err != nil {
		return nil
	}
	if count == 1 {
		_ = r.client.Expire(ctx, key, r.window)
	}
	if count > int64(r.limit) {
		return domain.ErrRateLimited
	}
	return nil
}
