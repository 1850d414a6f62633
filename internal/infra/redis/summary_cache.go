package redis

import (
	"context"
	"encoding/json"
	"time"

	"mitra-support/internal/domain/model"
)

// SummaryCache is a best-effort read-through cache in front of the
// user-summary table. The repository treats every error here as a miss.
type SummaryCache struct {
	client *Client
	ttl    time.Duration
}

func NewSummaryCache(client *Client, ttl time.Duration) *SummaryCache {
	return &SummaryCache{client: client, ttl: ttl}
}

func summaryKey(userID string) string { return "user_summary:" + userID }

func (c *SummaryCache) Store(ctx context.Context, summary *model.UserSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, summaryKey(summary.UserID), data, c.ttl)
}

func (c *SummaryCache) Get(ctx context.Context, userID string) (*model.UserSummary, error) {
	data, err := c.client.Get(ctx, summaryKey(userID))
	if err != nil {
		return nil, err
	}
	var summary model.UserSummary
	if err := json.Unmarshal([]byte(data), &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *SummaryCache) Invalidate(ctx context.Context, userID string) error {
	return c.client.Del(ctx, summaryKey(userID))
}
