package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"mitra-support/internal/domain"
	"mitra-support/internal/domain/model"
	"mitra-support/internal/domain/ports/repository"
	"mitra-support/internal/infra/metrics"
	"mitra-support/internal/infra/redis"
)

var _ repository.UserSummaryRepository = (*UserSummaryRepo)(nil)

// UserSummaryRepo stores the per-user profile. The upsert is one
// INSERT ... ON CONFLICT statement, so a merge never half-applies; callers
// hold the per-user lock on top of that to keep read-modify-write cycles
// from interleaving. The Redis cache is read-through and best-effort.
type UserSummaryRepo struct {
	pool  *pgxpool.Pool
	cache *redis.SummaryCache
}

func NewUserSummaryRepo(pool *pgxpool.Pool, cache *redis.SummaryCache) *UserSummaryRepo {
	return &UserSummaryRepo{pool: pool, cache: cache}
}

func (r *UserSummaryRepo) Upsert(ctx context.Context, sum *model.UserSummary) error {
	start := time.Now()
	patterns, err := json.Marshal(sum.TopicPatterns)
	if err != nil {
		return fmt.Errorf("marshal topic patterns: %w", err)
	}
	const q = `
INSERT INTO user_summaries
  (user_id, recent_context, topic_patterns, total_sessions, average_mood_score, mood_trend, engagement_level, last_updated)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (user_id) DO UPDATE SET
  recent_context = EXCLUDED.recent_context,
  topic_patterns = EXCLUDED.topic_patterns,
  total_sessions = EXCLUDED.total_sessions,
  average_mood_score = EXCLUDED.average_mood_score,
  mood_trend = EXCLUDED.mood_trend,
  engagement_level = EXCLUDED.engagement_level,
  last_updated = EXCLUDED.last_updated;`
	_, err = r.pool.Exec(ctx, q,
		sum.UserID, sum.RecentContext, patterns,
		sum.Progress.TotalSessions, sum.Progress.AverageMoodScore,
		string(sum.Progress.MoodTrend), sum.Progress.EngagementLevel, sum.LastUpdated)
	metrics.ObserveDBOp("user_summaries", "upsert", time.Since(start), err == nil)
	if err != nil {
		return fmt.Errorf("upsert summary: %w", err)
	}
	if r.cache != nil {
		_ = r.cache.Store(ctx, sum)
	}
	return nil
}

func (r *UserSummaryRepo) FindByUser(ctx context.Context, userID string) (*model.UserSummary, error) {
	if r.cache != nil {
		if sum, err := r.cache.Get(ctx, userID); err == nil {
			return sum, nil
		}
	}

	const q = `
SELECT user_id, recent_context, topic_patterns, total_sessions, average_mood_score, mood_trend, engagement_level, last_updated
  FROM user_summaries WHERE user_id=$1;`
	var sum model.UserSummary
	var patterns []byte
	var trend string
	err := r.pool.QueryRow(ctx, q, userID).Scan(
		&sum.UserID, &sum.RecentContext, &patterns,
		&sum.Progress.TotalSessions, &sum.Progress.AverageMoodScore,
		&trend, &sum.Progress.EngagementLevel, &sum.LastUpdated)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan summary: %w", err)
	}
	sum.Progress.MoodTrend = model.MoodTrend(trend)
	if err := json.Unmarshal(patterns, &sum.TopicPatterns); err != nil {
		return nil, fmt.Errorf("unmarshal topic patterns: %w", err)
	}
	if sum.RecentContext == nil {
		sum.RecentContext = []string{}
	}

	if r.cache != nil {
		_ = r.cache.Store(ctx, &sum)
	}
	return &sum, nil
}

func (r *UserSummaryRepo) DeleteByUser(ctx context.Context, userID string) error {
	start := time.Now()
	const q = `DELETE FROM user_summaries WHERE user_id=$1;`
	_, err := r.pool.Exec(ctx, q, userID)
	metrics.ObserveDBOp("user_summaries", "delete", time.Since(start), err == nil)
	if err != nil {
		return fmt.Errorf("delete summary: %w", err)
	}
	if r.cache != nil {
		_ = r.cache.Invalidate(ctx, userID)
	}
	return nil
}
