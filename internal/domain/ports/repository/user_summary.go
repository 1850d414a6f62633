package repository

import (
	"context"

	"mitra-support/internal/domain/model"
)

// UserSummaryRepository stores the one-per-user longitudinal profile.
// Upsert must be atomic at the statement level; callers additionally hold
// the per-user lock so concurrent merges cannot drop each other's writes.
type UserSummaryRepository interface {
	Upsert(ctx context.Context, summary *model.UserSummary) error
	FindByUser(ctx context.Context, userID string) (*model.UserSummary, error)
	DeleteByUser(ctx context.Context, userID string) error
}
