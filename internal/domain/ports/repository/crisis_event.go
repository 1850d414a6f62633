package repository

import (
	"context"

	"mitra-support/internal/domain/model"
)

// CrisisEventRepository is append-only storage for crisis audit records.
// Events are never updated after insert except the resolved flag.
type CrisisEventRepository interface {
	Save(ctx context.Context, event *model.CrisisEvent) error
	FindByID(ctx context.Context, id string) (*model.CrisisEvent, error)
	FindByUser(ctx context.Context, userID string, limit int) ([]*model.CrisisEvent, error)
	FindUnresolved(ctx context.Context, limit int) ([]*model.CrisisEvent, error)
	MarkResolved(ctx context.Context, id string) error
}
