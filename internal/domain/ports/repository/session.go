package repository

import (
	"context"

	"mitra-support/internal/domain/model"
)

// SessionRepository persists sessions and their append-only turn log.
type SessionRepository interface {
	Save(ctx context.Context, session *model.Session) error
	// AppendTurn writes a single turn; a failure here surfaces to the
	// caller because a lost turn corrupts the audit trail.
	AppendTurn(ctx context.Context, turn *model.Turn) error
	FindByID(ctx context.Context, id string) (*model.Session, error)
	FindActiveByUser(ctx context.Context, userID string) (*model.Session, error)
	// FindRecentByUser returns up to limit sessions, newest first.
	FindRecentByUser(ctx context.Context, userID string, limit int) ([]*model.Session, error)
	FindAllByUser(ctx context.Context, userID string) ([]*model.Session, error)
	DeleteByUser(ctx context.Context, userID string) error
}
