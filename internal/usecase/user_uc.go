package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"mitra-support/internal/domain"
	"mitra-support/internal/domain/model"
	"mitra-support/internal/domain/ports/repository"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

type UserUseCase interface {
	// EnsureUser registers the resolved identity on first contact.
	EnsureUser(ctx context.Context, userID, displayName string) (*model.User, error)
	Get(ctx context.Context, userID string) (*model.User, error)
	// DeleteAccount removes the user and every derived record: sessions,
	// turns and the summary. Crisis events are retained for audit.
	DeleteAccount(ctx context.Context, userID string) error
}

type userUC struct {
	users     repository.UserRepository
	sessions  repository.SessionRepository
	summaries repository.UserSummaryRepository
	log       *zerolog.Logger
}

func NewUserUseCase(users repository.UserRepository, sessions repository.SessionRepository, summaries repository.UserSummaryRepository, log *zerolog.Logger) *userUC {
	return &userUC{users: users, sessions: sessions, summaries: summaries, log: log}
}

func (u *userUC) EnsureUser(ctx context.Context, userID, displayName string) (*model.User, error) {
	existing, err := u.users.FindByID(ctx, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	now := time.Now()
	usr := &model.User{ID: userID, DisplayName: displayName, RegisteredAt: now, LastActiveAt: now}
	if err := u.users.Save(ctx, usr); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	return usr, nil
}

func (u *userUC) Get(ctx context.Context, userID string) (*model.User, error) {
	return u.users.FindByID(ctx, userID)
}

func (u *userUC) DeleteAccount(ctx context.Context, userID string) error {
	if err := u.sessions.DeleteByUser(ctx, userID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete sessions: %w", err)
	}
	if err := u.summaries.DeleteByUser(ctx, userID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete summary: %w", err)
	}
	if err := u.users.Delete(ctx, userID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete user: %w", err)
	}
	u.log.Info().Str("user_id", userID).Msg("account deleted")
	return nil
}
