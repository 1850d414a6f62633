package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"mitra-support/internal/domain"
	"mitra-support/internal/domain/model"
	"mitra-support/internal/domain/ports/repository"
	"mitra-support/internal/infra/metrics"
)

var _ repository.UserRepository = (*UserRepo)(nil)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Save(ctx context.Context, u *model.User) error {
	start := time.Now()
	const q = `
INSERT INTO users (id, display_name, registered_at, last_active_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (id) DO UPDATE SET
  display_name = EXCLUDED.display_name,
  last_active_at = EXCLUDED.last_active_at;`
	_, err := r.pool.Exec(ctx, q, u.ID, u.DisplayName, u.RegisteredAt, u.LastActiveAt)
	metrics.ObserveDBOp("users", "save", time.Since(start), err == nil)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	const q = `SELECT id, display_name, registered_at, last_active_at FROM users WHERE id=$1;`
	var u model.User
	err := r.pool.QueryRow(ctx, q, id).Scan(&u.ID, &u.DisplayName, &u.RegisteredAt, &u.LastActiveAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

func (r *UserRepo) TouchLastActive(ctx context.Context, id string, at time.Time) error {
	const q = `UPDATE users SET last_active_at=$2 WHERE id=$1;`
	tag, err := r.pool.Exec(ctx, q, id, at)
	if err != nil {
		return fmt.Errorf("touch user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM users WHERE id=$1;`
	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
