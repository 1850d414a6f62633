package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"mitra-support/internal/domain"
	"mitra-support/internal/domain/model"
	"mitra-support/internal/domain/ports/repository"
	"mitra-support/internal/infra/metrics"
)

var _ repository.CrisisEventRepository = (*CrisisEventRepo)(nil)

// CrisisEventRepo is append-only: plain INSERT, no upsert, and the only
// update statement flips the resolved flag.
type CrisisEventRepo struct {
	pool *pgxpool.Pool
}

func NewCrisisEventRepo(pool *pgxpool.Pool) *CrisisEventRepo {
	return &CrisisEventRepo{pool: pool}
}

func (r *CrisisEventRepo) Save(ctx context.Context, ev *model.CrisisEvent) error {
	start := time.Now()
	const q = `
INSERT INTO crisis_events (id, user_id, severity, matched_keywords, trigger_text, ts, resolved)
VALUES ($1,$2,$3,$4,$5,$6,false);`
	_, err := r.pool.Exec(ctx, q,
		ev.ID, ev.UserID, string(ev.Severity), ev.MatchedKeywords, ev.TriggerText, ev.Timestamp)
	metrics.ObserveDBOp("crisis_events", "save", time.Since(start), err == nil)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("save crisis event: %w", err)
	}
	return nil
}

func (r *CrisisEventRepo) FindByID(ctx context.Context, id string) (*model.CrisisEvent, error) {
	const q = `
SELECT id, user_id, severity, matched_keywords, trigger_text, ts, resolved, resolved_at
  FROM crisis_events WHERE id=$1;`
	return scanEvent(r.pool.QueryRow(ctx, q, id))
}

func (r *CrisisEventRepo) FindByUser(ctx context.Context, userID string, limit int) ([]*model.CrisisEvent, error) {
	const q = `
SELECT id, user_id, severity, matched_keywords, trigger_text, ts, resolved, resolved_at
  FROM crisis_events WHERE user_id=$1 ORDER BY ts DESC LIMIT $2;`
	return r.queryEvents(ctx, q, userID, limit)
}

func (r *CrisisEventRepo) FindUnresolved(ctx context.Context, limit int) ([]*model.CrisisEvent, error) {
	const q = `
SELECT id, user_id, severity, matched_keywords, trigger_text, ts, resolved, resolved_at
  FROM crisis_events WHERE NOT resolved ORDER BY ts DESC LIMIT $1;`
	return r.queryEvents(ctx, q, limit)
}

func (r *CrisisEventRepo) MarkResolved(ctx context.Context, id string) error {
	start := time.Now()
	const q = `UPDATE crisis_events SET resolved=true, resolved_at=NOW() WHERE id=$1;`
	tag, err := r.pool.Exec(ctx, q, id)
	metrics.ObserveDBOp("crisis_events", "resolve", time.Since(start), err == nil)
	if err != nil {
		return fmt.Errorf("resolve crisis event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CrisisEventRepo) queryEvents(ctx context.Context, q string, args ...interface{}) ([]*model.CrisisEvent, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query crisis events: %w", err)
	}
	defer rows.Close()
	var out []*model.CrisisEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func scanEvent(row pgx.Row) (*model.CrisisEvent, error) {
	var ev model.CrisisEvent
	var severity string
	if err := row.Scan(&ev.ID, &ev.UserID, &severity, &ev.MatchedKeywords,
		&ev.TriggerText, &ev.Timestamp, &ev.Resolved, &ev.ResolvedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan crisis event: %w", err)
	}
	ev.Severity = model.Severity(severity)
	return &ev, nil
}
