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

var _ repository.SessionRepository = (*SessionRepo)(nil)

// SessionRepo persists sessions and their append-only turn log. Turns are
// only ever inserted; there is no update or delete path for them short of
// account removal.
type SessionRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

func (r *SessionRepo) Save(ctx context.Context, s *model.Session) error {
	start := time.Now()
	const q = `
INSERT INTO sessions (id, user_id, state, mood_score, crisis_level, topics, summary, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO UPDATE SET
  state = EXCLUDED.state,
  mood_score = EXCLUDED.mood_score,
  crisis_level = EXCLUDED.crisis_level,
  topics = EXCLUDED.topics,
  summary = EXCLUDED.summary,
  updated_at = EXCLUDED.updated_at;`
	_, err := r.pool.Exec(ctx, q,
		s.ID, s.UserID, string(s.State), s.MoodScore, string(s.CrisisLevel),
		s.Topics, s.Summary, s.CreatedAt, s.UpdatedAt)
	metrics.ObserveDBOp("sessions", "save", time.Since(start), err == nil)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *SessionRepo) AppendTurn(ctx context.Context, t *model.Turn) error {
	start := time.Now()
	const q = `
INSERT INTO turns (id, session_id, author, text, ts, mood_score, emotion_tags, crisis_keywords, crisis_level)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9);`
	_, err := r.pool.Exec(ctx, q,
		t.ID, t.SessionID, string(t.Author), t.Text, t.Timestamp,
		t.MoodScore, t.EmotionTags, t.CrisisKeywords, string(t.CrisisLevel))
	metrics.ObserveDBOp("sessions", "append_turn", time.Since(start), err == nil)
	if err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

func (r *SessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	const qs = `
SELECT id, user_id, state, mood_score, crisis_level, topics, summary, created_at, updated_at
  FROM sessions WHERE id=$1;`
	row := r.pool.QueryRow(ctx, qs, id)
	s, err := scanSession(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	if err := r.loadTurns(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SessionRepo) FindActiveByUser(ctx context.Context, userID string) (*model.Session, error) {
	const q = `
SELECT id FROM sessions
 WHERE user_id=$1 AND state='active'
 ORDER BY created_at DESC LIMIT 1;`
	var id string
	if err := r.pool.QueryRow(ctx, q, userID).Scan(&id); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find active session: %w", err)
	}
	return r.FindByID(ctx, id)
}

func (r *SessionRepo) FindRecentByUser(ctx context.Context, userID string, limit int) ([]*model.Session, error) {
	const q = `
SELECT id FROM sessions WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2;`
	return r.findByIDs(ctx, q, userID, limit)
}

func (r *SessionRepo) FindAllByUser(ctx context.Context, userID string) ([]*model.Session, error) {
	const q = `
SELECT id FROM sessions WHERE user_id=$1 ORDER BY created_at DESC;`
	return r.findByIDs(ctx, q, userID)
}

func (r *SessionRepo) DeleteByUser(ctx context.Context, userID string) error {
	start := time.Now()
	const qt = `DELETE FROM turns WHERE session_id IN (SELECT id FROM sessions WHERE user_id=$1);`
	const qs = `DELETE FROM sessions WHERE user_id=$1;`
	if _, err := r.pool.Exec(ctx, qt, userID); err != nil {
		metrics.ObserveDBOp("sessions", "delete_by_user", time.Since(start), false)
		return fmt.Errorf("delete turns: %w", err)
	}
	_, err := r.pool.Exec(ctx, qs, userID)
	metrics.ObserveDBOp("sessions", "delete_by_user", time.Since(start), err == nil)
	if err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	return nil
}

func (r *SessionRepo) findByIDs(ctx context.Context, q string, args ...interface{}) ([]*model.Session, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out := make([]*model.Session, 0, len(ids))
	for _, id := range ids {
		s, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *SessionRepo) loadTurns(ctx context.Context, s *model.Session) error {
	const qm = `
SELECT id, author, text, ts, mood_score, emotion_tags, crisis_keywords, crisis_level
  FROM turns WHERE session_id=$1 ORDER BY ts ASC;`
	rows, err := r.pool.Query(ctx, qm, s.ID)
	if err != nil {
		return fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var t model.Turn
		var author, level string
		if err := rows.Scan(&t.ID, &author, &t.Text, &t.Timestamp,
			&t.MoodScore, &t.EmotionTags, &t.CrisisKeywords, &level); err != nil {
			return fmt.Errorf("scan turn: %w", err)
		}
		t.SessionID = s.ID
		t.Author = model.Author(author)
		t.CrisisLevel = model.Severity(level)
		s.Turns = append(s.Turns, t)
	}
	return rows.Err()
}

func scanSession(row pgx.Row) (*model.Session, error) {
	var s model.Session
	var state, level string
	if err := row.Scan(&s.ID, &s.UserID, &state, &s.MoodScore, &level,
		&s.Topics, &s.Summary, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.State = model.SessionState(state)
	s.CrisisLevel = model.Severity(level)
	return &s, nil
}
