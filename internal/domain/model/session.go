package model

import (
	"time"

	"mitra-support/internal/domain"
)

type SessionState string

const (
	SessionActive SessionState = "active"
	SessionEnded  SessionState = "ended"
)

// Session is the aggregate root for one bounded conversation. Turns are
// append-only and chronological; the state machine allows exactly one
// transition, active -> ended.
type Session struct {
	ID          string
	UserID      string
	State       SessionState
	Turns       []Turn
	MoodScore   *float64 // mean of user-turn mood scores, recomputed per append
	CrisisLevel Severity // max severity observed across turns, never decreases
	Topics      []string // assigned at termination only
	Summary     string   // assigned at termination only
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewSession(id, userID string) *Session {
	now := time.Now()
	return &Session{
		ID:          id,
		UserID:      userID,
		State:       SessionActive,
		Turns:       make([]Turn, 0, 8),
		CrisisLevel: SeverityNone,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Append adds a turn and recomputes the session aggregates. It fails without
// side effects when the session has already ended.
func (s *Session) Append(t Turn) error {
	if s.State != SessionActive {
		return domain.ErrInvalidState
	}
	t.SessionID = s.ID
	s.Turns = append(s.Turns, t)
	s.recomputeMood()
	// crisis level is a max-reduction; it only escalates
	s.CrisisLevel = MaxSeverity(s.CrisisLevel, t.CrisisLevel)
	s.UpdatedAt = time.Now()
	return nil
}

// Terminate marks the session ended. Topics and summary are assigned by the
// caller once extraction and summarization have run.
func (s *Session) Terminate(summary string, topics []string) error {
	if s.State != SessionActive {
		return domain.ErrInvalidState
	}
	s.State = SessionEnded
	s.Summary = summary
	s.Topics = topics
	s.UpdatedAt = time.Now()
	return nil
}

// UserTurnScores returns mood scores of user-authored turns in append order.
func (s *Session) UserTurnScores() []float64 {
	out := make([]float64, 0, len(s.Turns))
	for _, t := range s.Turns {
		if t.Author == AuthorUser && t.MoodScore != nil {
			out = append(out, *t.MoodScore)
		}
	}
	return out
}

// UserText concatenates all user-authored turn text in order.
func (s *Session) UserText() string {
	var b []byte
	for _, t := range s.Turns {
		if t.Author != AuthorUser {
			continue
		}
		if len(b) > 0 {
			b = append(b, ' ')
		}
		b = append(b, t.Text...)
	}
	return string(b)
}

// recomputeMood rebuilds the session mean from scratch. O(turns), fine for
// bounded session lengths.
func (s *Session) recomputeMood() {
	scores := s.UserTurnScores()
	if len(scores) == 0 {
		return
	}
	sum := 0.0
	for _, v := range scores {
		sum += v
	}
	mean := sum / float64(len(scores))
	s.MoodScore = &mean
}
