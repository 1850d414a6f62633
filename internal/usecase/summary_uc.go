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
	"mitra-support/internal/domain/signal"
	"mitra-support/internal/infra/metrics"
)

// Compile-time check
var _ SummaryUseCase = (*summaryUC)(nil)

// SummaryUseCase is the merge engine folding session signal into the
// durable per-user summary. Callers must hold the per-user lock around
// either merge; neither call is idempotent under re-invocation with the
// same session (terminal merge double-counts), so termination drives it
// at most once.
type SummaryUseCase interface {
	// Ensure returns the user's summary, creating the default record on
	// first interaction.
	Ensure(ctx context.Context, userID string) (*model.UserSummary, error)
	// RealtimeMerge is the cheap per-message refresh: when a mood score is
	// present it recomputes average mood and trend over the recent session
	// window. It never touches TotalSessions or TopicPatterns.
	RealtimeMerge(ctx context.Context, userID string, moodScore *float64) error
	// TerminalMerge runs once per ended session: rolls the summary text
	// into recent context, upserts topic patterns, bumps the session count
	// and recomputes average mood and trend over the full history of
	// session-level scores. The session must already be ended; an active
	// session is rejected with ErrInvalidState.
	TerminalMerge(ctx context.Context, userID, summaryText string, topics []string, ended *model.Session) error
}

type summaryUC struct {
	summaries repository.UserSummaryRepository
	sessions  repository.SessionRepository
	window    int // recent-session window for the realtime basis
	log       *zerolog.Logger
}

func NewSummaryUseCase(summaries repository.UserSummaryRepository, sessions repository.SessionRepository, windowSessions int, log *zerolog.Logger) *summaryUC {
	if windowSessions <= 0 {
		windowSessions = 10
	}
	return &summaryUC{summaries: summaries, sessions: sessions, window: windowSessions, log: log}
}

func (s *summaryUC) Ensure(ctx context.Context, userID string) (*model.UserSummary, error) {
	sum, err := s.summaries.FindByUser(ctx, userID)
	if err == nil {
		return sum, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("load summary: %w", err)
	}
	sum = model.NewUserSummary(userID)
	if err := s.summaries.Upsert(ctx, sum); err != nil {
		return nil, fmt.Errorf("create summary: %w", err)
	}
	return sum, nil
}

func (s *summaryUC) RealtimeMerge(ctx context.Context, userID string, moodScore *float64) error {
	sum, err := s.Ensure(ctx, userID)
	if err != nil {
		return err
	}

	if moodScore != nil {
		scores, err := s.recentTurnScores(ctx, userID)
		if err != nil {
			return err
		}
		if len(scores) > 0 {
			avg := meanOf(scores)
			sum.Progress.AverageMoodScore = &avg
			sum.Progress.MoodTrend = signal.Trend(scores)
		}
	}

	sum.LastUpdated = time.Now()
	if err := s.summaries.Upsert(ctx, sum); err != nil {
		metrics.IncMerge("realtime", false)
		return fmt.Errorf("realtime merge upsert: %w", err)
	}
	metrics.IncMerge("realtime", true)
	return nil
}

func (s *summaryUC) TerminalMerge(ctx context.Context, userID, summaryText string, topics []string, ended *model.Session) error {
	if ended == nil || ended.State != model.SessionEnded {
		return fmt.Errorf("%w: terminal merge requires an ended session", domain.ErrInvalidState)
	}
	sum, err := s.Ensure(ctx, userID)
	if err != nil {
		return err
	}
	now := time.Now()

	sum.PushContext(summaryText)
	for _, topic := range topics {
		sum.UpsertTopic(topic, now)
	}
	sum.Progress.TotalSessions++

	// Full-history basis: session-level means, newest first. This is a
	// different statistic than the realtime window on purpose; see
	// DESIGN.md for the recorded decision.
	scores, err := s.sessionScores(ctx, userID)
	if err != nil {
		return err
	}
	if len(scores) > 0 {
		avg := meanOf(scores)
		sum.Progress.AverageMoodScore = &avg
		sum.Progress.MoodTrend = signal.Trend(scores)
	}

	sum.LastUpdated = now
	if err := s.summaries.Upsert(ctx, sum); err != nil {
		metrics.IncMerge("terminal", false)
		return fmt.Errorf("terminal merge upsert: %w", err)
	}
	metrics.IncMerge("terminal", true)
	return nil
}

// recentTurnScores collects user-turn mood scores from the last window
// sessions, newest first.
func (s *summaryUC) recentTurnScores(ctx context.Context, userID string) ([]float64, error) {
	recent, err := s.sessions.FindRecentByUser(ctx, userID, s.window)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("load recent sessions: %w", err)
	}
	var scores []float64
	for _, sess := range recent { // sessions arrive newest first
		turnScores := sess.UserTurnScores()
		for i := len(turnScores) - 1; i >= 0; i-- { // newest turn first
			scores = append(scores, turnScores[i])
		}
	}
	return scores, nil
}

// sessionScores collects session-level mood means over the full history,
// newest first.
func (s *summaryUC) sessionScores(ctx context.Context, userID string) ([]float64, error) {
	all, err := s.sessions.FindAllByUser(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	var scores []float64
	for _, sess := range all { // newest first
		if sess.MoodScore != nil {
			scores = append(scores, *sess.MoodScore)
		}
	}
	return scores, nil
}

func meanOf(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}
