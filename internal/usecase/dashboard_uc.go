package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"mitra-support/internal/domain"
	"mitra-support/internal/domain/model"
	"mitra-support/internal/domain/ports/repository"
)

// Compile-time check
var _ DashboardUseCase = (*dashboardUC)(nil)

const (
	dashboardSessionLimit = 10
	moodSeriesDays        = 7
	topTopicsLimit        = 5
)

// MoodPoint is one calendar day in the trailing mood series. Mood is nil on
// days without data.
type MoodPoint struct {
	Date string   `json:"date"` // YYYY-MM-DD
	Mood *float64 `json:"mood"`
}

type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

type SessionDigest struct {
	SessionID string    `json:"session_id"`
	Summary   string    `json:"summary"`
	Topics    []string  `json:"topics"`
	MoodScore *float64  `json:"mood_score,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Analytics struct {
	AverageMood   *float64        `json:"average_mood"`
	TotalSessions int             `json:"total_sessions"`
	TopTopics     []TopicCount    `json:"top_topics"`
	MoodTrend     model.MoodTrend `json:"mood_trend"`
}

// DashboardSnapshot is the read-only projection for external presentation.
// It consumes the pipeline's outputs but is not part of the classification
// core.
type DashboardSnapshot struct {
	Summary        *model.UserSummary
	RecentSessions []SessionDigest
	MoodHistory    []MoodPoint
	Analytics      Analytics
}

type DashboardUseCase interface {
	Snapshot(ctx context.Context, userID string) (*DashboardSnapshot, error)
}

type dashboardUC struct {
	sessions  repository.SessionRepository
	summaries SummaryUseCase
	log       *zerolog.Logger
}

func NewDashboardUseCase(sessions repository.SessionRepository, summaries SummaryUseCase, log *zerolog.Logger) *dashboardUC {
	return &dashboardUC{sessions: sessions, summaries: summaries, log: log}
}

func (d *dashboardUC) Snapshot(ctx context.Context, userID string) (*DashboardSnapshot, error) {
	sum, err := d.summaries.Ensure(ctx, userID)
	if err != nil {
		return nil, err
	}

	recent, err := d.sessions.FindRecentByUser(ctx, userID, dashboardSessionLimit)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("load recent sessions: %w", err)
	}

	type moodSample struct {
		score float64
		at    time.Time
		tags  []string
	}
	var samples []moodSample
	topicFreq := map[string]int{}

	for _, sess := range recent {
		for _, t := range sess.Turns {
			if t.Author == model.AuthorUser && t.MoodScore != nil {
				samples = append(samples, moodSample{score: *t.MoodScore, at: t.Timestamp, tags: t.EmotionTags})
			}
		}
		if sess.MoodScore != nil {
			samples = append(samples, moodSample{score: *sess.MoodScore, at: sess.CreatedAt})
		}
		for _, topic := range sess.Topics {
			topicFreq[topic]++
		}
	}
	for _, sm := range samples {
		for _, tag := range sm.tags {
			topicFreq[tag]++
		}
	}

	// trailing 7-day series, one point per calendar day, oldest first
	series := make([]MoodPoint, moodSeriesDays)
	today := time.Now()
	for i := 0; i < moodSeriesDays; i++ {
		day := today.AddDate(0, 0, -(moodSeriesDays - 1 - i))
		series[i] = MoodPoint{Date: day.Format("2006-01-02")}
	}
	for _, sm := range samples {
		key := sm.at.Format("2006-01-02")
		for i := range series {
			if series[i].Date == key {
				v := sm.score
				series[i].Mood = &v
			}
		}
	}

	var avg *float64
	if len(samples) > 0 {
		total := 0.0
		for _, sm := range samples {
			total += sm.score
		}
		v := total / float64(len(samples))
		avg = &v
	}

	topics := make([]TopicCount, 0, len(topicFreq))
	for topic, count := range topicFreq {
		topics = append(topics, TopicCount{Topic: topic, Count: count})
	}
	sort.Slice(topics, func(i, j int) bool {
		if topics[i].Count != topics[j].Count {
			return topics[i].Count > topics[j].Count
		}
		return topics[i].Topic < topics[j].Topic
	})
	if len(topics) > topTopicsLimit {
		topics = topics[:topTopicsLimit]
	}

	digests := make([]SessionDigest, 0, len(recent))
	for _, sess := range recent {
		summary := sess.Summary
		if summary == "" {
			summary = "Chat session"
		}
		digests = append(digests, SessionDigest{
			SessionID: sess.ID,
			Summary:   summary,
			Topics:    sess.Topics,
			MoodScore: sess.MoodScore,
			CreatedAt: sess.CreatedAt,
		})
	}

	return &DashboardSnapshot{
		Summary:        sum,
		RecentSessions: digests,
		MoodHistory:    series,
		Analytics: Analytics{
			AverageMood:   avg,
			TotalSessions: sum.Progress.TotalSessions,
			TopTopics:     topics,
			MoodTrend:     sum.Progress.MoodTrend,
		},
	}, nil
}
