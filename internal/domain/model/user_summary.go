package model

import "time"

// MoodTrend classifies the direction of a user's mood over time.
type MoodTrend string

const (
	TrendImproving MoodTrend = "improving"
	TrendStable    MoodTrend = "stable"
	TrendDeclining MoodTrend = "declining"
)

// RecentContextCap bounds how many session summaries the rolling context
// keeps (oldest dropped first).
const RecentContextCap = 3

// TopicPattern tracks one recurring conversation topic. Frequency only ever
// grows; a later mention increments it and refreshes LastMentioned.
type TopicPattern struct {
	Pattern       string    `json:"pattern"`
	Frequency     int       `json:"frequency"`
	LastMentioned time.Time `json:"last_mentioned"`
}

type ProgressMetrics struct {
	TotalSessions    int       `json:"total_sessions"`
	AverageMoodScore *float64  `json:"average_mood_score,omitempty"`
	MoodTrend        MoodTrend `json:"mood_trend"`
	EngagementLevel  int       `json:"engagement_level"`
}

// UserSummary is the durable longitudinal profile, exactly one per user,
// created lazily on first interaction and mutated by both merge modes.
type UserSummary struct {
	UserID        string
	RecentContext []string // last RecentContextCap session summaries, oldest first
	TopicPatterns []TopicPattern
	Progress      ProgressMetrics
	LastUpdated   time.Time
}

func NewUserSummary(userID string) *UserSummary {
	return &UserSummary{
		UserID:        userID,
		RecentContext: []string{},
		TopicPatterns: []TopicPattern{},
		Progress: ProgressMetrics{
			TotalSessions: 0,
			MoodTrend:     TrendStable,
		},
		LastUpdated: time.Now(),
	}
}

// PushContext appends a session summary, evicting the oldest entry once the
// ring is full.
func (u *UserSummary) PushContext(summary string) {
	u.RecentContext = append(u.RecentContext, summary)
	if n := len(u.RecentContext); n > RecentContextCap {
		u.RecentContext = u.RecentContext[n-RecentContextCap:]
	}
}

// ContextText joins the retained summaries into the single field handed to
// the reply generator as conversation context.
func (u *UserSummary) ContextText() string {
	out := ""
	for i, s := range u.RecentContext {
		if i > 0 {
			out += " | "
		}
		out += s
	}
	return out
}

// UpsertTopic increments an existing pattern whose text contains the topic,
// or inserts a new one with frequency 1. A topic key is added at most once.
func (u *UserSummary) UpsertTopic(topic string, now time.Time) {
	for i := range u.TopicPatterns {
		if containsFold(u.TopicPatterns[i].Pattern, topic) {
			u.TopicPatterns[i].Frequency++
			u.TopicPatterns[i].LastMentioned = now
			return
		}
	}
	u.TopicPatterns = append(u.TopicPatterns, TopicPattern{
		Pattern:       "User frequently discusses " + topic,
		Frequency:     1,
		LastMentioned: now,
	})
}
