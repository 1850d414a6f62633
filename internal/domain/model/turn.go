package model

import (
	"time"
)

type Author string

const (
	AuthorUser  Author = "user"
	AuthorAgent Author = "agent"
)

// Turn is one message exchange unit within a session. Turns are immutable
// once appended; crisis review depends on the audit trail staying intact.
type Turn struct {
	ID             string
	SessionID      string
	Author         Author
	Text           string
	Timestamp      time.Time
	MoodScore      *float64 // only set for user-authored turns
	EmotionTags    []string
	CrisisKeywords []string
	CrisisLevel    Severity // classifier output for this turn; none for agent turns
}
