package model

import "time"

// Severity is the discrete risk level assigned to a message.
type Severity string

const (
	SeverityNone   Severity = "none"
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
	// SeverityCritical is never produced by keyword classification; it is
	// reserved for an external escalation workflow (e.g. repeated high
	// events) and only ever read back from storage.
	SeverityCritical Severity = "critical"
)

var severityRank = map[Severity]int{
	SeverityNone:     0,
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// Rank returns the ordering position of s; unknown values rank as none.
func (s Severity) Rank() int { return severityRank[s] }

// MaxSeverity returns the higher-ranked of a and b.
func MaxSeverity(a, b Severity) Severity {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// CrisisEvent is the append-only audit record written once per message that
// classified above none. Only Resolved is ever mutated, by the review
// workflow.
type CrisisEvent struct {
	ID              string
	UserID          string
	Severity        Severity
	MatchedKeywords []string
	TriggerText     string
	Timestamp       time.Time
	Resolved        bool
	ResolvedAt      *time.Time
}
