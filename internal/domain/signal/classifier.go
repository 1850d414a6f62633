package signal

import (
	"strings"

	"mitra-support/internal/domain/model"
)

// Classification is the outcome of running one message through the crisis
// keyword ladder.
type Classification struct {
	Level           model.Severity
	MatchedKeywords []string
}

// Classifier assigns crisis severity by case-insensitive substring matching
// against the injected lexicon. Classify is total: every input maps to
// exactly one level and there is no error path.
type Classifier struct {
	lex *Lexicon
}

func NewClassifier(lex *Lexicon) *Classifier {
	return &Classifier{lex: lex}
}

// Classify scans text for crisis keywords and applies the severity ladder:
// any high-risk match wins high; otherwise two or more matches mean medium,
// one means low, none means none. The critical level is never produced here;
// it belongs to the external escalation workflow.
func (c *Classifier) Classify(text string) Classification {
	lower := strings.ToLower(text)

	var matched []string
	for _, kw := range c.lex.CrisisKeywords {
		if strings.Contains(lower, kw) {
			matched = append(matched, kw)
		}
	}
	if len(matched) == 0 {
		return Classification{Level: model.SeverityNone, MatchedKeywords: []string{}}
	}

	for _, kw := range matched {
		if c.lex.IsHighRisk(kw) {
			return Classification{Level: model.SeverityHigh, MatchedKeywords: matched}
		}
	}
	if len(matched) >= 2 {
		return Classification{Level: model.SeverityMedium, MatchedKeywords: matched}
	}
	return Classification{Level: model.SeverityLow, MatchedKeywords: matched}
}
