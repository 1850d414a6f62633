// Package signal holds the pure text-signal functions of the pipeline:
// crisis classification, mood scoring, topic extraction and trend
// estimation. Everything here is deterministic lexicon matching; no state,
// no I/O.
package signal

// MoodWord maps one emotion word to its numeric mood value on the 0-10
// scale. Iteration order matters: when several words match, the last match
// in lexicon order decides the score.
type MoodWord struct {
	Word  string
	Score float64
}

// Lexicon is the immutable keyword table injected into classifier and
// scorer at construction. No process-wide mutable dictionaries.
type Lexicon struct {
	CrisisKeywords []string
	highRisk       map[string]struct{}
	MoodWords      []MoodWord
	Topics         []string
}

// NewLexicon builds a lexicon from explicit tables. highRisk entries must be
// a subset of crisisKeywords for the severity ladder to behave.
func NewLexicon(crisisKeywords, highRisk []string, moodWords []MoodWord, topics []string) *Lexicon {
	hr := make(map[string]struct{}, len(highRisk))
	for _, k := range highRisk {
		hr[k] = struct{}{}
	}
	return &Lexicon{
		CrisisKeywords: crisisKeywords,
		highRisk:       hr,
		MoodWords:      moodWords,
		Topics:         topics,
	}
}

// IsHighRisk reports whether the keyword belongs to the explicit
// self-harm/suicide subset.
func (l *Lexicon) IsHighRisk(keyword string) bool {
	_, ok := l.highRisk[keyword]
	return ok
}

// DefaultLexicon returns the production English lexicon.
func DefaultLexicon() *Lexicon {
	return NewLexicon(
		[]string{
			"suicide", "kill myself", "end my life", "want to die",
			"self harm", "hurt myself", "cut myself", "overdose",
			"hopeless", "nothing matters", "better off dead",
		},
		[]string{"suicide", "kill myself", "end my life", "want to die"},
		[]MoodWord{
			{"happy", 8}, {"good", 7}, {"okay", 5}, {"sad", 3}, {"depressed", 2},
			{"anxious", 3}, {"worried", 4}, {"stressed", 3}, {"angry", 4}, {"frustrated", 4},
		},
		[]string{
			"anxiety", "stress", "depression", "work", "relationships",
			"family", "health", "sleep", "anger", "sadness", "fear",
			"loneliness", "worry", "panic", "tired", "overwhelmed",
		},
	)
}
