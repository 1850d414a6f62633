package signal

import "strings"

// NeutralMood is the default score when no lexicon word is present.
const NeutralMood = 5.0

// MoodReading is the scored emotional valence of one message.
type MoodReading struct {
	Score       float64 // 0-10
	EmotionTags []string
}

// Scorer derives a mood score from lexicon word matches.
type Scorer struct {
	lex *Lexicon
}

func NewScorer(lex *Lexicon) *Scorer {
	return &Scorer{lex: lex}
}

// Score looks each mood word up in the message. When several words match,
// the last match in lexicon order sets the score; this is a deliberate
// deterministic tie-break rather than an average, and all matched words are
// recorded as tags either way. Like Classify, this is a total function.
func (s *Scorer) Score(text string) MoodReading {
	lower := strings.ToLower(text)

	score := NeutralMood
	tags := []string{}
	for _, mw := range s.lex.MoodWords {
		if strings.Contains(lower, mw.Word) {
			score = mw.Score
			tags = append(tags, mw.Word)
		}
	}
	return MoodReading{Score: score, EmotionTags: tags}
}
