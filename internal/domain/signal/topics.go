package signal

import "strings"

// ExtractTopics scans text against the fixed topic vocabulary and returns
// every topic present, deduplicated, in vocabulary order. Matching is
// case-insensitive substring containment, same as the classifier.
func ExtractTopics(lex *Lexicon, text string) []string {
	lower := strings.ToLower(text)
	out := []string{}
	for _, topic := range lex.Topics {
		if strings.Contains(lower, topic) {
			out = append(out, topic)
		}
	}
	return out
}
