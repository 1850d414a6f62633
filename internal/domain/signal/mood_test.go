package signal

import "testing"

func TestScoreDefaultsToNeutral(t *testing.T) {
	s := NewScorer(DefaultLexicon())

	got := s.Score("talking about the weather")
	if got.Score != NeutralMood {
		t.Fatalf("score = %v, want %v", got.Score, NeutralMood)
	}
	if len(got.EmotionTags) != 0 {
		t.Fatalf("tags = %v, want empty", got.EmotionTags)
	}
}

func TestScoreSingleWord(t *testing.T) {
	s := NewScorer(DefaultLexicon())

	got := s.Score("I am so happy today")
	if got.Score != 8 {
		t.Fatalf("score = %v, want 8", got.Score)
	}
	if len(got.EmotionTags) != 1 || got.EmotionTags[0] != "happy" {
		t.Fatalf("tags = %v, want [happy]", got.EmotionTags)
	}
}

func TestScoreLastLexiconMatchWins(t *testing.T) {
	s := NewScorer(DefaultLexicon())

	// "sad" comes after "happy" in lexicon order, so it sets the score;
	// both words are still tagged.
	got := s.Score("happy this morning but sad tonight")
	if got.Score != 3 {
		t.Fatalf("score = %v, want 3 (sad)", got.Score)
	}
	if len(got.EmotionTags) != 2 {
		t.Fatalf("tags = %v, want both matches", got.EmotionTags)
	}
}

func TestScoreCaseInsensitive(t *testing.T) {
	s := NewScorer(DefaultLexicon())

	got := s.Score("feeling DEPRESSED")
	if got.Score != 2 {
		t.Fatalf("score = %v, want 2", got.Score)
	}
}
