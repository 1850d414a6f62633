package signal

import (
	"reflect"
	"testing"
)

func TestExtractTopics(t *testing.T) {
	lex := DefaultLexicon()

	got := ExtractTopics(lex, "Work stress is ruining my sleep and my family life")
	want := []string{"stress", "work", "family", "sleep"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("topics = %v, want %v (vocabulary order)", got, want)
	}
}

func TestExtractTopicsDeduplicates(t *testing.T) {
	lex := DefaultLexicon()

	got := ExtractTopics(lex, "work work work")
	if !reflect.DeepEqual(got, []string{"work"}) {
		t.Fatalf("topics = %v, want [work]", got)
	}
}

func TestExtractTopicsEmpty(t *testing.T) {
	lex := DefaultLexicon()

	if got := ExtractTopics(lex, "nothing relevant here"); len(got) != 0 {
		t.Fatalf("topics = %v, want none", got)
	}
}
