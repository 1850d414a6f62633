package model

import (
	"errors"
	"testing"
	"time"

	"mitra-support/internal/domain"
)

func userTurn(text string, mood float64, level Severity) Turn {
	return Turn{
		ID:          "t-" + text,
		Author:      AuthorUser,
		Text:        text,
		Timestamp:   time.Now(),
		MoodScore:   &mood,
		CrisisLevel: level,
	}
}

func TestSessionAppendRecomputesMood(t *testing.T) {
	s := NewSession("s1", "u1")

	if err := s.Append(userTurn("feeling happy", 8, SeverityNone)); err != nil {
		t.Fatal(err)
	}
	if s.MoodScore == nil || *s.MoodScore != 8 {
		t.Fatalf("mood after first turn = %v, want 8", s.MoodScore)
	}

	if err := s.Append(userTurn("now sad", 3, SeverityNone)); err != nil {
		t.Fatal(err)
	}
	if *s.MoodScore != 5.5 {
		t.Fatalf("mood after second turn = %v, want 5.5", *s.MoodScore)
	}

	// agent turns carry no mood and must not move the mean
	if err := s.Append(Turn{ID: "a1", Author: AuthorAgent, Text: "reply"}); err != nil {
		t.Fatal(err)
	}
	if *s.MoodScore != 5.5 {
		t.Fatalf("mood after agent turn = %v, want 5.5", *s.MoodScore)
	}
}

func TestSessionCrisisLevelNeverDecreases(t *testing.T) {
	s := NewSession("s1", "u1")

	if err := s.Append(userTurn("rough day", 4, SeverityMedium)); err != nil {
		t.Fatal(err)
	}
	if s.CrisisLevel != SeverityMedium {
		t.Fatalf("level = %q, want medium", s.CrisisLevel)
	}

	if err := s.Append(userTurn("a bit better", 6, SeverityNone)); err != nil {
		t.Fatal(err)
	}
	if s.CrisisLevel != SeverityMedium {
		t.Fatalf("level after calm turn = %q, want medium (monotonic)", s.CrisisLevel)
	}

	if err := s.Append(userTurn("very dark place", 1, SeverityHigh)); err != nil {
		t.Fatal(err)
	}
	if s.CrisisLevel != SeverityHigh {
		t.Fatalf("level = %q, want high", s.CrisisLevel)
	}
}

func TestSessionTerminateOnce(t *testing.T) {
	s := NewSession("s1", "u1")
	if err := s.Append(userTurn("hello", 5, SeverityNone)); err != nil {
		t.Fatal(err)
	}

	if err := s.Terminate("brief check-in", []string{"sleep"}); err != nil {
		t.Fatal(err)
	}
	if s.State != SessionEnded || s.Summary != "brief check-in" {
		t.Fatalf("state=%q summary=%q after terminate", s.State, s.Summary)
	}

	if err := s.Terminate("again", nil); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("second terminate err = %v, want ErrInvalidState", err)
	}
	if s.Summary != "brief check-in" {
		t.Fatalf("summary overwritten by failed terminate: %q", s.Summary)
	}
}

func TestSessionAppendAfterEndHasNoSideEffects(t *testing.T) {
	s := NewSession("s1", "u1")
	if err := s.Append(userTurn("okay day", 5, SeverityNone)); err != nil {
		t.Fatal(err)
	}
	if err := s.Terminate("done", nil); err != nil {
		t.Fatal(err)
	}

	err := s.Append(userTurn("late message", 2, SeverityHigh))
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("append after end err = %v, want ErrInvalidState", err)
	}
	if len(s.Turns) != 1 {
		t.Fatalf("turns = %d, want 1 (rejected turn must not be stored)", len(s.Turns))
	}
	if *s.MoodScore != 5 || s.CrisisLevel != SeverityNone {
		t.Fatalf("aggregates mutated by rejected append: mood=%v level=%q", *s.MoodScore, s.CrisisLevel)
	}
}

func TestSessionUserText(t *testing.T) {
	s := NewSession("s1", "u1")
	_ = s.Append(userTurn("first", 5, SeverityNone))
	_ = s.Append(Turn{ID: "a1", Author: AuthorAgent, Text: "reply"})
	_ = s.Append(userTurn("second", 5, SeverityNone))

	if got := s.UserText(); got != "first second" {
		t.Fatalf("UserText() = %q, want %q", got, "first second")
	}
}
