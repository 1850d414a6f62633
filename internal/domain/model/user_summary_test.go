package model

import (
	"reflect"
	"testing"
	"time"
)

func TestPushContextEvictsOldest(t *testing.T) {
	u := NewUserSummary("u1")

	u.PushContext("one")
	u.PushContext("two")
	u.PushContext("three")
	if !reflect.DeepEqual(u.RecentContext, []string{"one", "two", "three"}) {
		t.Fatalf("context = %v", u.RecentContext)
	}

	u.PushContext("four")
	if !reflect.DeepEqual(u.RecentContext, []string{"two", "three", "four"}) {
		t.Fatalf("context after eviction = %v, want oldest dropped", u.RecentContext)
	}
}

func TestContextText(t *testing.T) {
	u := NewUserSummary("u1")
	if got := u.ContextText(); got != "" {
		t.Fatalf("empty context text = %q", got)
	}

	u.PushContext("slept badly")
	u.PushContext("work stress")
	if got := u.ContextText(); got != "slept badly | work stress" {
		t.Fatalf("context text = %q", got)
	}
}

func TestUpsertTopicInsertAndIncrement(t *testing.T) {
	u := NewUserSummary("u1")
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	t1 := t0.Add(24 * time.Hour)

	u.UpsertTopic("sleep", t0)
	if len(u.TopicPatterns) != 1 {
		t.Fatalf("patterns = %d, want 1", len(u.TopicPatterns))
	}
	p := u.TopicPatterns[0]
	if p.Pattern != "User frequently discusses sleep" || p.Frequency != 1 {
		t.Fatalf("inserted pattern = %+v", p)
	}

	u.UpsertTopic("sleep", t1)
	p = u.TopicPatterns[0]
	if p.Frequency != 2 || !p.LastMentioned.Equal(t1) {
		t.Fatalf("incremented pattern = %+v", p)
	}
	if len(u.TopicPatterns) != 1 {
		t.Fatalf("duplicate pattern inserted: %v", u.TopicPatterns)
	}
}

func TestUpsertTopicMatchesBySubstring(t *testing.T) {
	u := NewUserSummary("u1")
	now := time.Now()

	// a pre-existing free-form pattern that merely contains the topic word
	u.TopicPatterns = append(u.TopicPatterns, TopicPattern{
		Pattern:       "Ongoing Work pressure",
		Frequency:     3,
		LastMentioned: now.Add(-time.Hour),
	})

	u.UpsertTopic("work", now)
	if len(u.TopicPatterns) != 1 {
		t.Fatalf("patterns = %d, want containment match to increment", len(u.TopicPatterns))
	}
	if u.TopicPatterns[0].Frequency != 4 {
		t.Fatalf("frequency = %d, want 4", u.TopicPatterns[0].Frequency)
	}
}

func TestUpsertTopicDistinctTopics(t *testing.T) {
	u := NewUserSummary("u1")
	now := time.Now()

	u.UpsertTopic("work", now)
	u.UpsertTopic("sleep", now)
	if len(u.TopicPatterns) != 2 {
		t.Fatalf("patterns = %d, want 2", len(u.TopicPatterns))
	}
}
