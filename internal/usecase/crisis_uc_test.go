package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"mitra-support/internal/domain"
	"mitra-support/internal/domain/model"
	"mitra-support/internal/domain/signal"
)

func newCrisisUC(t *testing.T) (*memCrisisRepo, CrisisUseCase) {
	t.Helper()
	log := zerolog.Nop()
	repo := newMemCrisisRepo()
	return repo, NewCrisisUseCase(repo, &log)
}

func TestCrisisResponseResourceSets(t *testing.T) {
	_, uc := newCrisisUC(t)

	_, low := uc.Response(model.SeverityLow)
	if len(low) != 1 || low[0].Number != "988" {
		t.Fatalf("low resources = %v", low)
	}

	_, medium := uc.Response(model.SeverityMedium)
	if len(medium) != 2 {
		t.Fatalf("medium resources = %v", medium)
	}

	msg, high := uc.Response(model.SeverityHigh)
	if len(high) != 3 || high[0].Number != "911" {
		t.Fatalf("high resources = %v", high)
	}
	if msg == "" {
		t.Fatal("empty high-severity message")
	}

	// critical reads back from storage only, but its response is defined
	_, critical := uc.Response(model.SeverityCritical)
	if len(critical) != 3 {
		t.Fatalf("critical resources = %v", critical)
	}
}

func TestCrisisRecordAndResolve(t *testing.T) {
	repo, uc := newCrisisUC(t)
	ctx := context.Background()

	cls := signal.Classification{Level: model.SeverityMedium, MatchedKeywords: []string{"hopeless", "self harm"}}
	ev, err := uc.Record(ctx, "u1", cls, "feeling hopeless, thoughts of self harm")
	if err != nil {
		t.Fatal(err)
	}
	if ev.ID == "" || ev.Resolved {
		t.Fatalf("event = %+v", ev)
	}

	unresolved, err := repo.FindUnresolved(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(unresolved) != 1 {
		t.Fatalf("unresolved = %d, want 1", len(unresolved))
	}

	if err := uc.Resolve(ctx, ev.ID, "u1", false); err != nil {
		t.Fatal(err)
	}
	got, err := repo.FindByID(ctx, ev.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Resolved || got.ResolvedAt == nil {
		t.Fatalf("event after resolve = %+v", got)
	}

	if err := uc.Resolve(ctx, "no-such-event", "u1", false); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("resolve unknown err = %v, want ErrNotFound", err)
	}
}

func TestCrisisResolveOwnership(t *testing.T) {
	repo, uc := newCrisisUC(t)
	ctx := context.Background()

	cls := signal.Classification{Level: model.SeverityHigh, MatchedKeywords: []string{"wanna die"}}
	ev, err := uc.Record(ctx, "victim", cls, "I wanna die")
	if err != nil {
		t.Fatal(err)
	}

	// another user's event reads as missing, so no probing for event ids
	if err := uc.Resolve(ctx, ev.ID, "attacker", false); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("foreign resolve err = %v, want ErrNotFound", err)
	}
	got, err := repo.FindByID(ctx, ev.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Resolved {
		t.Fatal("foreign resolve marked the event resolved")
	}

	// a reviewer may resolve any user's event
	if err := uc.Resolve(ctx, ev.ID, "staff-1", true); err != nil {
		t.Fatal(err)
	}
	got, err = repo.FindByID(ctx, ev.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Resolved {
		t.Fatal("reviewer resolve did not mark the event resolved")
	}
}

func TestCrisisReport(t *testing.T) {
	repo, uc := newCrisisUC(t)
	ctx := context.Background()

	ev, msg, resources, err := uc.Report(ctx, "u1", model.SeverityMedium, "had a very dark evening")
	if err != nil {
		t.Fatal(err)
	}
	if ev.UserID != "u1" || ev.Severity != model.SeverityMedium || ev.Resolved {
		t.Fatalf("event = %+v", ev)
	}
	if msg == "" || len(resources) != 2 {
		t.Fatalf("msg = %q, resources = %v", msg, resources)
	}

	stored, err := repo.FindByID(ctx, ev.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.TriggerText != "had a very dark evening" {
		t.Fatalf("stored trigger = %q", stored.TriggerText)
	}

	if _, _, _, err := uc.Report(ctx, "u1", model.SeverityNone, "fine actually"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("report none err = %v, want ErrInvalidArgument", err)
	}
	if _, _, _, err := uc.Report(ctx, "u1", model.SeverityCritical, ""); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("report critical err = %v, want ErrInvalidArgument", err)
	}
}

func TestCrisisQueueListsUnresolved(t *testing.T) {
	_, uc := newCrisisUC(t)
	ctx := context.Background()

	a, _, _, err := uc.Report(ctx, "u1", model.SeverityHigh, "report one")
	if err != nil {
		t.Fatal(err)
	}
	b, _, _, err := uc.Report(ctx, "u2", model.SeverityLow, "report two")
	if err != nil {
		t.Fatal(err)
	}
	if err := uc.Resolve(ctx, b.ID, "u2", false); err != nil {
		t.Fatal(err)
	}

	queue, err := uc.Queue(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(queue) != 1 || queue[0].ID != a.ID {
		t.Fatalf("queue = %+v, want only the unresolved event", queue)
	}
}

func TestCrisisResourcesFallBackToUSSet(t *testing.T) {
	_, uc := newCrisisUC(t)

	us := uc.Resources("US")
	elsewhere := uc.Resources("FR")
	if len(us) != 4 || len(elsewhere) != 4 {
		t.Fatalf("resource sets: us=%d other=%d, want the default set for both", len(us), len(elsewhere))
	}
	if us[0].Kind != model.ResourcePhone {
		t.Fatalf("first resource = %+v", us[0])
	}
}
