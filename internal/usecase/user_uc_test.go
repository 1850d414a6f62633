package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"mitra-support/internal/domain"
)

func TestEnsureUserIdempotent(t *testing.T) {
	env := newChatEnv(t)
	log := zerolog.Nop()
	uc := NewUserUseCase(env.users, env.sessions, env.summaries, &log)
	ctx := context.Background()

	first, err := uc.EnsureUser(ctx, "u1", "Sam")
	if err != nil {
		t.Fatal(err)
	}
	again, err := uc.EnsureUser(ctx, "u1", "Renamed")
	if err != nil {
		t.Fatal(err)
	}
	if again.DisplayName != first.DisplayName {
		t.Fatalf("second ensure overwrote the record: %q", again.DisplayName)
	}
}

func TestDeleteAccountRetainsCrisisAudit(t *testing.T) {
	env := newChatEnv(t)
	log := zerolog.Nop()
	uc := NewUserUseCase(env.users, env.sessions, env.summaries, &log)
	ctx := context.Background()

	if _, err := uc.EnsureUser(ctx, "u1", "Sam"); err != nil {
		t.Fatal(err)
	}
	res, err := env.chat.SendMessage(ctx, "u1", "", "I feel hopeless")
	if err != nil {
		t.Fatal(err)
	}

	if err := uc.DeleteAccount(ctx, "u1"); err != nil {
		t.Fatal(err)
	}

	if _, err := env.users.FindByID(ctx, "u1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("user lookup after delete = %v, want ErrNotFound", err)
	}
	if _, err := env.sessions.FindByID(ctx, res.SessionID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("session lookup after delete = %v, want ErrNotFound", err)
	}
	if _, err := env.summaries.FindByUser(ctx, "u1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("summary lookup after delete = %v, want ErrNotFound", err)
	}

	events, err := env.events.FindByUser(ctx, "u1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Fatalf("crisis events after delete = %d, want audit trail retained", len(events))
	}
}

func TestDeleteAccountUnknownUser(t *testing.T) {
	env := newChatEnv(t)
	log := zerolog.Nop()
	uc := NewUserUseCase(env.users, env.sessions, env.summaries, &log)

	if err := uc.DeleteAccount(context.Background(), "ghost"); err != nil {
		t.Fatalf("delete of unknown user = %v, want nil (idempotent)", err)
	}
}
