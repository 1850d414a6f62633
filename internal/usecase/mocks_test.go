package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"mitra-support/internal/domain"
	"mitra-support/internal/domain/model"
	"mitra-support/internal/domain/ports/adapter"
	"mitra-support/internal/domain/signal"
	"mitra-support/internal/infra/lock"
)

// --- in-memory repositories ---

type memSessionRepo struct {
	mu        sync.Mutex
	sessions  map[string]*model.Session
	order     []string // insertion order, oldest first
	appendErr error
	saveErr   error
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: map[string]*model.Session{}}
}

func cloneSession(s *model.Session) *model.Session {
	cp := *s
	cp.Turns = append([]model.Turn(nil), s.Turns...)
	cp.Topics = append([]string(nil), s.Topics...)
	if s.MoodScore != nil {
		v := *s.MoodScore
		cp.MoodScore = &v
	}
	return &cp
}

func (r *memSessionRepo) Save(_ context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	if _, ok := r.sessions[session.ID]; !ok {
		r.order = append(r.order, session.ID)
	}
	r.sessions[session.ID] = cloneSession(session)
	return nil
}

func (r *memSessionRepo) AppendTurn(_ context.Context, _ *model.Turn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.appendErr
}

func (r *memSessionRepo) FindByID(_ context.Context, id string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneSession(s), nil
}

func (r *memSessionRepo) FindActiveByUser(_ context.Context, userID string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.order) - 1; i >= 0; i-- {
		s := r.sessions[r.order[i]]
		if s.UserID == userID && s.State == model.SessionActive {
			return cloneSession(s), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memSessionRepo) FindRecentByUser(_ context.Context, userID string, limit int) ([]*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Session
	for i := len(r.order) - 1; i >= 0 && len(out) < limit; i-- {
		s := r.sessions[r.order[i]]
		if s.UserID == userID {
			out = append(out, cloneSession(s))
		}
	}
	return out, nil
}

func (r *memSessionRepo) FindAllByUser(_ context.Context, userID string) ([]*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Session
	for i := len(r.order) - 1; i >= 0; i-- {
		s := r.sessions[r.order[i]]
		if s.UserID == userID {
			out = append(out, cloneSession(s))
		}
	}
	return out, nil
}

func (r *memSessionRepo) DeleteByUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	keep := r.order[:0]
	for _, id := range r.order {
		if r.sessions[id].UserID == userID {
			delete(r.sessions, id)
			continue
		}
		keep = append(keep, id)
	}
	r.order = keep
	return nil
}

type memSummaryRepo struct {
	mu        sync.Mutex
	summaries map[string]*model.UserSummary
	upserts   int
}

func newMemSummaryRepo() *memSummaryRepo {
	return &memSummaryRepo{summaries: map[string]*model.UserSummary{}}
}

func cloneSummary(s *model.UserSummary) *model.UserSummary {
	cp := *s
	cp.RecentContext = append([]string(nil), s.RecentContext...)
	cp.TopicPatterns = append([]model.TopicPattern(nil), s.TopicPatterns...)
	if s.Progress.AverageMoodScore != nil {
		v := *s.Progress.AverageMoodScore
		cp.Progress.AverageMoodScore = &v
	}
	return &cp
}

func (r *memSummaryRepo) Upsert(_ context.Context, summary *model.UserSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summaries[summary.UserID] = cloneSummary(summary)
	r.upserts++
	return nil
}

func (r *memSummaryRepo) FindByUser(_ context.Context, userID string) (*model.UserSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.summaries[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneSummary(s), nil
}

func (r *memSummaryRepo) DeleteByUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.summaries, userID)
	return nil
}

type memCrisisRepo struct {
	mu      sync.Mutex
	events  []*model.CrisisEvent
	saveErr error
}

func newMemCrisisRepo() *memCrisisRepo { return &memCrisisRepo{} }

func (r *memCrisisRepo) Save(_ context.Context, event *model.CrisisEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	for _, ev := range r.events {
		if ev.ID == event.ID {
			return domain.ErrAlreadyExists
		}
	}
	cp := *event
	r.events = append(r.events, &cp)
	return nil
}

func (r *memCrisisRepo) FindByID(_ context.Context, id string) (*model.CrisisEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range r.events {
		if ev.ID == id {
			cp := *ev
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memCrisisRepo) FindByUser(_ context.Context, userID string, limit int) ([]*model.CrisisEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.CrisisEvent
	for i := len(r.events) - 1; i >= 0 && len(out) < limit; i-- {
		if r.events[i].UserID == userID {
			cp := *r.events[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memCrisisRepo) FindUnresolved(_ context.Context, limit int) ([]*model.CrisisEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.CrisisEvent
	for i := len(r.events) - 1; i >= 0 && len(out) < limit; i-- {
		if !r.events[i].Resolved {
			cp := *r.events[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memCrisisRepo) MarkResolved(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range r.events {
		if ev.ID == id {
			now := time.Now()
			ev.Resolved = true
			ev.ResolvedAt = &now
			return nil
		}
	}
	return domain.ErrNotFound
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newMemUserRepo() *memUserRepo { return &memUserRepo{users: map[string]*model.User{}} }

func (r *memUserRepo) Save(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) TouchLastActive(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.LastActiveAt = at
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

// --- fake text generator ---

type fakeGen struct {
	mu           sync.Mutex
	reply        string
	summary      string
	replyErr     error
	summaryErr   error
	replyCalls   int
	summaryCalls int
	lastContext  string
}

func (g *fakeGen) Reply(_ context.Context, _, userContext string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.replyCalls++
	g.lastContext = userContext
	if g.replyErr != nil {
		return "", g.replyErr
	}
	return g.reply, nil
}

func (g *fakeGen) Summarize(_ context.Context, _ []adapter.Message) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.summaryCalls++
	if g.summaryErr != nil {
		return "", g.summaryErr
	}
	return g.summary, nil
}

// --- wiring helper ---

type chatEnv struct {
	sessions  *memSessionRepo
	users     *memUserRepo
	summaries *memSummaryRepo
	events    *memCrisisRepo
	gen       *fakeGen
	crisis    CrisisUseCase
	summary   SummaryUseCase
	chat      ChatUseCase
}

func newChatEnv(t *testing.T) *chatEnv {
	t.Helper()
	log := zerolog.Nop()

	env := &chatEnv{
		sessions:  newMemSessionRepo(),
		users:     newMemUserRepo(),
		summaries: newMemSummaryRepo(),
		events:    newMemCrisisRepo(),
		gen:       &fakeGen{reply: "generated reply", summary: "generated summary"},
	}
	env.crisis = NewCrisisUseCase(env.events, &log)
	env.summary = NewSummaryUseCase(env.summaries, env.sessions, 10, &log)
	env.chat = NewChatUseCase(
		env.sessions, env.users, env.gen, env.crisis, env.summary,
		signal.DefaultLexicon(), lock.NewMemoryLocker(), 0,
		nil, nil, // no rate limiter, merge runs inline
		2000, &log,
	)
	return env
}
