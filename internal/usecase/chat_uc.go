package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"mitra-support/internal/domain"
	"mitra-support/internal/domain/model"
	"mitra-support/internal/domain/ports"
	"mitra-support/internal/domain/ports/adapter"
	"mitra-support/internal/domain/ports/repository"
	"mitra-support/internal/domain/signal"
	"mitra-support/internal/infra/logging"
	"mitra-support/internal/infra/metrics"
)

// Compile-time check
var _ ChatUseCase = (*chatUC)(nil)

// FallbackReply is served when the text generator fails on a non-crisis
// message; the turn is still scored and recorded.
const FallbackReply = "I'm here to listen and support you. Could you tell me more about how you're feeling?"

// FallbackSummary is the deterministic summary used when summarization
// fails at session end. The terminal merge still proceeds so session counts
// and mood trend stay accurate.
const FallbackSummary = "Conversation covered the user's current emotional state and concerns."

const defaultLockTTL = 30 * time.Second

type SendResult struct {
	ReplyText   string
	SessionID   string
	CrisisLevel model.Severity
	MoodScore   *float64
	EmotionTags []string
	Resources   []model.Resource
}

type EndResult struct {
	Summary string
	Topics  []string
}

// RateLimiter bounds per-user message throughput. Implementations return
// domain.ErrRateLimited when the budget is exhausted.
type RateLimiter interface {
	Allow(ctx context.Context, userID string) error
}

// Deferred runs merge work off the request path, best-effort.
type Deferred interface {
	Submit(task func(ctx context.Context) error) error
}

type ChatUseCase interface {
	// SendMessage drives the full per-message pipeline: validate,
	// classify and score concurrently, append the turn, pick the reply
	// (crisis-keyed or generated), and refresh the summary.
	SendMessage(ctx context.Context, userID, sessionID, text string) (*SendResult, error)
	// EndSession terminates the session and runs the terminal merge.
	EndSession(ctx context.Context, userID, sessionID string) (*EndResult, error)
	History(ctx context.Context, userID string, limit int) ([]*model.Session, error)
}

type chatUC struct {
	sessions   repository.SessionRepository
	users      repository.UserRepository
	ai         adapter.TextGenerator
	crisis     CrisisUseCase
	summary    SummaryUseCase
	lexicon    *signal.Lexicon
	classifier *signal.Classifier
	scorer     *signal.Scorer
	locker     ports.KeyLocker
	lockTTL    time.Duration
	limiter    RateLimiter
	deferred   Deferred
	maxLen     int
	log        *zerolog.Logger
}

func NewChatUseCase(
	sessions repository.SessionRepository,
	users repository.UserRepository,
	ai adapter.TextGenerator,
	crisis CrisisUseCase,
	summary SummaryUseCase,
	lex *signal.Lexicon,
	locker ports.KeyLocker,
	lockTTL time.Duration,
	limiter RateLimiter,
	deferred Deferred,
	maxMessageLen int,
	log *zerolog.Logger,
) *chatUC {
	if lockTTL <= 0 {
		lockTTL = defaultLockTTL
	}
	return &chatUC{
		sessions:   sessions,
		users:      users,
		ai:         ai,
		crisis:     crisis,
		summary:    summary,
		lexicon:    lex,
		classifier: signal.NewClassifier(lex),
		scorer:     signal.NewScorer(lex),
		locker:     locker,
		lockTTL:    lockTTL,
		limiter:    limiter,
		deferred:   deferred,
		maxLen:     maxMessageLen,
		log:        log,
	}
}

func (c *chatUC) SendMessage(ctx context.Context, userID, sessionID, text string) (*SendResult, error) {
	defer logging.TraceDuration(c.log, "ChatUC.SendMessage")()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty message", domain.ErrInvalidArgument)
	}
	if c.maxLen > 0 && len(text) > c.maxLen {
		return nil, fmt.Errorf("%w: message exceeds %d bytes", domain.ErrInvalidArgument, c.maxLen)
	}
	if c.limiter != nil {
		if err := c.limiter.Allow(ctx, userID); err != nil {
			return nil, err
		}
	}

	// All session and summary mutations for one user are serialized on the
	// user key; two tabs sending at once cannot interleave appends or
	// drop a merge.
	token, err := c.locker.TryLock(ctx, userLockKey(userID), c.lockTTL)
	if err != nil {
		return nil, err
	}
	defer func() { _ = c.locker.Unlock(ctx, userLockKey(userID), token) }()

	sess, err := c.createOrResume(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	// Classifier and scorer are pure and share nothing; run them in
	// parallel per the scheduling model.
	var cls signal.Classification
	var mood signal.MoodReading
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error { cls = c.classifier.Classify(text); return nil })
	g.Go(func() error { mood = c.scorer.Score(text); return nil })
	_ = g.Wait() // both total functions, no error path

	score := mood.Score
	userTurn := model.Turn{
		ID:             uuid.NewString(),
		Author:         model.AuthorUser,
		Text:           text,
		Timestamp:      time.Now(),
		MoodScore:      &score,
		EmotionTags:    mood.EmotionTags,
		CrisisKeywords: cls.MatchedKeywords,
		CrisisLevel:    cls.Level,
	}
	if err := sess.Append(userTurn); err != nil {
		return nil, err
	}
	// A lost turn corrupts the audit trail, so append failures surface.
	if err := c.sessions.AppendTurn(ctx, &sess.Turns[len(sess.Turns)-1]); err != nil {
		return nil, fmt.Errorf("append turn: %w", err)
	}

	reply, resources := c.buildReply(ctx, userID, sess, text, cls)

	agentTurn := model.Turn{
		ID:          uuid.NewString(),
		Author:      model.AuthorAgent,
		Text:        reply,
		Timestamp:   time.Now(),
		CrisisLevel: model.SeverityNone,
	}
	if err := sess.Append(agentTurn); err != nil {
		return nil, err
	}
	if err := c.sessions.AppendTurn(ctx, &sess.Turns[len(sess.Turns)-1]); err != nil {
		return nil, fmt.Errorf("append agent turn: %w", err)
	}
	if err := c.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	c.refreshSummary(ctx, userID, &score)
	c.touchUser(ctx, userID)
	metrics.ObserveMessage(string(cls.Level), mood.Score)

	return &SendResult{
		ReplyText:   reply,
		SessionID:   sess.ID,
		CrisisLevel: cls.Level,
		MoodScore:   &score,
		EmotionTags: mood.EmotionTags,
		Resources:   resources,
	}, nil
}

func (c *chatUC) EndSession(ctx context.Context, userID, sessionID string) (*EndResult, error) {
	defer logging.TraceDuration(c.log, "ChatUC.EndSession")()

	token, err := c.locker.TryLock(ctx, userLockKey(userID), c.lockTTL)
	if err != nil {
		return nil, err
	}
	defer func() { _ = c.locker.Unlock(ctx, userLockKey(userID), token) }()

	sess, err := c.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.UserID != userID {
		// Foreign sessions look like missing ones; no existence oracle.
		return nil, domain.ErrNotFound
	}
	if sess.State != model.SessionActive {
		return nil, domain.ErrInvalidState
	}

	topics := signal.ExtractTopics(c.lexicon, sess.UserText())

	summaryText, err := c.ai.Summarize(ctx, transcriptOf(sess))
	if err != nil {
		// Not swallowed: the fallback keeps the merge accurate even when
		// narrative summarization failed.
		logging.With(ctx, c.log).Error().Err(err).Msg("summary generation failed, using fallback")
		metrics.IncAIFallback("summarize")
		summaryText = FallbackSummary
	}

	if err := sess.Terminate(summaryText, topics); err != nil {
		return nil, err
	}
	if err := c.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save ended session: %w", err)
	}

	// Terminal merge failures surface to the caller: losing it corrupts
	// session counts and progress metrics.
	if err := c.summary.TerminalMerge(ctx, userID, summaryText, topics, sess); err != nil {
		return nil, err
	}
	metrics.IncSessionEnded()
	return &EndResult{Summary: summaryText, Topics: topics}, nil
}

func (c *chatUC) History(ctx context.Context, userID string, limit int) ([]*model.Session, error) {
	if limit <= 0 {
		limit = 10
	}
	return c.sessions.FindRecentByUser(ctx, userID, limit)
}

// createOrResume resumes the session by id when it is active and owned by
// the caller; an ended session silently redirects to a fresh one. Without
// an id it reuses the user's active session or starts a new one.
func (c *chatUC) createOrResume(ctx context.Context, userID, sessionID string) (*model.Session, error) {
	if sessionID != "" {
		sess, err := c.sessions.FindByID(ctx, sessionID)
		switch {
		case err == nil && sess.UserID != userID:
			return nil, domain.ErrNotFound
		case err == nil && sess.State == model.SessionActive:
			return sess, nil
		case err == nil:
			// ended: fall through to a fresh session
		case errors.Is(err, domain.ErrNotFound):
			// unknown id: fall through to a fresh session
		default:
			return nil, err
		}
	} else {
		sess, err := c.sessions.FindActiveByUser(ctx, userID)
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	sess := model.NewSession(uuid.NewString(), userID)
	if err := c.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// buildReply picks the crisis-keyed fixed response or asks the generator.
// Crisis replies are always delivered, even when the event write fails.
func (c *chatUC) buildReply(ctx context.Context, userID string, sess *model.Session, text string, cls signal.Classification) (string, []model.Resource) {
	if cls.Level != model.SeverityNone {
		if _, err := c.crisis.Record(ctx, userID, cls, text); err != nil {
			c.log.Error().Err(err).Str("user_id", userID).Msg("crisis event write failed; reply still delivered")
		}
		msg, resources := c.crisis.Response(cls.Level)
		return msg, resources
	}

	userContext := ""
	if sum, err := c.summary.Ensure(ctx, userID); err == nil {
		userContext = sum.ContextText()
	}
	reply, err := c.ai.Reply(ctx, text, userContext)
	if err != nil {
		c.log.Warn().Err(err).Msg("reply generation failed, serving fallback")
		metrics.IncAIFallback("reply")
		return FallbackReply, nil
	}
	return reply, nil
}

// refreshSummary runs the realtime merge off the hot path when a worker
// pool is wired, inline otherwise. Failures are logged, never surfaced;
// this path is best-effort by contract.
func (c *chatUC) refreshSummary(ctx context.Context, userID string, score *float64) {
	merge := func(mctx context.Context) error {
		token, err := c.locker.TryLock(mctx, userLockKey(userID), c.lockTTL)
		if err != nil {
			return err
		}
		defer func() { _ = c.locker.Unlock(mctx, userLockKey(userID), token) }()
		return c.summary.RealtimeMerge(mctx, userID, score)
	}

	if c.deferred != nil {
		if err := c.deferred.Submit(merge); err != nil {
			c.log.Warn().Err(err).Str("user_id", userID).Msg("realtime merge not scheduled")
		}
		return
	}
	// inline: we already hold the user lock
	if err := c.summary.RealtimeMerge(ctx, userID, score); err != nil {
		c.log.Warn().Err(err).Str("user_id", userID).Msg("realtime merge failed")
	}
}

func (c *chatUC) touchUser(ctx context.Context, userID string) {
	if err := c.users.TouchLastActive(ctx, userID, time.Now()); err != nil && !errors.Is(err, domain.ErrNotFound) {
		c.log.Debug().Err(err).Str("user_id", userID).Msg("touch last active failed")
	}
}

func transcriptOf(sess *model.Session) []adapter.Message {
	out := make([]adapter.Message, 0, len(sess.Turns))
	for _, t := range sess.Turns {
		role := "user"
		if t.Author == model.AuthorAgent {
			role = "assistant"
		}
		out = append(out, adapter.Message{Role: role, Content: t.Text})
	}
	return out
}

func userLockKey(userID string) string { return "lock:user:" + userID }
