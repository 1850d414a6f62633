package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"mitra-support/internal/domain"
	"mitra-support/internal/domain/model"
	"mitra-support/internal/domain/ports/repository"
	"mitra-support/internal/domain/signal"
	"mitra-support/internal/infra/logging"
	"mitra-support/internal/infra/metrics"
)

// Compile-time check
var _ CrisisUseCase = (*crisisUC)(nil)

type CrisisUseCase interface {
	// Response returns the fixed, severity-keyed supportive message and its
	// resource list. Deterministic; never calls the text generator.
	Response(severity model.Severity) (string, []model.Resource)
	// Record persists one audit event for a message that classified above
	// none. Event IDs are ULIDs so the audit trail sorts by time.
	Record(ctx context.Context, userID string, c signal.Classification, triggerText string) (*model.CrisisEvent, error)
	// Report records a user-initiated crisis report and returns the
	// severity-keyed supportive message and resources, same as a
	// classified message would.
	Report(ctx context.Context, userID string, severity model.Severity, description string) (*model.CrisisEvent, string, []model.Resource, error)
	Resources(country string) []model.Resource
	ListEvents(ctx context.Context, userID string, limit int) ([]*model.CrisisEvent, error)
	// Queue lists unresolved events across all users, newest first. The
	// transport layer restricts it to reviewers.
	Queue(ctx context.Context, limit int) ([]*model.CrisisEvent, error)
	// Resolve marks an event handled. Non-reviewers may only resolve
	// their own events; foreign events look like missing ones.
	Resolve(ctx context.Context, eventID, callerID string, reviewer bool) error
}

type crisisUC struct {
	events repository.CrisisEventRepository
	log    *zerolog.Logger
}

func NewCrisisUseCase(events repository.CrisisEventRepository, log *zerolog.Logger) *crisisUC {
	return &crisisUC{events: events, log: log}
}

var severityMessages = map[model.Severity]string{
	model.SeverityLow: "I notice you might be going through a difficult time. " +
		"Remember that you're not alone, and there are people who want to help. " +
		"Would you like to talk about what's troubling you?",
	model.SeverityMedium: "I'm concerned about what you've shared. Your feelings are valid, " +
		"but I want to make sure you're safe. Please consider reaching out to a mental " +
		"health professional or crisis hotline. Would you like me to provide some resources?",
	model.SeverityHigh: "I'm very concerned about you and want to help. Please know that you " +
		"matter and there are people who care. It's important to talk to someone right now - " +
		"a counselor, trusted friend, or crisis hotline. If you're in immediate danger, " +
		"please call emergency services.",
}

func (c *crisisUC) Response(severity model.Severity) (string, []model.Resource) {
	lifeline := model.PhoneResource("National Suicide Prevention Lifeline", "988")
	textLine := model.TextResource("Crisis Text Line", "HOME", "741741")
	emergency := model.PhoneResource("Emergency Services", "911")

	msg, ok := severityMessages[severity]
	if !ok {
		msg = severityMessages[model.SeverityLow]
	}
	switch severity {
	case model.SeverityMedium:
		return msg, []model.Resource{lifeline, textLine}
	case model.SeverityHigh, model.SeverityCritical:
		return msg, []model.Resource{emergency, lifeline, textLine}
	default:
		return msg, []model.Resource{lifeline}
	}
}

func (c *crisisUC) Record(ctx context.Context, userID string, cl signal.Classification, triggerText string) (*model.CrisisEvent, error) {
	ev := &model.CrisisEvent{
		ID:              ulid.Make().String(),
		UserID:          userID,
		Severity:        cl.Level,
		MatchedKeywords: cl.MatchedKeywords,
		TriggerText:     triggerText,
		Timestamp:       time.Now(),
	}
	if err := c.events.Save(ctx, ev); err != nil {
		return nil, fmt.Errorf("save crisis event: %w", err)
	}
	metrics.IncCrisisEvent(string(cl.Level))
	c.log.Warn().
		Str("user_id", userID).
		Str("severity", string(cl.Level)).
		Str("trigger", logging.Redact(triggerText)).
		Msg("crisis event recorded")
	return ev, nil
}

// Resources returns the static contact set for a country. Only the US set
// ships today; unknown countries fall back to it.
func (c *crisisUC) Resources(country string) []model.Resource {
	return []model.Resource{
		model.PhoneResource("National Suicide Prevention Lifeline", "988"),
		model.TextResource("Crisis Text Line", "HOME", "741741"),
		model.PhoneResource("Emergency Services", "911"),
		model.WebsiteResource("SAMHSA National Helpline", "https://www.samhsa.gov/find-help/national-helpline"),
	}
}

// Report is the self-report path: the user asks for help directly instead
// of tripping the keyword classifier. Only the classifier-producible
// severities are accepted.
func (c *crisisUC) Report(ctx context.Context, userID string, severity model.Severity, description string) (*model.CrisisEvent, string, []model.Resource, error) {
	switch severity {
	case model.SeverityLow, model.SeverityMedium, model.SeverityHigh:
	default:
		return nil, "", nil, fmt.Errorf("%w: severity must be low, medium or high", domain.ErrInvalidArgument)
	}
	ev, err := c.Record(ctx, userID, signal.Classification{Level: severity, MatchedKeywords: []string{}}, description)
	if err != nil {
		return nil, "", nil, err
	}
	msg, resources := c.Response(severity)
	return ev, msg, resources, nil
}

func (c *crisisUC) ListEvents(ctx context.Context, userID string, limit int) ([]*model.CrisisEvent, error) {
	return c.events.FindByUser(ctx, userID, limit)
}

func (c *crisisUC) Queue(ctx context.Context, limit int) ([]*model.CrisisEvent, error) {
	return c.events.FindUnresolved(ctx, limit)
}

func (c *crisisUC) Resolve(ctx context.Context, eventID, callerID string, reviewer bool) error {
	ev, err := c.events.FindByID(ctx, eventID)
	if err != nil {
		return err
	}
	if !reviewer && ev.UserID != callerID {
		// no existence oracle for other users' audit records
		return domain.ErrNotFound
	}
	if err := c.events.MarkResolved(ctx, eventID); err != nil {
		return err
	}
	metrics.IncCrisisResolved()
	return nil
}
