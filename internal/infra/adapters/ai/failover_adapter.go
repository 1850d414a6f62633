package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"mitra-support/internal/domain"
	"mitra-support/internal/domain/ports/adapter"
)

var _ adapter.TextGenerator = (*FailoverAdapter)(nil)

// FailoverAdapter tries each generator in order and returns the first
// success. When every provider fails the error maps to
// domain.ErrUpstreamFailed so use cases can pick the fallback text.
type FailoverAdapter struct {
	chain []adapter.TextGenerator
	names []string
	log   *zerolog.Logger
}

func NewFailoverAdapter(log *zerolog.Logger) *FailoverAdapter {
	return &FailoverAdapter{log: log}
}

func (f *FailoverAdapter) Add(name string, gen adapter.TextGenerator) {
	f.chain = append(f.chain, gen)
	f.names = append(f.names, name)
}

func (f *FailoverAdapter) Reply(ctx context.Context, message, userContext string) (string, error) {
	return f.call(ctx, "reply", func(g adapter.TextGenerator) (string, error) {
		return g.Reply(ctx, message, userContext)
	})
}

func (f *FailoverAdapter) Summarize(ctx context.Context, transcript []adapter.Message) (string, error) {
	return f.call(ctx, "summarize", func(g adapter.TextGenerator) (string, error) {
		return g.Summarize(ctx, transcript)
	})
}

func (f *FailoverAdapter) call(ctx context.Context, op string, invoke func(adapter.TextGenerator) (string, error)) (string, error) {
	if len(f.chain) == 0 {
		return "", fmt.Errorf("%w: no text generators configured", domain.ErrUpstreamFailed)
	}
	var lastErr error
	for i, gen := range f.chain {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		out, err := invoke(gen)
		if err == nil {
			return out, nil
		}
		lastErr = err
		f.log.Warn().Err(err).Str("provider", f.names[i]).Str("op", op).Msg("generator failed, trying next")
	}
	return "", fmt.Errorf("%w: %s", domain.ErrUpstreamFailed, errText(lastErr))
}

func errText(err error) string {
	if err == nil {
		return "unknown"
	}
	return err.Error()
}

var _ adapter.TextGenerator = (*NoopGenerator)(nil)

// NoopGenerator serves canned text for local development without API keys.
type NoopGenerator struct{}

func NewNoopGenerator() *NoopGenerator { return &NoopGenerator{} }

func (n *NoopGenerator) Reply(ctx context.Context, message, userContext string) (string, error) {
	if message == "" {
		return "", errors.New("noop: empty message")
	}
	return "Thank you for sharing that with me. How are you feeling right now?", nil
}

func (n *NoopGenerator) Summarize(ctx context.Context, transcript []adapter.Message) (string, error) {
	return fmt.Sprintf("Conversation of %d turns about the user's wellbeing.", len(transcript)), nil
}
