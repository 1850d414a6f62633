package ai

import (
	"context"
	"errors"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"mitra-support/internal/domain/ports/adapter"
	"mitra-support/internal/infra/metrics"
)

var _ adapter.TextGenerator = (*OpenAIAdapter)(nil)

// OpenAIAdapter is the failover generator behind Gemini.
type OpenAIAdapter struct {
	client      openai.Client
	model       string
	maxOut      int
	tokenBudget int
}

func NewOpenAIAdapter(apiKey, model string, maxOut, tokenBudget int) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("openai: empty api key")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIAdapter{
		client:      openai.NewClient(option.WithAPIKey(apiKey)),
		model:       model,
		maxOut:      maxOut,
		tokenBudget: tokenBudget,
	}, nil
}

func (o *OpenAIAdapter) Reply(ctx context.Context, message, userContext string) (string, error) {
	return o.generate(ctx, "reply", buildReplyPrompt(message, userContext))
}

func (o *OpenAIAdapter) Summarize(ctx context.Context, transcript []adapter.Message) (string, error) {
	trimmed := truncateTranscript(transcript, o.tokenBudget)
	return o.generate(ctx, "summarize", buildSummaryPrompt(trimmed))
}

func (o *OpenAIAdapter) generate(ctx context.Context, op, prompt string) (string, error) {
	start := time.Now()
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxTokens: openai.Int(int64(o.maxOut)),
	})
	metrics.ObserveAICall("openai", op, time.Since(start), err == nil)
	if err != nil {
		return "", err
	}
	for _, c := range resp.Choices {
		if c.Message.Content != "" {
			return c.Message.Content, nil
		}
	}
	return "", errors.New("openai: no choice content")
}
