package ai

import (
	"context"
	"errors"
	"time"

	"google.golang.org/genai"

	"mitra-support/internal/domain/ports/adapter"
	"mitra-support/internal/infra/metrics"
)

var _ adapter.TextGenerator = (*GeminiAdapter)(nil)

// GeminiAdapter generates replies and summaries with the official SDK.
type GeminiAdapter struct {
	client      *genai.Client
	model       string
	maxOut      int
	tokenBudget int
}

func NewGeminiAdapter(ctx context.Context, apiKey, baseURL, model string, maxOut, tokenBudget int) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiAdapter{client: c, model: model, maxOut: maxOut, tokenBudget: tokenBudget}, nil
}

func (g *GeminiAdapter) Reply(ctx context.Context, message, userContext string) (string, error) {
	return g.generate(ctx, "reply", buildReplyPrompt(message, userContext))
}

func (g *GeminiAdapter) Summarize(ctx context.Context, transcript []adapter.Message) (string, error) {
	trimmed := truncateTranscript(transcript, g.tokenBudget)
	return g.generate(ctx, "summarize", buildSummaryPrompt(trimmed))
}

func (g *GeminiAdapter) generate(ctx context.Context, op, prompt string) (string, error) {
	start := time.Now()
	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			MaxOutputTokens: int32(g.maxOut),
		},
	)
	metrics.ObserveAICall("gemini", op, time.Since(start), err == nil)
	if err != nil {
		return "", err
	}

	text := ""
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil && len(resp.Candidates[0].Content.Parts) > 0 {
		if t := resp.Candidates[0].Content.Parts[0].Text; t != "" {
			text = t
		}
	}
	if text == "" {
		return "", errors.New("gemini: empty candidate text")
	}
	return text, nil
}
