package ai

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"mitra-support/internal/domain/ports/adapter"
)

const replyPromptTemplate = `You are a compassionate and human-like mental health support companion named Mitra.

User Context: %s

Current Message: "%s"

Guidelines for your response:
- Respond with warmth, empathy, and understanding
- Acknowledge the user's feelings and validate their emotions
- Ask gentle follow-up questions to encourage sharing
- Suggest practical coping strategies when suitable
- Never diagnose or give medical advice
- If you detect crisis indicators, prioritize safety and suggest seeking professional help gently
- Keep responses supportive, conversational, and human-like

Response:`

const summaryPromptTemplate = `Summarize this mental health conversation focusing on:
1. Main topics discussed
2. User's emotional state
3. Key concerns or issues
4. Progress or insights gained

Conversation:
%s

Provide a concise summary (2-3 sentences):`

func buildReplyPrompt(message, userContext string) string {
	return fmt.Sprintf(replyPromptTemplate, userContext, message)
}

func buildSummaryPrompt(transcript []adapter.Message) string {
	var b strings.Builder
	for _, m := range transcript {
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteByte('\n')
	}
	return fmt.Sprintf(summaryPromptTemplate, b.String())
}

// truncateTranscript drops the oldest turns until the transcript fits the
// token budget. Counting uses the cl100k_base encoding as a provider
// neutral estimate; when the tokenizer is unavailable the transcript
// passes through untouched.
func truncateTranscript(transcript []adapter.Message, budget int) []adapter.Message {
	if budget <= 0 || len(transcript) == 0 {
		return transcript
	}
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return transcript
	}

	total := 0
	counts := make([]int, len(transcript))
	for i, m := range transcript {
		counts[i] = len(enc.Encode(m.Content, nil, nil))
		total += counts[i]
	}
	start := 0
	for total > budget && start < len(transcript)-1 {
		total -= counts[start]
		start++
	}
	return transcript[start:]
}
