package adapter

import "context"

// Message is one transcript entry handed to a text generator.
type Message struct {
	Role    string `json:"role"` // "user" | "assistant" | "system"
	Content string `json:"content"`
}

// TextGenerator is the port for the external reply/summary generator. Both
// calls block on network I/O and honor ctx; callers decide the fallback
// behavior when either fails.
type TextGenerator interface {
	// Reply produces the conversational response to message, given the
	// user's rolling context string.
	Reply(ctx context.Context, message, userContext string) (string, error)
	// Summarize condenses a full session transcript into 2-3 sentences.
	Summarize(ctx context.Context, transcript []Message) (string, error)
}
