package adapter

import "context"

// Message represents a chat message sent upstream.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// Sampling holds the fixed generation parameters of every completion call.
type Sampling struct {
	MaxTokens        int
	Temperature      float64
	PresencePenalty  float64
	FrequencyPenalty float64
}

// AIServiceAdapter is the port for one LLM provider.
type AIServiceAdapter interface {
	// Provider is a short label used in logs and metrics, e.g. "openai".
	Provider() string
	Model() string

	// Configured reports whether a credential is present. It never performs I/O.
	Configured() bool

	// Chat returns only the assistant text of the first choice.
	Chat(ctx context.Context, messages []Message) (string, error)
}

// TokenCounter is implemented by adapters that can estimate prompt size.
type TokenCounter interface {
	CountTokens(messages []Message) (int, error)
}
