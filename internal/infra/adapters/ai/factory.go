package ai

import (
	"errors"
	"fmt"

	"aria-support-chat/internal/config"
	"aria-support-chat/internal/domain/ports/adapter"
)

var errNoCounter = errors.New("adapter cannot count tokens")

// New builds the configured provider adapter wrapped in the concurrency limiter.
func New(cfg config.AIConfig) (adapter.AIServiceAdapter, error) {
	sampling := adapter.Sampling{
		MaxTokens:        cfg.MaxTokens,
		Temperature:      cfg.Temperature,
		PresencePenalty:  cfg.PresencePenalty,
		FrequencyPenalty: cfg.FrequencyPenalty,
	}
	var inner adapter.AIServiceAdapter
	switch cfg.Provider {
	case "", "openai":
		inner = NewOpenAIAdapter(cfg.OpenAIKey, cfg.DefaultModel, cfg.OpenAIBaseURL, sampling)
	case "gemini":
		inner = NewGeminiAdapter(cfg.GeminiKey, cfg.GeminiURL, cfg.DefaultModel, sampling)
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
	return NewLimitedAI(inner, cfg.ConcurrentLimit), nil
}
