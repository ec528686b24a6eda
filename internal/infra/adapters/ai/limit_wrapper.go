package ai

import (
	"context"

	"aria-support-chat/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.AIServiceAdapter = (*limitedAI)(nil)

// limitedAI caps the number of in-flight upstream calls. A caller waiting for a
// slot gives up when its context ends.
type limitedAI struct {
	adapter.AIServiceAdapter
	sem chan struct{}
}

func NewLimitedAI(inner adapter.AIServiceAdapter, maxConcurrent int) adapter.AIServiceAdapter {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedAI{
		AIServiceAdapter: inner,
		sem:              make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedAI) Chat(ctx context.Context, messages []adapter.Message) (string, error) {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { <-l.sem }()
	return l.AIServiceAdapter.Chat(ctx, messages)
}

// CountTokens forwards to the wrapped adapter when it can count.
func (l *limitedAI) CountTokens(messages []adapter.Message) (int, error) {
	if tc, ok := l.AIServiceAdapter.(adapter.TokenCounter); ok {
		return tc.CountTokens(messages)
	}
	return 0, errNoCounter
}
