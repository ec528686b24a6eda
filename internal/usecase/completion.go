// File: internal/usecase/completion.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"aria-support-chat/internal/domain"
	"aria-support-chat/internal/domain/model"
	"aria-support-chat/internal/domain/ports/adapter"
	"aria-support-chat/internal/infra/metrics"
)

// Compile-time check
var _ Completer = (*CompletionGateway)(nil)

// Completer turns recent history into one assistant reply.
type Completer interface {
	Complete(ctx context.Context, history []model.Turn) (string, error)
	Configured() bool
	Provider() string
}

// CompletionGateway prefixes the persona prompt, enforces the call timeout and
// maps adapter failures onto the upstream error kinds.
type CompletionGateway struct {
	ai      adapter.AIServiceAdapter
	persona string
	timeout time.Duration
	log     *zerolog.Logger
}

func NewCompletionGateway(ai adapter.AIServiceAdapter, persona string, timeout time.Duration, logger *zerolog.Logger) *CompletionGateway {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	l := logger.With().Str("component", "completion").Logger()
	return &CompletionGateway{ai: ai, persona: persona, timeout: timeout, log: &l}
}

func (g *CompletionGateway) Configured() bool { return g.ai.Configured() }
func (g *CompletionGateway) Provider() string { return g.ai.Provider() }

func (g *CompletionGateway) Complete(ctx context.Context, history []model.Turn) (string, error) {
	if !g.ai.Configured() {
		return "", domain.ErrUpstreamUnavailable
	}

	msgs := make([]adapter.Message, 0, len(history)+1)
	msgs = append(msgs, adapter.Message{Role: string(model.RoleSystem), Content: g.persona})
	for _, t := range history {
		msgs = append(msgs, adapter.Message{Role: string(t.Role), Content: t.Content})
	}

	if tc, ok := g.ai.(adapter.TokenCounter); ok {
		if n, err := tc.CountTokens(msgs); err == nil {
			metrics.ObservePromptTokens(g.ai.Provider(), g.ai.Model(), n)
		}
	}

	cctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	reply, err := g.ai.Chat(cctx, msgs)
	elapsed := time.Since(start)
	metrics.ObserveCompletion(g.ai.Provider(), g.ai.Model(), elapsed, err == nil)
	if err != nil {
		err = classifyUpstream(cctx, err)
		g.log.Debug().Err(err).Dur("elapsed", elapsed).Int("turns", len(history)).Msg("completion failed")
		return "", err
	}
	if reply == "" {
		return "", fmt.Errorf("%w: empty reply", domain.ErrUpstreamError)
	}
	return reply, nil
}

func classifyUpstream(ctx context.Context, err error) error {
	switch {
	case domain.IsUpstream(err):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", domain.ErrUpstreamTimeout, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrUpstreamError, err)
	}
}
