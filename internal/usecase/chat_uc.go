// File: internal/usecase/chat_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"aria-support-chat/internal/domain"
	"aria-support-chat/internal/domain/model"
	"aria-support-chat/internal/domain/ports/adapter"
	"aria-support-chat/internal/domain/ports/repository"
	"aria-support-chat/internal/infra/logging"
	"aria-support-chat/internal/infra/metrics"
)

// Compile-time check
var _ ChatUseCase = (*chatUC)(nil)

type ChatUseCase interface {
	InitSession(ctx context.Context, name, email string) (*InitResult, error)
	SubmitTurn(ctx context.Context, sessionID, text string) (*TurnResult, error)
	SaveConversation(ctx context.Context, sessionID string) (*SaveResult, error)
	Conversation(ctx context.Context, sessionID string) (*ConversationView, error)
	ListSessions(ctx context.Context) ([]SessionSummary, error)
	Health(ctx context.Context) Health
	ShutdownFlush(ctx context.Context) error
	OpenExport(ctx context.Context) (io.ReadCloser, error)
}

// Phrases renders locale text by key.
type Phrases interface {
	T(key string, args ...interface{}) string
}

type InitResult struct {
	Session  *model.Session
	Greeting string
}

// TurnResult is the outcome of one accepted turn. Success is false when the
// reply is a fallback; Cause then holds the upstream error.
type TurnResult struct {
	Reply        string
	MessageCount int
	Success      bool
	Cause        error
}

type SaveResult struct {
	Filename     string
	MessageCount int
}

type ConversationView struct {
	Session  *model.Session
	Messages []model.Turn
}

type SessionSummary struct {
	Session      *model.Session
	MessageCount int
}

type Health struct {
	ActiveSessions   int
	TotalMessages    int
	APIKeyConfigured bool
}

type ChatOptions struct {
	HistoryWindow   int // turns sent upstream
	RetentionWindow int // turns kept resident
	AutosaveEvery   int
	Selector        Selector
	Dev             bool
}

type chatUC struct {
	sessions      repository.SessionRepository
	conversations repository.ConversationRepository
	completer     Completer
	writer        repository.TranscriptWriter
	limiter       adapter.TurnLimiter // nil: unlimited
	phrases       Phrases
	log           *zerolog.Logger
	opts          ChatOptions

	newID func() string
}

func NewChatUseCase(
	sessions repository.SessionRepository,
	conversations repository.ConversationRepository,
	completer Completer,
	writer repository.TranscriptWriter,
	limiter adapter.TurnLimiter,
	phrases Phrases,
	logger *zerolog.Logger,
	opts ChatOptions,
) *chatUC {
	if opts.HistoryWindow <= 0 {
		opts.HistoryWindow = 10
	}
	if opts.RetentionWindow <= 0 {
		opts.RetentionWindow = 20
	}
	if opts.AutosaveEvery <= 0 {
		opts.AutosaveEvery = 4
	}
	if opts.Selector == nil {
		opts.Selector = RandomSelector(0)
	}
	l := logger.With().Str("component", "chat_uc").Logger()
	return &chatUC{
		sessions:      sessions,
		conversations: conversations,
		completer:     completer,
		writer:        writer,
		limiter:       limiter,
		phrases:       phrases,
		log:           &l,
		opts:          opts,
		newID:         func() string { return "user_" + ulid.Make().String() },
	}
}

func (c *chatUC) InitSession(ctx context.Context, name, email string) (*InitResult, error) {
	defer logging.TraceDuration(c.log, "ChatUC.InitSession")()

	s := model.NewSession(c.newID(), name, email)
	// The log goes in first so a visible session always has one.
	if err := c.conversations.Create(ctx, s.ID); err != nil {
		return nil, fmt.Errorf("%w: create log: %v", domain.ErrInternalFault, err)
	}
	if err := c.sessions.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("%w: create session: %v", domain.ErrInternalFault, err)
	}

	active := c.sessions.Len(ctx)
	metrics.SessionCreated(active)
	logging.With(logging.WithSessID(ctx, s.ID), c.log).Info().
		Str("name", s.Name).
		Str("email", logging.Redact(s.Email, c.opts.Dev)).
		Int("active", active).
		Msg("session initialized")

	return &InitResult{Session: s, Greeting: c.phrases.T("greeting", s.Name)}, nil
}

func (c *chatUC) SubmitTurn(ctx context.Context, sessionID, text string) (*TurnResult, error) {
	defer logging.TraceDuration(c.log, "ChatUC.SubmitTurn")()
	ctx = logging.WithSessID(ctx, sessionID)
	log := logging.With(ctx, c.log)

	sess, err := c.sessions.Get(ctx, sessionID)
	if err != nil || !c.conversations.Has(ctx, sessionID) {
		metrics.IncTurn(metrics.TurnInvalidSession)
		return nil, domain.ErrInvalidSession
	}
	text = strings.TrimSpace(text)
	if text == "" {
		metrics.IncTurn(metrics.TurnEmptyMessage)
		return nil, domain.ErrEmptyMessage
	}
	if c.limiter != nil {
		ok, err := c.limiter.Allow(ctx, sessionID)
		switch {
		case err != nil:
			// Limiter outages must not take chat down with them.
			log.Warn().Err(err).Msg("turn limiter unavailable")
		case !ok:
			metrics.IncTurn(metrics.TurnRateLimited)
			return nil, domain.ErrRateLimited
		}
	}

	log.Debug().Str("message", logging.Preview(text, 50)).Msg("turn received")

	userTurn := model.NewTurn(model.RoleUser, text)
	var history []model.Turn
	if _, err := c.conversations.Update(ctx, sessionID, func(turns []model.Turn) []model.Turn {
		turns = append(turns, userTurn)
		history = model.RecentTurns(turns, c.opts.HistoryWindow)
		return turns
	}); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidSession
		}
		return nil, fmt.Errorf("%w: append user turn: %v", domain.ErrInternalFault, err)
	}

	reply, err := c.completer.Complete(ctx, history)
	if err != nil {
		log.Error().Err(err).Str("provider", c.completer.Provider()).Msg("completion failed, sending fallback")
		metrics.IncTurn(metrics.TurnFallback)
		stored, uerr := c.conversations.Update(ctx, sessionID, c.trim)
		if uerr != nil {
			return nil, fmt.Errorf("%w: trim log: %v", domain.ErrInternalFault, uerr)
		}
		return &TurnResult{
			Reply:        fallbackReply(c.opts.Selector),
			MessageCount: len(stored),
			Success:      false,
			Cause:        err,
		}, nil
	}

	assistantTurn := model.NewTurn(model.RoleAssistant, reply)
	var pending []model.Turn
	stored, err := c.conversations.Update(ctx, sessionID, func(turns []model.Turn) []model.Turn {
		turns = append(turns, assistantTurn)
		if len(turns)%c.opts.AutosaveEvery == 0 {
			pending = model.RecentTurns(turns, 0)
		}
		return c.trim(turns)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: append reply: %v", domain.ErrInternalFault, err)
	}

	if pending != nil {
		c.autosave(ctx, sess, pending)
	}

	metrics.IncTurn(metrics.TurnSuccess)
	log.Debug().Int("reply_chars", len(reply)).Int("messages", len(stored)).Msg("turn completed")
	return &TurnResult{Reply: reply, MessageCount: len(stored), Success: true}, nil
}

func (c *chatUC) trim(turns []model.Turn) []model.Turn {
	if len(turns) > c.opts.RetentionWindow {
		return model.RecentTurns(turns, c.opts.RetentionWindow)
	}
	return turns
}

// autosave is best-effort: failures are logged and the turn still succeeds.
func (c *chatUC) autosave(ctx context.Context, s *model.Session, turns []model.Turn) {
	log := logging.With(ctx, c.log)
	name, err := c.writer.Snapshot(ctx, s, turns)
	metrics.IncSnapshot(metrics.TriggerAuto, err == nil)
	if err != nil {
		log.Error().Err(err).Msg("autosave failed")
		return
	}
	log.Info().Str("file", name).Int("messages", len(turns)).Msg("autosaved")
}

func (c *chatUC) SaveConversation(ctx context.Context, sessionID string) (*SaveResult, error) {
	defer logging.TraceDuration(c.log, "ChatUC.SaveConversation")()

	turns, err := c.conversations.Get(ctx, sessionID)
	if err != nil {
		return nil, domain.ErrSessionNotFound
	}
	sess, err := c.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, domain.ErrSessionNotFound
	}
	if len(turns) == 0 {
		return nil, domain.ErrNothingToSave
	}

	name, err := c.writer.Snapshot(ctx, sess, turns)
	metrics.IncSnapshot(metrics.TriggerManual, err == nil)
	if err != nil {
		return nil, err
	}
	logging.With(logging.WithSessID(ctx, sessionID), c.log).Info().
		Str("file", name).Int("messages", len(turns)).Msg("conversation saved")
	return &SaveResult{Filename: name, MessageCount: len(turns)}, nil
}

func (c *chatUC) Conversation(ctx context.Context, sessionID string) (*ConversationView, error) {
	turns, err := c.conversations.Get(ctx, sessionID)
	if err != nil {
		return nil, domain.ErrSessionNotFound
	}
	sess, err := c.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, domain.ErrSessionNotFound
	}
	return &ConversationView{
		Session:  sess,
		Messages: model.RecentTurns(turns, c.opts.RetentionWindow),
	}, nil
}

func (c *chatUC) ListSessions(ctx context.Context) ([]SessionSummary, error) {
	all, err := c.sessions.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]SessionSummary, 0, len(all))
	for _, s := range all {
		n := 0
		if turns, err := c.conversations.Get(ctx, s.ID); err == nil {
			n = len(turns)
		}
		out = append(out, SessionSummary{Session: s, MessageCount: n})
	}
	return out, nil
}

func (c *chatUC) Health(ctx context.Context) Health {
	h := Health{
		ActiveSessions:   c.sessions.Len(ctx),
		APIKeyConfigured: c.completer.Configured(),
	}
	if entries, err := c.conversations.All(ctx); err == nil {
		for _, e := range entries {
			h.TotalMessages += len(e.Turns)
		}
	}
	return h
}

// ShutdownFlush snapshots every non-empty log regardless of its length and
// returns all failures joined.
func (c *chatUC) ShutdownFlush(ctx context.Context) error {
	defer logging.TraceDuration(c.log, "ChatUC.ShutdownFlush")()

	entries, err := c.conversations.All(ctx)
	if err != nil {
		return err
	}
	var (
		errs  []error
		saved int
	)
	for _, e := range entries {
		if len(e.Turns) == 0 {
			continue
		}
		sess, err := c.sessions.Get(ctx, e.SessionID)
		if err != nil {
			errs = append(errs, fmt.Errorf("session %s: %w", e.SessionID, err))
			continue
		}
		_, err = c.writer.Snapshot(ctx, sess, e.Turns)
		metrics.IncSnapshot(metrics.TriggerShutdown, err == nil)
		if err != nil {
			errs = append(errs, fmt.Errorf("session %s: %w", e.SessionID, err))
			continue
		}
		saved++
	}
	c.log.Info().Int("saved", saved).Int("failed", len(errs)).Msg("shutdown flush finished")
	return errors.Join(errs...)
}

func (c *chatUC) OpenExport(ctx context.Context) (io.ReadCloser, error) {
	return c.writer.OpenExport(ctx)
}
