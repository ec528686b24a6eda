package memory

import (
	"context"

	"aria-support-chat/internal/domain"
	"aria-support-chat/internal/domain/model"
	"aria-support-chat/internal/domain/ports/repository"
)

var _ repository.ConversationRepository = (*ConversationRepo)(nil)

// ConversationRepo keeps one turn log per session. Logs are copied on the way
// in and out, so the only way to change one is Set or Update.
type ConversationRepo struct {
	items *keyed[[]model.Turn]
}

func NewConversationRepo() *ConversationRepo {
	return &ConversationRepo{items: newKeyed[[]model.Turn]()}
}

func (r *ConversationRepo) Create(_ context.Context, sessionID string) error {
	return r.items.create(sessionID, make([]model.Turn, 0, 8))
}

func (r *ConversationRepo) Get(_ context.Context, sessionID string) ([]model.Turn, error) {
	turns, ok := r.items.get(sessionID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return model.RecentTurns(turns, 0), nil
}

func (r *ConversationRepo) Has(_ context.Context, sessionID string) bool {
	return r.items.has(sessionID)
}

func (r *ConversationRepo) Set(_ context.Context, sessionID string, turns []model.Turn) error {
	r.items.set(sessionID, model.RecentTurns(turns, 0))
	return nil
}

func (r *ConversationRepo) Update(_ context.Context, sessionID string, fn func([]model.Turn) []model.Turn) ([]model.Turn, error) {
	var out []model.Turn
	_, err := r.items.update(sessionID, func(turns []model.Turn) []model.Turn {
		next := fn(turns)
		out = model.RecentTurns(next, 0)
		return next
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ConversationRepo) All(_ context.Context) ([]repository.ConversationEntry, error) {
	out := make([]repository.ConversationEntry, 0, r.items.len())
	r.items.each(func(id string, turns []model.Turn) {
		out = append(out, repository.ConversationEntry{SessionID: id, Turns: model.RecentTurns(turns, 0)})
	})
	return out, nil
}
