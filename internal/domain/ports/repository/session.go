package repository

import (
	"context"

	"aria-support-chat/internal/domain/model"
)

// -----------------------------
// Sessions
// -----------------------------

// SessionRepository holds session identities keyed by session ID.
type SessionRepository interface {
	// Create fails with domain.ErrAlreadyExists when the ID is taken.
	Create(ctx context.Context, s *model.Session) error
	// Get fails with domain.ErrNotFound.
	Get(ctx context.Context, id string) (*model.Session, error)
	Has(ctx context.Context, id string) bool
	// All returns every session in creation order.
	All(ctx context.Context) ([]*model.Session, error)
	Len(ctx context.Context) int
}

// -----------------------------
// Conversations
// -----------------------------

// ConversationEntry pairs a session ID with a copy of its log.
type ConversationEntry struct {
	SessionID string
	Turns     []model.Turn
}

// ConversationRepository holds one ordered log per session ID.
type ConversationRepository interface {
	// Create registers an empty log; fails with domain.ErrAlreadyExists.
	Create(ctx context.Context, sessionID string) error
	// Get returns a copy of the log; fails with domain.ErrNotFound.
	Get(ctx context.Context, sessionID string) ([]model.Turn, error)
	Has(ctx context.Context, sessionID string) bool
	// Set replaces the log.
	Set(ctx context.Context, sessionID string, turns []model.Turn) error
	// Update applies fn to the log atomically and stores its result.
	// It returns a copy of the stored log.
	Update(ctx context.Context, sessionID string, fn func([]model.Turn) []model.Turn) ([]model.Turn, error)
	// All returns every log in creation order.
	All(ctx context.Context) ([]ConversationEntry, error)
}
