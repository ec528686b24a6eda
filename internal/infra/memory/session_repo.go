package memory

import (
	"context"

	"aria-support-chat/internal/domain"
	"aria-support-chat/internal/domain/model"
	"aria-support-chat/internal/domain/ports/repository"
)

var _ repository.SessionRepository = (*SessionRepo)(nil)

// SessionRepo stores sessions by value so callers cannot alter stored identities.
type SessionRepo struct {
	items *keyed[model.Session]
}

func NewSessionRepo() *SessionRepo {
	return &SessionRepo{items: newKeyed[model.Session]()}
}

func (r *SessionRepo) Create(_ context.Context, s *model.Session) error {
	if s == nil || s.ID == "" {
		return domain.ErrInternalFault
	}
	return r.items.create(s.ID, *s)
}

func (r *SessionRepo) Get(_ context.Context, id string) (*model.Session, error) {
	s, ok := r.items.get(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (r *SessionRepo) Has(_ context.Context, id string) bool {
	return r.items.has(id)
}

func (r *SessionRepo) All(_ context.Context) ([]*model.Session, error) {
	out := make([]*model.Session, 0, r.items.len())
	r.items.each(func(_ string, s model.Session) {
		out = append(out, &s)
	})
	return out, nil
}

func (r *SessionRepo) Len(_ context.Context) int {
	return r.items.len()
}
