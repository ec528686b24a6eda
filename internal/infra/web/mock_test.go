package web

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"aria-support-chat/internal/domain"
	"aria-support-chat/internal/domain/model"
	"aria-support-chat/internal/usecase"
)

// mockChat is a scripted usecase.ChatUseCase.
type mockChat struct {
	mu sync.Mutex

	initErr  error
	turn     *usecase.TurnResult
	turnErr  error
	turnCtx  context.Context
	save     *usecase.SaveResult
	saveErr  error
	view     *usecase.ConversationView
	list     []usecase.SessionSummary
	health   usecase.Health
	export   string
	gotText  string
	gotID    string
	gotName  string
	gotEmail string
}

var _ usecase.ChatUseCase = (*mockChat)(nil)

func (m *mockChat) InitSession(_ context.Context, name, email string) (*usecase.InitResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gotName, m.gotEmail = name, email
	if m.initErr != nil {
		return nil, m.initErr
	}
	s := model.NewSession("user_01TEST", name, email)
	return &usecase.InitResult{Session: s, Greeting: "Kia ora " + s.Name + "! Welcome to Air New Zealand."}, nil
}

func (m *mockChat) SubmitTurn(ctx context.Context, id, text string) (*usecase.TurnResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turnCtx, m.gotID, m.gotText = ctx, id, text
	return m.turn, m.turnErr
}

func (m *mockChat) SaveConversation(_ context.Context, id string) (*usecase.SaveResult, error) {
	return m.save, m.saveErr
}

func (m *mockChat) Conversation(_ context.Context, id string) (*usecase.ConversationView, error) {
	if m.view == nil || m.view.Session.ID != id {
		return nil, domain.ErrSessionNotFound
	}
	return m.view, nil
}

func (m *mockChat) ListSessions(context.Context) ([]usecase.SessionSummary, error) {
	return m.list, nil
}

func (m *mockChat) Health(context.Context) usecase.Health { return m.health }

func (m *mockChat) ShutdownFlush(context.Context) error { return nil }

func (m *mockChat) OpenExport(context.Context) (io.ReadCloser, error) {
	if m.export == "" {
		return nil, domain.ErrNotFound
	}
	return io.NopCloser(strings.NewReader(m.export)), nil
}

func sampleSession() *model.Session {
	return &model.Session{ID: "user_01TEST", Name: "Tui", Email: "Not provided", StartedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}
}
