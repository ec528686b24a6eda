// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"aria-support-chat/internal/domain"
	"aria-support-chat/internal/domain/model"
	"aria-support-chat/internal/domain/ports/adapter"
)

// fakeCompleter replies with a numbered echo unless err is set.
type fakeCompleter struct {
	mu         sync.Mutex
	err        error
	configured bool
	calls      int
	histories  [][]model.Turn
}

func newFakeCompleter() *fakeCompleter { return &fakeCompleter{configured: true} }

func (f *fakeCompleter) Complete(_ context.Context, history []model.Turn) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.histories = append(f.histories, history)
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("reply %d", f.calls), nil
}

func (f *fakeCompleter) Configured() bool { return f.configured }
func (f *fakeCompleter) Provider() string { return "fake" }

func (f *fakeCompleter) lastHistory() []model.Turn {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.histories) == 0 {
		return nil
	}
	return f.histories[len(f.histories)-1]
}

// fakeWriter records snapshots in memory.
type fakeWriter struct {
	mu        sync.Mutex
	err       error
	snapshots [][]model.Turn
	sessions  []string
}

func (w *fakeWriter) Snapshot(_ context.Context, s *model.Session, turns []model.Turn) (string, error) {
	if len(turns) == 0 {
		return "", domain.ErrNothingToSave
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return "", w.err
	}
	cp := make([]model.Turn, len(turns))
	copy(cp, turns)
	w.snapshots = append(w.snapshots, cp)
	w.sessions = append(w.sessions, s.ID)
	return fmt.Sprintf("%s_%d.json", s.ID, len(w.snapshots)), nil
}

func (w *fakeWriter) OpenExport(_ context.Context) (io.ReadCloser, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.snapshots) == 0 {
		return nil, domain.ErrNotFound
	}
	return io.NopCloser(strings.NewReader("User ID\n")), nil
}

func (w *fakeWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.snapshots)
}

// fakeLimiter allows the first n turns per key.
type fakeLimiter struct {
	mu   sync.Mutex
	n    int
	seen map[string]int
	err  error
}

var _ adapter.TurnLimiter = (*fakeLimiter)(nil)

func (l *fakeLimiter) Allow(_ context.Context, key string) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.seen == nil {
		l.seen = map[string]int{}
	}
	l.seen[key]++
	return l.seen[key] <= l.n, nil
}

type fakePhrases struct{}

func (fakePhrases) T(key string, args ...interface{}) string {
	if key == "greeting" {
		return fmt.Sprintf("Kia ora %s! Welcome to Air New Zealand.", args...)
	}
	return key
}

// fakeAI is a scripted adapter.AIServiceAdapter.
type fakeAI struct {
	key    bool
	reply  string
	err    error
	block  bool
	tokens int
	got    []adapter.Message
}

func (f *fakeAI) Provider() string { return "fake" }
func (f *fakeAI) Model() string    { return "fake-model" }
func (f *fakeAI) Configured() bool { return f.key }

func (f *fakeAI) Chat(ctx context.Context, messages []adapter.Message) (string, error) {
	f.got = messages
	if f.block {
		<-ctx.Done()
		return "", fmt.Errorf("post: %w", ctx.Err())
	}
	return f.reply, f.err
}

func (f *fakeAI) CountTokens(messages []adapter.Message) (int, error) {
	if f.tokens == 0 {
		return 0, errors.New("no counter")
	}
	return f.tokens, nil
}
