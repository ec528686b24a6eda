//go:build !integration

package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"aria-support-chat/internal/domain"
	"aria-support-chat/internal/domain/model"
)

func TestSessionRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepo()

	s := model.NewSession("user_1", "Tui", "")
	if err := repo.Create(ctx, s); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(ctx, s); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists on duplicate, got %v", err)
	}

	got, err := repo.Get(ctx, "user_1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Tui" || got.Email != model.DefaultEmail {
		t.Errorf("unexpected session %+v", got)
	}

	// Mutating the returned copy must not leak into the store.
	got.Name = "changed"
	again, _ := repo.Get(ctx, "user_1")
	if again.Name != "Tui" {
		t.Errorf("store was mutated through a returned value")
	}

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if repo.Has(ctx, "missing") || !repo.Has(ctx, "user_1") {
		t.Errorf("Has reported wrong membership")
	}
}

func TestSessionRepo_AllKeepsCreationOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepo()
	for i := 0; i < 5; i++ {
		_ = repo.Create(ctx, model.NewSession(fmt.Sprintf("user_%d", i), "", ""))
	}
	all, _ := repo.All(ctx)
	if len(all) != 5 || repo.Len(ctx) != 5 {
		t.Fatalf("expected 5 sessions, got %d", len(all))
	}
	for i, s := range all {
		if want := fmt.Sprintf("user_%d", i); s.ID != want {
			t.Errorf("position %d: got %s want %s", i, s.ID, want)
		}
	}
}

func TestConversationRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepo()

	if _, err := repo.Update(ctx, "nope", func(log []model.Turn) []model.Turn { return log }); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown log, got %v", err)
	}

	if err := repo.Create(ctx, "s1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	turns, err := repo.Get(ctx, "s1")
	if err != nil || len(turns) != 0 {
		t.Fatalf("expected empty log, got %v %v", turns, err)
	}

	out, err := repo.Update(ctx, "s1", func(log []model.Turn) []model.Turn {
		return append(log, model.NewTurn(model.RoleUser, "hello"))
	})
	if err != nil || len(out) != 1 {
		t.Fatalf("update: %v len=%d", err, len(out))
	}

	// Returned copies are detached.
	out[0].Content = "tampered"
	turns, _ = repo.Get(ctx, "s1")
	if turns[0].Content != "hello" {
		t.Errorf("store was mutated through Update's return value")
	}

	if err := repo.Set(ctx, "s1", nil); err != nil {
		t.Fatalf("set: %v", err)
	}
	turns, _ = repo.Get(ctx, "s1")
	if len(turns) != 0 {
		t.Errorf("Set did not replace the log")
	}

	_ = repo.Create(ctx, "s2")
	all, _ := repo.All(ctx)
	if len(all) != 2 || all[0].SessionID != "s1" || all[1].SessionID != "s2" {
		t.Errorf("unexpected entries %+v", all)
	}
}

func TestConversationRepo_ConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepo()
	_ = repo.Create(ctx, "s1")

	const n = 200
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, _ = repo.Update(ctx, "s1", func(log []model.Turn) []model.Turn {
				return append(log, model.NewTurn(model.RoleUser, "x"))
			})
		}()
	}
	wg.Wait()

	turns, _ := repo.Get(ctx, "s1")
	if len(turns) != n {
		t.Fatalf("expected %d turns after concurrent appends, got %d", n, len(turns))
	}
}
