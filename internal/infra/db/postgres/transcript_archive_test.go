//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"aria-support-chat/internal/domain"
	"aria-support-chat/internal/domain/model"
)

func TestTranscriptArchive(t *testing.T) {
	cleanup(t)
	ctx := context.Background()
	archive := NewTranscriptArchive(testPool)

	sess := model.NewSession("user_01ARCHIVE", "Tui", "")
	turns := []model.Turn{
		model.NewTurn(model.RoleUser, "Can I bring my surfboard?"),
		model.NewTurn(model.RoleAssistant, "Yes, as special baggage."),
	}
	snap := model.NewSnapshot("01HSNAPSHOT0000000000000001", sess, turns, time.Now())

	if err := archive.Archive(ctx, snap); err != nil {
		t.Fatalf("Archive: %v", err)
	}

	n, err := archive.CountForUser(ctx, sess.ID)
	if err != nil || n != 1 {
		t.Fatalf("expected 1 snapshot, got %d err=%v", n, err)
	}

	var rows int
	if err := testPool.QueryRow(ctx, `SELECT COUNT(*) FROM conversation_turns WHERE snapshot_id = $1`, snap.ID).Scan(&rows); err != nil {
		t.Fatalf("count turns: %v", err)
	}
	if rows != 2 {
		t.Fatalf("expected 2 turn rows, got %d", rows)
	}

	// Snapshots are write-once.
	if err := archive.Archive(ctx, snap); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists on duplicate, got %v", err)
	}
}
