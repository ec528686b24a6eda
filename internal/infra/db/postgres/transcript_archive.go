// File: internal/infra/db/postgres/transcript_archive.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"aria-support-chat/internal/domain"
	"aria-support-chat/internal/domain/model"
	"aria-support-chat/internal/domain/ports/repository"
)

var _ repository.TranscriptArchive = (*TranscriptArchive)(nil)

const uniqueViolation = "23505"

// TranscriptArchive copies every snapshot into Postgres: one header row and
// one row per turn, written in a single transaction.
type TranscriptArchive struct {
	pool *pgxpool.Pool
}

func NewTranscriptArchive(pool *pgxpool.Pool) *TranscriptArchive {
	return &TranscriptArchive{pool: pool}
}

func (a *TranscriptArchive) Archive(ctx context.Context, snap *model.Snapshot) error {
	const insSnapshot = `
INSERT INTO conversation_snapshots
  (id, user_id, user_name, user_email, session_start, start_time, end_time, message_count)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8);`
	const insTurn = `
INSERT INTO conversation_turns (snapshot_id, seq, role, content, sent_at)
VALUES ($1,$2,$3,$4,$5);`

	err := a.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insSnapshot,
			snap.ID, snap.UserID, snap.UserInfo.Name, snap.UserInfo.Email,
			snap.UserInfo.SessionStart, snap.StartTime, snap.EndTime, snap.MessageCount,
		); err != nil {
			return err
		}

		b := &pgx.Batch{}
		for i, m := range snap.Messages {
			b.Queue(insTurn, snap.ID, i, string(m.Role), m.Content, m.Timestamp)
		}
		br := tx.SendBatch(ctx, b)
		for range snap.Messages {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return err
			}
		}
		return br.Close()
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("archive snapshot %s: %w", snap.ID, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("archive snapshot %s: %w", snap.ID, err)
	}
	return nil
}

// CountForUser returns how many snapshots were archived for userID.
func (a *TranscriptArchive) CountForUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := a.pool.QueryRow(ctx, `SELECT COUNT(*) FROM conversation_snapshots WHERE user_id = $1`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count snapshots: %w", err)
	}
	return n, nil
}
