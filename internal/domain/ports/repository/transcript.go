package repository

import (
	"context"
	"io"

	"aria-support-chat/internal/domain/model"
)

// TranscriptWriter produces durable snapshots of conversation logs.
type TranscriptWriter interface {
	// Snapshot writes a new, write-once record and returns its artifact name.
	// It fails with domain.ErrNothingToSave when turns is empty.
	Snapshot(ctx context.Context, s *model.Session, turns []model.Turn) (string, error)
	// OpenExport opens the flattened export; domain.ErrNotFound before the first snapshot.
	OpenExport(ctx context.Context) (io.ReadCloser, error)
}

// TranscriptArchive receives every snapshot after it has been written to disk.
type TranscriptArchive interface {
	Archive(ctx context.Context, snap *model.Snapshot) error
}
