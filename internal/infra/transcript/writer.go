// Package transcript writes conversation snapshots to the local filesystem:
// one pretty-printed JSON file per save plus a shared CSV export.
package transcript

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"aria-support-chat/internal/domain"
	"aria-support-chat/internal/domain/model"
	"aria-support-chat/internal/domain/ports/repository"
	"aria-support-chat/internal/infra/metrics"
)

// Compile-time check
var _ repository.TranscriptWriter = (*Writer)(nil)

const fileStamp = "2006-01-02T15-04-05"

var unsafeID = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// Writer serializes every snapshot behind one mutex so JSON files and CSV rows
// from concurrent saves never interleave.
type Writer struct {
	dir      string
	csvPath  string
	archives []repository.TranscriptArchive
	log      *zerolog.Logger

	mu  sync.Mutex
	now func() time.Time
}

// NewWriter creates dir when missing.
func NewWriter(dir, csvName string, logger *zerolog.Logger, archives ...repository.TranscriptArchive) (*Writer, error) {
	if csvName == "" {
		csvName = "all_conversations.csv"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	l := logger.With().Str("component", "transcript").Logger()
	return &Writer{
		dir:      dir,
		csvPath:  filepath.Join(dir, csvName),
		archives: archives,
		log:      &l,
		now:      time.Now,
	}, nil
}

func (w *Writer) Dir() string { return w.dir }

func (w *Writer) Snapshot(ctx context.Context, s *model.Session, turns []model.Turn) (string, error) {
	if len(turns) == 0 {
		return "", domain.ErrNothingToSave
	}

	w.mu.Lock()
	at := w.now().UTC()
	snap := model.NewSnapshot(ulid.Make().String(), s, turns, at)
	name, err := w.writeJSON(snap, at)
	if err == nil {
		err = w.appendCSV(snap)
	}
	w.mu.Unlock()
	if err != nil {
		return name, err
	}
	metrics.AddSnapshotRows(len(snap.Messages))

	for _, a := range w.archives {
		if aerr := a.Archive(ctx, snap); aerr != nil {
			w.log.Warn().Err(aerr).Str("snapshot_id", snap.ID).Str("file", name).Msg("archive failed")
		}
	}
	w.log.Debug().Str("file", name).Int("messages", snap.MessageCount).Msg("snapshot written")
	return name, nil
}

// writeJSON never overwrites: on a name clash within the same second it adds _2, _3, ...
func (w *Writer) writeJSON(snap *model.Snapshot, at time.Time) (string, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	base := unsafeID.ReplaceAllString(snap.UserID, "_") + "_" + at.Format(fileStamp)

	for n := 1; ; n++ {
		name := base + ".json"
		if n > 1 {
			name = fmt.Sprintf("%s_%d.json", base, n)
		}
		f, err := os.OpenFile(filepath.Join(w.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create snapshot: %w", err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			return name, fmt.Errorf("write snapshot: %w", err)
		}
		if err := f.Close(); err != nil {
			return name, fmt.Errorf("close snapshot: %w", err)
		}
		return name, nil
	}
}

func (w *Writer) appendCSV(snap *model.Snapshot) error {
	f, err := os.OpenFile(w.csvPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat export: %w", err)
	}
	var buf []byte
	if st.Size() == 0 {
		buf = append(buf, csvHeader...)
	}
	buf = appendRows(buf, snap)
	if _, err := f.Write(buf); err != nil {
		return fmt.Errorf("append export: %w", err)
	}
	return nil
}

// OpenExport fails with domain.ErrNotFound until the first snapshot exists.
func (w *Writer) OpenExport(_ context.Context) (io.ReadCloser, error) {
	f, err := os.Open(w.csvPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	return f, nil
}
