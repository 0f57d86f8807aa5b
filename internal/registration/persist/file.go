package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"bhandara/internal/registration/models"
)

// File persists the conversation set as one JSON array, so an existing
// conversations.json from an earlier deployment loads unchanged.
type File struct {
	path   string
	logger *slog.Logger
}

func NewFile(path string, logger *slog.Logger) *File {
	return &File{path: path, logger: logger}
}

// Load reads the snapshot. A missing file yields an empty set; a corrupt
// file is logged and treated as empty rather than blocking startup.
func (f *File) Load(ctx context.Context) ([]*models.Conversation, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", f.path, err)
	}

	var records []*models.Conversation
	if err := json.Unmarshal(raw, &records); err != nil {
		f.logger.WarnContext(ctx, "snapshot file is not valid JSON, starting empty",
			"path", f.path,
			"error", err,
		)
		return nil, nil
	}
	return records, nil
}

// Save rewrites the whole snapshot. The write goes through a temp file and
// rename so a crash mid-write cannot truncate the previous snapshot.
func (f *File) Save(_ context.Context, records []*models.Conversation) error {
	if records == nil {
		records = []*models.Conversation{}
	}
	raw, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".conversations-*.json")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Health verifies the snapshot directory is reachable.
func (f *File) Health(context.Context) error {
	_, err := os.Stat(filepath.Dir(f.path))
	return err
}
