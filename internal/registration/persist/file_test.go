package persist

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bhandara/internal/registration/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFileRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "conversations.json")
	snap := NewFile(path, testLogger())

	rec := models.NewConversation(uuid.NewString(), time.Now())
	rec.CurrentStep = models.StepCompleted
	rec.Fields["full_name"] = "Jane Doe"
	rec.Fields["registration_timestamp"] = "2026-01-02T10:00:00Z"

	require.NoError(t, snap.Save(ctx, []*models.Conversation{rec}))

	loaded, err := snap.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, rec.ID, loaded[0].ID)
	assert.Equal(t, models.StepCompleted, loaded[0].CurrentStep)
	assert.Equal(t, "Jane Doe", loaded[0].Fields["full_name"])
	assert.Equal(t, "2026-01-02T10:00:00Z", loaded[0].Fields["registration_timestamp"])
}

func TestFileLoadMissingFileIsEmpty(t *testing.T) {
	snap := NewFile(filepath.Join(t.TempDir(), "nope.json"), testLogger())
	loaded, err := snap.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestFileLoadCorruptFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conversations.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	snap := NewFile(path, testLogger())
	loaded, err := snap.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestFileLoadsLegacySnapshotShape(t *testing.T) {
	// A snapshot written by the previous implementation of this service.
	legacy := `[
  {
    "id": "123e4567-e89b-12d3-a456-426614174000",
    "timestamp": "2024-05-01T09:30:00",
    "steps": [],
    "current_step": "completed",
    "registration_data": {
      "full_name": "Jane Doe",
      "email": "jane@x.com",
      "phone": "+12025550123",
      "age_group": "26-40",
      "meditation_experience": "Intermediate",
      "registration_timestamp": "2024-05-01T09:35:00"
    }
  }
]`
	path := filepath.Join(t.TempDir(), "conversations.json")
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	snap := NewFile(path, testLogger())
	loaded, err := snap.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	rec := loaded[0]
	assert.Equal(t, "123e4567-e89b-12d3-a456-426614174000", rec.ID)
	assert.Equal(t, models.StepCompleted, rec.CurrentStep)
	assert.Equal(t, "Jane Doe", rec.Fields["full_name"])
	assert.Nil(t, rec.Scratch)
}

func TestFileSaveNilWritesEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conversations.json")
	snap := NewFile(path, testLogger())
	require.NoError(t, snap.Save(context.Background(), nil))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(raw))
}

func TestFileScratchNeverPersistsOnceCommitted(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "conversations.json")
	snap := NewFile(path, testLogger())

	rec := models.NewConversation(uuid.NewString(), time.Now())
	rec.Fields["travel_requirements"] = map[string]any{"mode": "Train", "location": "Chennai"}
	// committed composite: scratch slot already cleared
	require.NoError(t, snap.Save(ctx, []*models.Conversation{rec}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"scratch"`)
}
