// Package persist holds the durable snapshot collaborators. The engine
// flushes the full record set after every successful transition; the
// snapshot backend is the source of truth on process restart.
//
// Writes are best-effort: the engine logs and counts a failed save but
// never fails the request.
package persist

import (
	"context"

	"bhandara/internal/registration/models"
)

// Snapshotter loads and replaces the full conversation set.
type Snapshotter interface {
	Load(ctx context.Context) ([]*models.Conversation, error)
	Save(ctx context.Context, records []*models.Conversation) error
	Health(ctx context.Context) error
}
