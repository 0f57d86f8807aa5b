package audit

import (
	"context"
	"log/slog"
)

// Worker consumes events from the publisher's inbox and persists them. It
// keeps background processing testable without wiring queue implementations.
type Worker struct {
	store  Store
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(store Store, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run drains the inbox until ctx is cancelled. Append failures are logged
// and skipped; the trail is best-effort.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				w.logger.WarnContext(ctx, "failed to append audit event",
					"conversation_id", event.ConversationID,
					"action", string(event.Action),
					"error", err,
				)
			}
		}
	}
}
