package audit

import (
	"context"
	"log/slog"
	"time"
)

// Publisher hands events to the worker through a buffered channel so the
// request path never blocks on the trail. When the buffer is full the event
// is dropped and logged; registration flow wins over audit completeness.
type Publisher struct {
	inbox  chan Event
	logger *slog.Logger
}

const defaultInboxSize = 256

func NewPublisher(logger *slog.Logger) *Publisher {
	return &Publisher{
		inbox:  make(chan Event, defaultInboxSize),
		logger: logger,
	}
}

// Emit enqueues an event, stamping the time when unset.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case p.inbox <- event:
	default:
		p.logger.WarnContext(ctx, "audit inbox full, dropping event",
			"conversation_id", event.ConversationID,
			"action", string(event.Action),
		)
	}
}

// Inbox exposes the channel for the worker.
func (p *Publisher) Inbox() <-chan Event {
	return p.inbox
}
