package audit

import (
	"context"
	"sync"
)

// Store is an append-only event sink.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByConversation(ctx context.Context, conversationID string) ([]Event, error)
}

// InMemoryStore keeps events per conversation. Sufficient for a single
// process; swap for a durable sink when the trail needs to outlive restarts.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[string][]Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[string][]Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.ConversationID] = append(s.events[event.ConversationID], event)
	return nil
}

func (s *InMemoryStore) ListByConversation(_ context.Context, conversationID string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events[conversationID]...), nil
}
