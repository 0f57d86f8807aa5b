// Package store holds the engine's working set of conversations.
package store

import (
	"context"
	"sync"

	"bhandara/internal/registration/models"
	"bhandara/pkg/platform/sentinel"
)

// Memory is the in-memory working set. It preserves insertion order so a
// snapshot written from it round-trips the on-disk array byte-for-byte.
// The durable copy lives with the snapshot collaborator; this map is the
// engine's view between flushes.
type Memory struct {
	mu    sync.RWMutex
	byID  map[string]*models.Conversation
	order []string
}

func NewMemory() *Memory {
	return &Memory{byID: make(map[string]*models.Conversation)}
}

// Seed replaces the working set with records loaded from a snapshot.
func (s *Memory) Seed(records []*models.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID = make(map[string]*models.Conversation, len(records))
	s.order = s.order[:0]
	for _, rec := range records {
		if rec == nil || rec.ID == "" {
			continue
		}
		if _, seen := s.byID[rec.ID]; !seen {
			s.order = append(s.order, rec.ID)
		}
		s.byID[rec.ID] = rec.Clone()
	}
}

// Create appends a new conversation.
func (s *Memory) Create(_ context.Context, rec *models.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[rec.ID]; exists {
		return sentinel.ErrInvalidState
	}
	s.byID[rec.ID] = rec.Clone()
	s.order = append(s.order, rec.ID)
	return nil
}

// Get returns a copy of the conversation, or sentinel.ErrNotFound.
func (s *Memory) Get(_ context.Context, id string) (*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return rec.Clone(), nil
}

// Update replaces an existing conversation.
func (s *Memory) Update(_ context.Context, rec *models.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[rec.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.byID[rec.ID] = rec.Clone()
	return nil
}

// All returns copies of every conversation in insertion order.
func (s *Memory) All(_ context.Context) ([]*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Conversation, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id].Clone())
	}
	return out, nil
}
