package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"bhandara/internal/registration/models"
	"bhandara/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *Memory
	ctx   context.Context
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemory()
	s.ctx = context.Background()
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) newConversation() *models.Conversation {
	return models.NewConversation(uuid.NewString(), time.Now())
}

func (s *MemoryStoreSuite) TestCreateAndGet() {
	s.Run("creates and finds conversation by id", func() {
		rec := s.newConversation()
		s.Require().NoError(s.store.Create(s.ctx, rec))

		found, err := s.store.Get(s.ctx, rec.ID)
		s.Require().NoError(err)
		s.Equal(rec.ID, found.ID)
		s.Equal(models.StepStart, found.CurrentStep)
	})

	s.Run("returns ErrNotFound for unknown id", func() {
		_, err := s.store.Get(s.ctx, uuid.NewString())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *MemoryStoreSuite) TestUpdate() {
	s.Run("persists step changes", func() {
		rec := s.newConversation()
		s.Require().NoError(s.store.Create(s.ctx, rec))

		rec.CurrentStep = models.StepEmail
		rec.Fields["full_name"] = "Jane Doe"
		s.Require().NoError(s.store.Update(s.ctx, rec))

		found, err := s.store.Get(s.ctx, rec.ID)
		s.Require().NoError(err)
		s.Equal(models.StepEmail, found.CurrentStep)
		s.Equal("Jane Doe", found.Fields["full_name"])
	})

	s.Run("rejects update of unknown conversation", func() {
		err := s.store.Update(s.ctx, s.newConversation())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *MemoryStoreSuite) TestCopiesDoNotAlias() {
	rec := s.newConversation()
	s.Require().NoError(s.store.Create(s.ctx, rec))

	found, err := s.store.Get(s.ctx, rec.ID)
	s.Require().NoError(err)
	found.Fields["full_name"] = "mutated outside the store"

	again, err := s.store.Get(s.ctx, rec.ID)
	s.Require().NoError(err)
	s.NotContains(again.Fields, "full_name")
}

func (s *MemoryStoreSuite) TestAllPreservesInsertionOrder() {
	first := s.newConversation()
	second := s.newConversation()
	third := s.newConversation()
	for _, rec := range []*models.Conversation{first, second, third} {
		s.Require().NoError(s.store.Create(s.ctx, rec))
	}

	all, err := s.store.All(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal(first.ID, all[0].ID)
	s.Equal(second.ID, all[1].ID)
	s.Equal(third.ID, all[2].ID)
}

func (s *MemoryStoreSuite) TestSeedReplacesWorkingSet() {
	stale := s.newConversation()
	s.Require().NoError(s.store.Create(s.ctx, stale))

	loaded := []*models.Conversation{s.newConversation(), s.newConversation()}
	s.store.Seed(loaded)

	_, err := s.store.Get(s.ctx, stale.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	all, err := s.store.All(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 2)
}
