//go:build integration

package persist_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"bhandara/internal/registration/models"
	"bhandara/internal/registration/persist"
	"bhandara/pkg/testutil/containers"
)

type RedisSnapshotSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	snap  *persist.Redis
}

func TestRedisSnapshotSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisSnapshotSuite))
}

func (s *RedisSnapshotSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.snap = persist.NewRedis(s.redis.Client)
}

func (s *RedisSnapshotSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisSnapshotSuite) TestLoadEmpty() {
	records, err := s.snap.Load(context.Background())
	s.Require().NoError(err)
	s.Empty(records)
}

func (s *RedisSnapshotSuite) TestRoundTrip() {
	ctx := context.Background()

	first := models.NewConversation(uuid.NewString(), time.Now())
	second := models.NewConversation(uuid.NewString(), time.Now())
	second.CurrentStep = models.StepCompleted
	second.Fields["full_name"] = "Jane Doe"
	second.Fields["accommodation"] = map[string]any{"type": "Tent", "people": 2}

	s.Require().NoError(s.snap.Save(ctx, []*models.Conversation{first, second}))

	loaded, err := s.snap.Load(ctx)
	s.Require().NoError(err)
	s.Require().Len(loaded, 2)
	s.Equal(first.ID, loaded[0].ID)
	s.Equal(second.ID, loaded[1].ID)
	s.Equal(models.StepCompleted, loaded[1].CurrentStep)
	s.Equal("Jane Doe", loaded[1].Fields["full_name"])
}

func (s *RedisSnapshotSuite) TestSaveReplacesPreviousSnapshot() {
	ctx := context.Background()

	stale := models.NewConversation(uuid.NewString(), time.Now())
	s.Require().NoError(s.snap.Save(ctx, []*models.Conversation{stale}))

	fresh := models.NewConversation(uuid.NewString(), time.Now())
	s.Require().NoError(s.snap.Save(ctx, []*models.Conversation{fresh}))

	loaded, err := s.snap.Load(ctx)
	s.Require().NoError(err)
	s.Require().Len(loaded, 1)
	s.Equal(fresh.ID, loaded[0].ID)
}

func (s *RedisSnapshotSuite) TestHealth() {
	s.Require().NoError(s.snap.Health(context.Background()))
}
