package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"bhandara/internal/registration/models"
)

const defaultRedisKey = "bhandara:conversations"

// Redis stores the snapshot as one JSON value. Replace-on-save keeps the
// semantics identical to the file backend while letting multiple readers
// share the durable copy.
type Redis struct {
	client *redis.Client
	key    string
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client, key: defaultRedisKey}
}

func (r *Redis) Load(ctx context.Context) ([]*models.Conversation, error) {
	raw, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot from redis: %w", err)
	}

	var records []*models.Conversation
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return records, nil
}

func (r *Redis) Save(ctx context.Context, records []*models.Conversation) error {
	if records == nil {
		records = []*models.Conversation{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := r.client.Set(ctx, r.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("save snapshot to redis: %w", err)
	}
	return nil
}

func (r *Redis) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
