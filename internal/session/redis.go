package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	apperrors "order-chatbot/internal/common/errors"
	"order-chatbot/internal/dialogue"

	"github.com/redis/go-redis/v9"
)

// RedisStore shares slots between service instances.
type RedisStore struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
}

func NewRedisStore(client *redis.Client, ttl time.Duration, keyPrefix string) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, keyPrefix: keyPrefix}
}

func (r *RedisStore) key(conversationID string) string {
	return r.keyPrefix + conversationID
}

func (r *RedisStore) Load(ctx context.Context, conversationID string) (dialogue.Slots, error) {
	raw, err := r.client.Get(ctx, r.key(conversationID)).Result()
	if errors.Is(err, redis.Nil) {
		return dialogue.Slots{}, nil
	}
	if err != nil {
		return nil, apperrors.NewSessionStoreFailedError(err)
	}

	slots := dialogue.Slots{}
	if err := json.Unmarshal([]byte(raw), &slots); err != nil {
		return nil, apperrors.NewSessionStoreFailedError(err)
	}
	return slots, nil
}

func (r *RedisStore) Save(ctx context.Context, conversationID string, slots dialogue.Slots) error {
	if slots.Empty() {
		return r.Clear(ctx, conversationID)
	}

	data, err := json.Marshal(slots)
	if err != nil {
		return apperrors.NewSessionStoreFailedError(err)
	}
	if err := r.client.Set(ctx, r.key(conversationID), string(data), r.ttl).Err(); err != nil {
		return apperrors.NewSessionStoreFailedError(err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context, conversationID string) error {
	if err := r.client.Del(ctx, r.key(conversationID)).Err(); err != nil {
		return apperrors.NewSessionStoreFailedError(err)
	}
	return nil
}
