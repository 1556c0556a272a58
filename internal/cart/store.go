package cart

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// Store is the synchronous session copy of a cart, written on every mutation.
type Store interface {
	Save(ctx context.Context, userID string, data []byte) error
	Load(ctx context.Context, userID string) ([]byte, error)
	Delete(ctx context.Context, userID string) error
}

// RedisStore keeps one cart blob per user under a fixed key prefix.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) key(userID string) string {
	return "cart:" + userID
}

func (s *RedisStore) Save(ctx context.Context, userID string, data []byte) error {
	return s.client.Set(ctx, s.key(userID), data, s.ttl).Err()
}

// Load returns nil data when no cart is stored for the user.
func (s *RedisStore) Load(ctx context.Context, userID string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	return s.client.Del(ctx, s.key(userID)).Err()
}
