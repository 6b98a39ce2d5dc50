package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a session store backed by Redis. Expiry is enforced by
// Redis itself via the per-key TTL set at write time.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed session store. The TTL must be the
// same value used for the session cookie's Max-Age.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Put(ctx context.Context, token string, id Identity) error {
	data, err := json.Marshal(id)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, token, data, s.ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, token string) (Identity, error) {
	data, err := s.client.Get(ctx, token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Identity{}, ErrNotFound
		}
		return Identity{}, err
	}
	return decodeIdentity(data)
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, token).Err()
}

var _ Store = (*RedisStore)(nil)
