package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisStore backs the key space with Redis. Keys live under a fixed prefix
// so the store shares an instance with the market cache.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: "coindash:kv:"}
}

func (s *RedisStore) Get(key string) (string, bool, error) {
	v, err := s.rdb.Get(context.Background(), s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *RedisStore) Set(key, value string) error {
	return s.rdb.Set(context.Background(), s.prefix+key, value, 0).Err()
}

func (s *RedisStore) Remove(key string) error {
	return s.rdb.Del(context.Background(), s.prefix+key).Err()
}
