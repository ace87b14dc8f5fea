package auth

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore records attempts in a Redis sorted set per identity, scored by
// unix nanoseconds. It survives restarts and is shared across instances.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	retention time.Duration
}

// NewRedisStore builds a store over the given client. Retention bounds how
// long attempt entries are kept and should be at least the tracker window.
func NewRedisStore(client *redis.Client, retention time.Duration) *RedisStore {
	return &RedisStore{client: client, keyPrefix: "login:attempts:", retention: retention}
}

func (s *RedisStore) key(id string) string { return s.keyPrefix + id }

func (s *RedisStore) Record(ctx context.Context, key string, at time.Time) error {
	k := s.key(key)
	pipe := s.client.TxPipeline()
	pipe.ZAdd(ctx, k, redis.Z{
		Score:  float64(at.UnixNano()),
		Member: strconv.FormatInt(at.UnixNano(), 10),
	})
	pipe.Expire(ctx, k, s.retention)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) CountSince(ctx context.Context, key string, cutoff time.Time) (int, error) {
	k := s.key(key)
	// The cutoff only moves forward, so entries before it can never be
	// counted again. Dropping them keeps the set bounded without reading
	// the wall clock, which keeps counts deterministic under an injected
	// tracker clock.
	s.client.ZRemRangeByScore(ctx, k, "-inf",
		"("+strconv.FormatInt(cutoff.UnixNano(), 10))
	n, err := s.client.ZCount(ctx, k,
		strconv.FormatInt(cutoff.UnixNano(), 10), "+inf").Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}
