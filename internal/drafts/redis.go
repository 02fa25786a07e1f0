package drafts

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "draft:"
	redisIndexKey  = "drafts:saved_at"
)

// RedisBackend stores each draft under "draft:<key>" and tracks save times
// in a sorted set so the sweep does not have to scan the keyspace.
type RedisBackend struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisBackend uses client for storage. A positive ttl also expires
// entries inside redis; zero leaves expiry to DeleteOlderThan.
func NewRedisBackend(client *redis.Client, ttl time.Duration) *RedisBackend {
	return &RedisBackend{client: client, ttl: ttl}
}

func (r *RedisBackend) Put(ctx context.Context, key string, data []byte, savedAt time.Time) error {
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, redisKeyPrefix+key, data, r.ttl)
	pipe.ZAdd(ctx, redisIndexKey, redis.Z{Score: float64(savedAt.UnixMilli()), Member: key})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("put draft %s: %w", key, err)
	}
	return nil
}

func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		// the value may have expired through the ttl; drop its index entry too
		if err := r.client.ZRem(ctx, redisIndexKey, key).Err(); err != nil {
			return nil, false, fmt.Errorf("get draft %s: %w", key, err)
		}
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get draft %s: %w", key, err)
	}
	return data, true, nil
}

func (r *RedisBackend) Delete(ctx context.Context, key string) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, redisKeyPrefix+key)
	pipe.ZRem(ctx, redisIndexKey, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete draft %s: %w", key, err)
	}
	return nil
}

func (r *RedisBackend) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	// scores are inclusive in redis; "(" makes the upper bound exclusive
	keys, err := r.client.ZRangeByScore(ctx, redisIndexKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(cutoff.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("sweep drafts: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	full := make([]string, len(keys))
	members := make([]interface{}, len(keys))
	for i, k := range keys {
		full[i] = redisKeyPrefix + k
		members[i] = k
	}
	pipe := r.client.TxPipeline()
	deleted := pipe.Del(ctx, full...)
	pipe.ZRem(ctx, redisIndexKey, members...)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("sweep drafts: %w", err)
	}
	// members whose value already expired are pruned but not counted
	return int(deleted.Val()), nil
}

func (r *RedisBackend) Close() error {
	return r.client.Close()
}
