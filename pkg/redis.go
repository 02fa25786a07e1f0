package pkg

import (
	"context"
	"fmt"
	"time"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/config"
	"github.com/redis/go-redis/v9"
)

const redisDialCheck = 5 * time.Second

// NewRedisClient opens REDIS_URL. The client is only returned once the
// server has answered a PING.
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisDialCheck)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}
	return client, nil
}
