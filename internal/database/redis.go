package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"worldfund-api/internal/config"
)

// OpenRedis connects to redis and fails fast on an unreachable server
// rather than surfacing the first error on a sign-in request.
func OpenRedis(cfg *config.Config) (redis.UniversalClient, error) {
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis at %s: %w", cfg.RedisAddr, err)
	}
	return client, nil
}
