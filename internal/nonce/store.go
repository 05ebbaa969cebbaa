package nonce

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"worldfund-api/internal/observability"
	"worldfund-api/internal/security"
)

// ErrNotFound means the nonce was never issued, already consumed, or expired.
// Callers must treat all three identically: the challenge is dead.
var ErrNotFound = errors.New("nonce not found")

const keyPrefix = "siwe:nonce:"

type Store interface {
	Issue(ctx context.Context) (string, error)
	Consume(ctx context.Context, value string) error
}

// RedisStore keeps one key per outstanding nonce with a server-side TTL.
// Consume is a single DEL, so exactly one of any number of concurrent
// consumers observes the key; everyone else gets ErrNotFound.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Issue(ctx context.Context) (string, error) {
	value, err := security.NewNonceValue()
	if err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	createdAt := strconv.FormatInt(time.Now().Unix(), 10)
	if err := s.client.Set(ctx, keyPrefix+value, createdAt, s.ttl).Err(); err != nil {
		observability.RecordRepositoryOperation(ctx, "nonce", "issue", "error")
		return "", fmt.Errorf("store nonce: %w", err)
	}
	observability.RecordRepositoryOperation(ctx, "nonce", "issue", "success")
	return value, nil
}

func (s *RedisStore) Consume(ctx context.Context, value string) error {
	if value == "" {
		return ErrNotFound
	}
	removed, err := s.client.Del(ctx, keyPrefix+value).Result()
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "nonce", "consume", "error")
		return fmt.Errorf("consume nonce: %w", err)
	}
	if removed == 0 {
		observability.RecordRepositoryOperation(ctx, "nonce", "consume", "not_found")
		return ErrNotFound
	}
	observability.RecordRepositoryOperation(ctx, "nonce", "consume", "success")
	return nil
}
