package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyStore records keys in Redis for a fixed TTL. It backs both
// review submission keys and consumed event IDs.
type IdempotencyStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewIdempotencyStore creates a store whose keys live under prefix.
func NewIdempotencyStore(client *redis.Client, prefix string, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *IdempotencyStore) key(id string) string {
	return s.prefix + id
}

// Claim atomically records id and reports whether this call was the first
// to do so within the TTL.
func (s *IdempotencyStore) Claim(ctx context.Context, id string) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.key(id), time.Now().UTC().Format(time.RFC3339), s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", s.prefix, err)
	}
	return ok, nil
}

// Release forgets id so that it can be claimed again.
func (s *IdempotencyStore) Release(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", s.prefix, err)
	}
	return nil
}

// Seen reports whether id was recorded.
func (s *IdempotencyStore) Seen(ctx context.Context, id string) (bool, error) {
	err := s.client.Get(ctx, s.key(id)).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	return false, fmt.Errorf("redis get %s: %w", s.prefix, err)
}

// MarkSeen records id for the TTL.
func (s *IdempotencyStore) MarkSeen(ctx context.Context, id string) error {
	if err := s.client.Set(ctx, s.key(id), time.Now().UTC().Format(time.RFC3339), s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.prefix, err)
	}
	return nil
}
