package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/neighborly/internal/domain"
)

const summaryKeyPrefix = "address:summary:"

// SummaryCache stores aggregated address payloads in Redis.
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSummaryCache creates a Redis-backed summary cache. A zero ttl disables
// caching.
func NewSummaryCache(client *redis.Client, ttl time.Duration) *SummaryCache {
	return &SummaryCache{
		client: client,
		ttl:    ttl,
	}
}

func summaryKey(addressID string) string {
	return summaryKeyPrefix + addressID
}

// Get returns the cached result for addressID. A miss returns (nil, nil).
func (c *SummaryCache) Get(ctx context.Context, addressID string) (*domain.AddressResult, error) {
	if c.ttl <= 0 {
		return nil, nil
	}

	data, err := c.client.Get(ctx, summaryKey(addressID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get summary: %w", err)
	}

	var res domain.AddressResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("unmarshal summary: %w", err)
	}
	return &res, nil
}

// Set stores res under its address ID with the configured TTL.
func (c *SummaryCache) Set(ctx context.Context, res *domain.AddressResult) error {
	if c.ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := c.client.Set(ctx, summaryKey(res.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set summary: %w", err)
	}
	return nil
}

// Invalidate drops the cached summaries of the given addresses.
func (c *SummaryCache) Invalidate(ctx context.Context, addressIDs ...string) error {
	if len(addressIDs) == 0 {
		return nil
	}

	keys := make([]string, len(addressIDs))
	for i, id := range addressIDs {
		keys[i] = summaryKey(id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del summary: %w", err)
	}
	return nil
}
