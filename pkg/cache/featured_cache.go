// Package cache holds the redis-backed cache for the public featured
// departures panel. The panel is recomputed only on rotation runs, so the
// public listing can serve the last snapshot cheaply between them.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"kiliheights.com/models"

	"github.com/redis/go-redis/v9"
)

const featuredKey = "cache:departures:featured"

// FeaturedCache serves and invalidates the featured-departures snapshot.
// A nil client disables it: every method degrades to a miss/no-op.
type FeaturedCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFeaturedCache wraps the shared redis client. client may be nil.
func NewFeaturedCache(client *redis.Client, ttl time.Duration) *FeaturedCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &FeaturedCache{client: client, ttl: ttl}
}

// Get returns the cached snapshot, or (nil, nil) on miss or disabled cache.
func (c *FeaturedCache) Get(ctx context.Context) ([]models.GroupDeparture, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	data, err := c.client.Get(ctx, featuredKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var departures []models.GroupDeparture
	if err := json.Unmarshal(data, &departures); err != nil {
		// A corrupt snapshot is treated as a miss; the next Set overwrites it.
		return nil, nil
	}
	return departures, nil
}

// Set stores the snapshot with the configured TTL.
func (c *FeaturedCache) Set(ctx context.Context, departures []models.GroupDeparture) error {
	if c == nil || c.client == nil {
		return nil
	}
	payload, err := json.Marshal(departures)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, featuredKey, payload, c.ttl).Err()
}

// Invalidate drops the snapshot; called after every rotation run and after
// admin departure edits.
func (c *FeaturedCache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, featuredKey).Err()
}
