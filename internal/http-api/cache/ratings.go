// Package cache memoizes computed title ratings. Entries are deleted
// on every review mutation; should that delete fail, the TTL bounds
// how long a stale mean can be served.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RatingCache stores the computed mean score per title. Get returning
// ok=false means the value must be recomputed from the store.
type RatingCache interface {
	Get(ctx context.Context, titleID int64) (float64, bool, error)
	Set(ctx context.Context, titleID int64, rating float64) error
	Invalidate(ctx context.Context, titleID int64) error
}

type redisRatingCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRatingCache(client *redis.Client, ttl time.Duration) RatingCache {
	return &redisRatingCache{client: client, ttl: ttl}
}

func ratingKey(titleID int64) string {
	return fmt.Sprintf("rating:title:%d", titleID)
}

func (c *redisRatingCache) Get(ctx context.Context, titleID int64) (float64, bool, error) {
	val, err := c.client.Get(ctx, ratingKey(titleID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	rating, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false, err
	}
	return rating, true, nil
}

func (c *redisRatingCache) Set(ctx context.Context, titleID int64, rating float64) error {
	return c.client.Set(ctx, ratingKey(titleID), strconv.FormatFloat(rating, 'f', -1, 64), c.ttl).Err()
}

func (c *redisRatingCache) Invalidate(ctx context.Context, titleID int64) error {
	return c.client.Del(ctx, ratingKey(titleID)).Err()
}

// memoryRatingCache is a process-local RatingCache used in tests and
// when no redis instance is configured.
type memoryRatingCache struct {
	mu      sync.RWMutex
	ratings map[int64]float64
}

func NewMemoryRatingCache() RatingCache {
	return &memoryRatingCache{ratings: make(map[int64]float64)}
}

func (c *memoryRatingCache) Get(_ context.Context, titleID int64) (float64, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rating, ok := c.ratings[titleID]
	return rating, ok, nil
}

func (c *memoryRatingCache) Set(_ context.Context, titleID int64, rating float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ratings[titleID] = rating
	return nil
}

func (c *memoryRatingCache) Invalidate(_ context.Context, titleID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.ratings, titleID)
	return nil
}
