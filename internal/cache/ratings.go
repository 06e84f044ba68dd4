// Package cache holds the Redis-backed title-rating cache. The rating is a
// derived value recomputed per read; caching it is an optimization only, so
// every method on a nil cache is a no-op and the API runs fine without Redis.
package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// noneMarker caches the "title has no reviews" case so it also avoids a query.
const noneMarker = "none"

type RatingCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRatingCache(client *redis.Client, ttl time.Duration) *RatingCache {
	if client == nil {
		return nil
	}
	return &RatingCache{client: client, ttl: ttl}
}

func ratingKey(titleID int64) string {
	return "title:rating:" + strconv.FormatInt(titleID, 10)
}

// Get returns (rating, true) on a hit; rating is nil when the cached value
// records "no reviews".
func (c *RatingCache) Get(ctx context.Context, titleID int64) (*float64, bool) {
	if c == nil {
		return nil, false
	}
	val, err := c.client.Get(ctx, ratingKey(titleID)).Result()
	if err != nil {
		return nil, false
	}
	if val == noneMarker {
		return nil, true
	}
	rating, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return nil, false
	}
	return &rating, true
}

func (c *RatingCache) Set(ctx context.Context, titleID int64, rating *float64) {
	if c == nil {
		return
	}
	val := noneMarker
	if rating != nil {
		val = strconv.FormatFloat(*rating, 'f', -1, 64)
	}
	// best effort, a failed set only costs a recompute
	c.client.Set(ctx, ratingKey(titleID), val, c.ttl)
}

// Invalidate drops the cached rating after any review write.
func (c *RatingCache) Invalidate(ctx context.Context, titleID int64) {
	if c == nil {
		return
	}
	c.client.Del(ctx, ratingKey(titleID))
}
