// Package cache caches facet value counts per storefront page. The counts
// are corpus-wide (never narrowed by a search selection), so one cache entry
// per page is enough and a sync or catalog change invalidates it.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/redis"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// FacetCache stores computed facet counts in Redis with a TTL. A nil client
// disables caching; Get always misses and Set and Invalidate are no-ops.
type FacetCache struct {
	client *redis.Client
	logger ectologger.Logger
	ttl    time.Duration
}

// NewFacetCache creates a new facet count cache
func NewFacetCache(client *redis.Client, ttl time.Duration, logger ectologger.Logger) *FacetCache {
	return &FacetCache{
		client: client,
		logger: logger,
		ttl:    ttl,
	}
}

// Key builds the cache key for a page's facet counts
func Key(page string) string {
	return "fern:facets:" + page
}

// Get returns the cached counts for a page, or nil on a miss
func (c *FacetCache) Get(ctx context.Context, page string) ([]models.FacetCount, error) {
	if c.client == nil {
		return nil, nil
	}
	ctx, span := tracing.StartSpan(ctx, "cache.FacetCache.Get")
	defer span.End()

	raw, err := c.client.Get(ctx, Key(page))
	if err != nil {
		if redis.IsNil(err) {
			return nil, nil
		}
		c.logger.WithContext(ctx).WithError(err).Warn("facet cache read failed")
		return nil, nil
	}

	var counts []models.FacetCount
	if err := json.Unmarshal([]byte(raw), &counts); err != nil {
		c.logger.WithContext(ctx).WithError(err).Warn("facet cache entry corrupt")
		return nil, nil
	}

	return counts, nil
}

// Set stores the counts for a page
func (c *FacetCache) Set(ctx context.Context, page string, counts []models.FacetCount) error {
	if c.client == nil {
		return nil
	}
	ctx, span := tracing.StartSpan(ctx, "cache.FacetCache.Set")
	defer span.End()

	data, err := json.Marshal(counts)
	if err != nil {
		return err
	}

	if err := c.client.Set(ctx, Key(page), data, c.ttl); err != nil {
		c.logger.WithContext(ctx).WithError(err).Warn("facet cache write failed")
	}
	return nil
}

// Invalidate drops the cached counts for the given pages
func (c *FacetCache) Invalidate(ctx context.Context, pages ...string) error {
	if c.client == nil || len(pages) == 0 {
		return nil
	}
	ctx, span := tracing.StartSpan(ctx, "cache.FacetCache.Invalidate")
	defer span.End()

	keys := make([]string, 0, len(pages))
	for _, page := range pages {
		keys = append(keys, Key(page))
	}

	if err := c.client.Del(ctx, keys...); err != nil {
		c.logger.WithContext(ctx).WithError(err).Warn("facet cache invalidation failed")
		return err
	}
	return nil
}
