// Package events serves message-event searches through a Redis cache so
// dashboard polling does not burn through the provider's rate limits.
package events

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/sparkpost-relay/internal/config"
	"github.com/ignite/sparkpost-relay/internal/pkg/logger"
	"github.com/ignite/sparkpost-relay/internal/sparkpost"
)

const keyPrefix = "sparkpost:events:"

// Searcher is the slice of the API client the cache reads through.
type Searcher interface {
	SearchEvents(ctx context.Context, params url.Values) ([]sparkpost.MessageEvent, error)
}

// Cache is a read-through TTL cache for event searches. A nil Redis
// client disables caching and every Search goes straight upstream.
type Cache struct {
	searcher Searcher
	redis    *redis.Client
	cfg      config.EventsConfig
}

func NewCache(searcher Searcher, rdb *redis.Client, cfg config.EventsConfig) *Cache {
	return &Cache{searcher: searcher, redis: rdb, cfg: cfg}
}

// Search returns events for the given filters, applying the configured
// page size and lookback window unless the caller sets their own. Cache
// failures degrade to an upstream call, never to an error.
func (c *Cache) Search(ctx context.Context, params url.Values) ([]sparkpost.MessageEvent, error) {
	query := c.withDefaults(params)
	key := cacheKey(query)

	if c.redis != nil {
		data, err := c.redis.Get(ctx, key).Bytes()
		if err == nil {
			var events []sparkpost.MessageEvent
			if err := json.Unmarshal(data, &events); err == nil {
				return events, nil
			}
			logger.Warn("discarding corrupt event cache entry", "key", key)
		} else if err != redis.Nil {
			logger.Warn("event cache read failed", "error", err.Error())
		}
	}

	events, err := c.searcher.SearchEvents(ctx, query)
	if err != nil {
		return nil, err
	}

	if c.redis != nil {
		data, err := json.Marshal(events)
		if err == nil {
			if err := c.redis.Set(ctx, key, data, c.cfg.CacheTTL()).Err(); err != nil {
				logger.Warn("event cache write failed", "error", err.Error())
			}
		}
	}
	return events, nil
}

// Invalidate drops every cached search result.
func (c *Cache) Invalidate(ctx context.Context) error {
	if c.redis == nil {
		return nil
	}
	iter := c.redis.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scanning event cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("deleting event cache keys: %w", err)
	}
	return nil
}

func (c *Cache) withDefaults(params url.Values) url.Values {
	query := url.Values{}
	if c.cfg.PerPage > 0 {
		query.Set("per_page", strconv.Itoa(c.cfg.PerPage))
	}
	if c.cfg.LookbackDays > 0 {
		from := time.Now().AddDate(0, 0, -c.cfg.LookbackDays)
		query.Set("from", from.UTC().Format("2006-01-02T15:04"))
	}
	for k, vs := range params {
		query[k] = vs
	}
	return query
}

// cacheKey derives a stable key from the encoded query; url.Values
// sorts keys during Encode, so equivalent searches share an entry.
func cacheKey(query url.Values) string {
	sum := sha256.Sum256([]byte(query.Encode()))
	return keyPrefix + hex.EncodeToString(sum[:8])
}
