// Package cache is a TTL cache for market-data responses, so repeated
// dashboard loads within the freshness window do not hammer the upstream API.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// MarketCache stores JSON payloads in Redis under a fixed prefix. A nil
// MarketCache is valid and caches nothing, which is how the server runs when
// no Redis is configured.
type MarketCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *logrus.Logger
}

func New(rdb *redis.Client, ttl time.Duration, log *logrus.Logger) *MarketCache {
	return &MarketCache{rdb: rdb, ttl: ttl, log: log}
}

// Get unmarshals a cached payload into out and reports whether it was found.
func (c *MarketCache) Get(ctx context.Context, key string, out interface{}) bool {
	if c == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, "coindash:cache:"+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		c.log.Warnf("cache get %s: %v", key, err)
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.log.Warnf("cache entry %s is not valid JSON, ignoring: %v", key, err)
		return false
	}
	return true
}

// Set stores a payload under the cache TTL. Failures only log; the caller
// already has the data.
func (c *MarketCache) Set(ctx context.Context, key string, v interface{}) {
	if c == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		c.log.Warnf("cache marshal %s: %v", key, err)
		return
	}
	if err := c.rdb.Set(ctx, "coindash:cache:"+key, b, c.ttl).Err(); err != nil {
		c.log.Warnf("cache set %s: %v", key, err)
	}
}
