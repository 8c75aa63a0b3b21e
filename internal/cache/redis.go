// Package cache stores derived search results in Redis. Every failure is
// treated as a miss.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"discovery-api/internal/metrics"
	"discovery-api/internal/models"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// DefaultPrefix namespaces result keys.
const DefaultPrefix = "discovery:result:"

// locationPrecision is the number of decimals kept from a location when
// building keys, roughly 110 m.
const locationPrecision = 3

// RedisCache is a TTL result cache backed by Redis.
type RedisCache struct {
	client  redis.UniversalClient
	ttl     time.Duration
	prefix  string
	metrics *metrics.Metrics
}

// NewRedisCache creates a result cache.
func NewRedisCache(client redis.UniversalClient, ttl time.Duration, m *metrics.Metrics) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, prefix: DefaultPrefix, metrics: m}
}

// Get returns the cached result for key.
func (c *RedisCache) Get(ctx context.Context, key string) (*models.Result, bool) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.metrics.IncCacheLookups(metrics.CacheMiss)
			return nil, false
		}
		c.metrics.IncCacheLookups(metrics.CacheError)
		log.Warn().Err(err).Str("key", key).Msg("result cache read failed")
		return nil, false
	}

	var result models.Result
	if err := json.Unmarshal(data, &result); err != nil {
		c.metrics.IncCacheLookups(metrics.CacheError)
		log.Warn().Err(err).Str("key", key).Msg("discarding undecodable cached result")
		return nil, false
	}

	c.metrics.IncCacheLookups(metrics.CacheHit)
	return &result, true
}

// Set stores result under key.
func (c *RedisCache) Set(ctx context.Context, key string, result *models.Result) {
	data, err := json.Marshal(result)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("result cache encode failed")
		return
	}
	if err := c.client.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("result cache write failed")
	}
}

// HealthCheck pings Redis.
func (c *RedisCache) HealthCheck(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache: ping failed: %w", err)
	}
	return nil
}

// Key derives a cache key from a filter tuple. Equivalent filters produce the
// same key.
func Key(f models.Filters) string {
	f = f.Normalized()

	var b strings.Builder
	b.WriteString(string(f.Mode))
	b.WriteByte('|')
	b.WriteString(strings.ToLower(f.Query))
	b.WriteByte('|')
	b.WriteString(strings.ToLower(f.Category))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(f.PriceLevel))
	b.WriteByte('|')
	b.WriteString(strings.ToLower(f.Tag))
	b.WriteByte('|')
	b.WriteString(strconv.FormatBool(f.NearMe))
	b.WriteByte('|')
	if f.Location != nil && f.Location.Valid() {
		b.WriteString(roundCoord(f.Location.Lat))
		b.WriteByte(',')
		b.WriteString(roundCoord(f.Location.Lng))
	}

	return fmt.Sprintf("%016x", xxhash.Sum64String(b.String()))
}

func roundCoord(v float64) string {
	scale := math.Pow(10, locationPrecision)
	r := math.Round(v*scale) / scale
	if r == 0 {
		r = 0 // -0
	}
	return strconv.FormatFloat(r, 'f', locationPrecision, 64)
}
