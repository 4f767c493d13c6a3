// Package cache provides an optional Redis-backed read cache for the
// season map. The service degrades to direct store reads when Redis is
// unavailable, so every method is safe on a nil cache.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"nba_decade/backend/internal/metrics"
	"nba_decade/backend/internal/models"
)

const seasonMapKey = "nba_decade:season_map"

// Config holds Redis connection settings.
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// RedisCache caches the fully joined season map between recomputes.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(cfg Config, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

// GetSeasonMap returns the cached season map, or (nil, false) on a miss or
// any cache fault.
func (c *RedisCache) GetSeasonMap(ctx context.Context) (models.SeasonMap, bool) {
	if c == nil {
		return nil, false
	}

	payload, err := c.client.Get(ctx, seasonMapKey).Bytes()
	if err != nil {
		metrics.CacheMissesTotal.Inc()
		return nil, false
	}

	var seasons models.SeasonMap
	if err := json.Unmarshal(payload, &seasons); err != nil {
		metrics.CacheMissesTotal.Inc()
		return nil, false
	}

	metrics.CacheHitsTotal.Inc()
	return seasons, true
}

// SetSeasonMap stores the season map with the configured TTL. Errors are
// returned for logging but never block the read path.
func (c *RedisCache) SetSeasonMap(ctx context.Context, seasons models.SeasonMap) error {
	if c == nil {
		return nil
	}

	payload, err := json.Marshal(seasons)
	if err != nil {
		return fmt.Errorf("failed to marshal season map: %w", err)
	}

	return c.client.Set(ctx, seasonMapKey, payload, c.ttl).Err()
}

// Invalidate drops the cached season map. Called after a successful
// recompute so readers see the fresh store.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Del(ctx, seasonMapKey).Err()
}
