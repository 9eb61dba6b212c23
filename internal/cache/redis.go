package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fortuna/hardwood/internal/season"
)

const snapshotTTL = 48 * time.Hour

// RedisCache handles caching and fast state storage
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis cache connection
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{
		client: client,
	}, nil
}

// NewRedisCacheFromClient wraps an existing client, used by tests.
func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Close closes the Redis connection
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// Client returns the underlying Redis client
func (rc *RedisCache) Client() *redis.Client {
	return rc.client
}

// HealthCheck pings Redis to verify connection
func (rc *RedisCache) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

func seasonStatsKey(year int) string {
	return "hardwood:season:" + strconv.Itoa(year) + ":stats"
}

// SetSeasonSnapshot caches a season's stat rows as a JSON blob.
func (rc *RedisCache) SetSeasonSnapshot(ctx context.Context, year int, snap []season.SnapshotRow) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding season snapshot: %w", err)
	}
	return rc.client.Set(ctx, seasonStatsKey(year), data, snapshotTTL).Err()
}

// GetSeasonSnapshot returns a cached season snapshot, or redis.Nil
// when the season is not cached.
func (rc *RedisCache) GetSeasonSnapshot(ctx context.Context, year int) ([]season.SnapshotRow, error) {
	data, err := rc.client.Get(ctx, seasonStatsKey(year)).Bytes()
	if err != nil {
		return nil, err
	}

	var snap []season.SnapshotRow
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding season snapshot: %w", err)
	}
	return snap, nil
}

// InvalidateSeason drops a season's cached snapshot.
func (rc *RedisCache) InvalidateSeason(ctx context.Context, year int) error {
	return rc.client.Del(ctx, seasonStatsKey(year)).Err()
}

// Set stores a key-value pair with TTL
func (rc *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return rc.client.Set(ctx, key, value, ttl).Err()
}

// Get retrieves a value by key
func (rc *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return rc.client.Get(ctx, key).Result()
}

// Delete removes a key
func (rc *RedisCache) Delete(ctx context.Context, keys ...string) error {
	return rc.client.Del(ctx, keys...).Err()
}
