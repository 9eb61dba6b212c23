package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	StreamGamesIngested  = "cbb.games.ingested"
	StreamStatsRefreshed = "cbb.stats.refreshed"
)

// GamesIngestedEvent announces that a scrape pass landed new games.
type GamesIngestedEvent struct {
	Season   int    `json:"season"`
	Date     string `json:"date"`
	NewGames int    `json:"new_games"`
	Teams    int    `json:"teams"`
}

// StatsRefreshedEvent announces that a season's ratings were recomputed.
type StatsRefreshedEvent struct {
	Season int `json:"season"`
	Teams  int `json:"teams"`
	Games  int `json:"games"`
}

// RedisPublisher publishes pipeline events to Redis streams
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher creates a new Redis stream publisher
func NewRedisPublisher(redisURL string) (*RedisPublisher, error) {
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

	return &RedisPublisher{
		client: client,
	}, nil
}

// NewRedisPublisherFromClient wraps an existing client, used by tests
// and when sharing the cache connection.
func NewRedisPublisherFromClient(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

// Close closes the Redis connection
func (rp *RedisPublisher) Close() error {
	return rp.client.Close()
}

// PublishGamesIngested publishes an ingest event to the stream
func (rp *RedisPublisher) PublishGamesIngested(ctx context.Context, event GamesIngestedEvent) error {
	return rp.publish(ctx, StreamGamesIngested, event)
}

// PublishStatsRefreshed publishes a stats refresh event to the stream
func (rp *RedisPublisher) PublishStatsRefreshed(ctx context.Context, event StatsRefreshedEvent) error {
	return rp.publish(ctx, StreamStatsRefreshed, event)
}

func (rp *RedisPublisher) publish(ctx context.Context, stream string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return rp.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
}
