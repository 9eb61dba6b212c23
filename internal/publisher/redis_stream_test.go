package publisher

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func testPublisher(t *testing.T) (*RedisPublisher, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return NewRedisPublisherFromClient(rdb), rdb
}

func TestPublishGamesIngested(t *testing.T) {
	rp, rdb := testPublisher(t)
	ctx := context.Background()

	evt := GamesIngestedEvent{Season: 2020, Date: "2020-01-15", NewGames: 42, Teams: 353}
	if err := rp.PublishGamesIngested(ctx, evt); err != nil {
		t.Fatalf("publish: %v", err)
	}

	msgs, err := rdb.XRange(ctx, StreamGamesIngested, "-", "+").Result()
	if err != nil {
		t.Fatalf("xrange: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d messages; want 1", len(msgs))
	}

	var got GamesIngestedEvent
	if err := json.Unmarshal([]byte(msgs[0].Values["data"].(string)), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != evt {
		t.Errorf("got %+v; want %+v", got, evt)
	}
	if _, ok := msgs[0].Values["timestamp"]; !ok {
		t.Error("message missing timestamp field")
	}
}

func TestPublishStatsRefreshed(t *testing.T) {
	rp, rdb := testPublisher(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		evt := StatsRefreshedEvent{Season: 2020, Teams: 353, Games: 5000 + i}
		if err := rp.PublishStatsRefreshed(ctx, evt); err != nil {
			t.Fatalf("publish %d: %v", i, err)
		}
	}

	n, err := rdb.XLen(ctx, StreamStatsRefreshed).Result()
	if err != nil {
		t.Fatalf("xlen: %v", err)
	}
	if n != 3 {
		t.Errorf("stream length = %d; want 3", n)
	}
}
