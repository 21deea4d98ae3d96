package publisher

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/bookbridge-io/bookbridge/helpers"
)

// RedisPublisher pushes best-of-book payloads over redis pub/sub, one
// channel per provider and symbol, e.g. "bookbridge.kucoin.BTC_USDT".
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(url string) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	return &RedisPublisher{client: redis.NewClient(opts)}, nil
}

func (p *RedisPublisher) Publish(ctx context.Context, payload *BestOfBook) error {
	channel := fmt.Sprintf("bookbridge.%s.%s", payload.Provider, payload.Symbol)
	return p.client.Publish(ctx, channel, helpers.ToJsonString(payload)).Err()
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
