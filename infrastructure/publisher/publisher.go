package publisher

import (
	"context"
	"log"
	"os"

	"github.com/bookbridge-io/bookbridge/config"
	"github.com/bookbridge-io/bookbridge/domain"
)

var logger = log.New(os.Stdout, "[publisher] ", log.LstdFlags)

// BestOfBook is the payload fanned out after every applied depth update.
type BestOfBook struct {
	Provider  string `json:"provider"`
	Symbol    string `json:"symbol"`
	BidPrice  string `json:"bidPrice"`
	BidSize   string `json:"bidSize"`
	AskPrice  string `json:"askPrice"`
	AskSize   string `json:"askSize"`
	Nonce     int64  `json:"nonce"`
	Timestamp int64  `json:"timestamp"`
}

func BestOfBookFrom(book *domain.OrderBook) *BestOfBook {
	payload := &BestOfBook{
		Provider: book.Provider,
		Symbol:   book.Symbol.String(),
	}

	if bid, ok := book.BestBid(); ok {
		payload.BidPrice = bid.Price.String()
		payload.BidSize = bid.Size.String()
	}
	if ask, ok := book.BestAsk(); ok {
		payload.AskPrice = ask.Price.String()
		payload.AskSize = ask.Size.String()
	}

	snapshot := book.TakeSnapshot(1)
	payload.Nonce = snapshot.LastUpdateID
	payload.Timestamp = snapshot.Timestamp
	return payload
}

// Publisher fans the best of book out to an external sink.
type Publisher interface {
	Publish(ctx context.Context, payload *BestOfBook) error
	Close() error
}

// FromConfig picks the sink. An empty PUBLISHER keeps the fanout internal.
func FromConfig(conf *config.Config) (Publisher, error) {
	switch conf.PublisherKind {
	case "redis":
		return NewRedisPublisher(conf.RedisURL)
	case "kafka":
		return NewKafkaPublisher(conf.KafkaBrokers, conf.KafkaTopic), nil
	default:
		return NewNoopPublisher(), nil
	}
}

type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher { return &NoopPublisher{} }

func (p *NoopPublisher) Publish(ctx context.Context, payload *BestOfBook) error { return nil }

func (p *NoopPublisher) Close() error { return nil }
