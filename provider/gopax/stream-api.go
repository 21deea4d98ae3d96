package gopax

import (
	"encoding/json"
	"strings"

	"github.com/bookbridge-io/bookbridge/domain"
)

// gopax streams per-order entries, not aggregated levels. A book frame:
//
//	{
//	  "n": "OrderBookEvent",
//	  "o": {
//	    "tradingPairName": "BTC-KRW",
//	    "sequence": 17777,
//	    "bid": [["51000000", "0.5", "entry-91"]],
//	    "ask": [["51100000", "0", "entry-84"]]
//	  }
//	}
//
// The snapshot ("OrderBookSnapshot") uses the same row shape. sequence
// increments by exactly one per event, so a hole is a provable message
// loss and desyncs the book.
type bookFrame struct {
	Name string   `json:"n"`
	Body bookBody `json:"o"`
}

type bookBody struct {
	TradingPairName string     `json:"tradingPairName"`
	Sequence        int64      `json:"sequence"`
	Bid             [][]string `json:"bid"`
	Ask             [][]string `json:"ask"`
}

type StreamAPI struct {
	client       *StreamClient
	pendingLimit int
}

func NewStreamAPI(client *StreamClient, pendingLimit int) *StreamAPI {
	return &StreamAPI{
		client:       client,
		pendingLimit: pendingLimit,
	}
}

func (s *StreamAPI) sequencerOptions() domain.SequencerOptions {
	return domain.SequencerOptions{
		Policy:       domain.PolicyStrict,
		Source:       domain.SnapshotSourcePush,
		Granularity:  domain.GranularityOrder,
		PendingLimit: s.pendingLimit,
	}
}

func (s *StreamAPI) DepthDiffStream(symbol *domain.MarketSymbol) (*domain.Subscription[*domain.DepthUpdate], error) {
	sub, err := s.client.Subscribe("OrderBookEvent", marketID(symbol))
	if err != nil {
		return nil, err
	}

	out := make(chan *domain.DepthUpdate)
	go func() {
		defer close(out)

		for msg := range sub.Stream {
			frame := &bookFrame{}
			if err := json.Unmarshal(msg, frame); err != nil {
				logger.Printf("unmarshaling book event: %s", err)
				continue
			}

			out <- domain.NewDepthUpdate(symbol,
				frame.Body.Bid, frame.Body.Ask,
				frame.Body.Sequence, frame.Body.Sequence)
		}
	}()

	return &domain.Subscription[*domain.DepthUpdate]{
		Stream:      out,
		Topic:       sub.Topic,
		Unsubscribe: sub.Unsubscribe,
	}, nil
}

func (s *StreamAPI) DepthSnapshotStream(symbol *domain.MarketSymbol) (*domain.Subscription[*domain.BookSnapshot], error) {
	sub, err := s.client.Subscribe("OrderBookSnapshot", marketID(symbol))
	if err != nil {
		return nil, err
	}

	out := make(chan *domain.BookSnapshot, 1)
	go func() {
		defer close(out)

		for msg := range sub.Stream {
			frame := &bookFrame{}
			if err := json.Unmarshal(msg, frame); err != nil {
				logger.Printf("unmarshaling book snapshot: %s", err)
				continue
			}

			out <- &domain.BookSnapshot{
				Source:       domain.OrderBookSource_Provider,
				Symbol:       symbol.String(),
				LastUpdateID: frame.Body.Sequence,
				Bids:         frame.Body.Bid,
				Asks:         frame.Body.Ask,
			}
		}
	}()

	return &domain.Subscription[*domain.BookSnapshot]{
		Stream:      out,
		Topic:       sub.Topic,
		Unsubscribe: sub.Unsubscribe,
	}, nil
}

func (s *StreamAPI) GetOrderBook(symbol *domain.MarketSymbol, maxDepth int) *domain.CreateOrderBookResult {
	maintainer := domain.NewOrderBookMaintainer(s, nil, s.sequencerOptions())
	return maintainer.CreateOrderBook("gopax", symbol, maxDepth)
}

func marketID(symbol *domain.MarketSymbol) string {
	return strings.ToUpper(symbol.Join("-"))
}
