package ascendex

import (
	"encoding/json"
	"strings"

	"github.com/bookbridge-io/bookbridge/domain"
)

// depth frames:
//
//	{
//	  "m": "depth",
//	  "symbol": "BTC/USDT",
//	  "data": {
//	    "ts": 1647527417715,
//	    "seqnum": 28590257013,
//	    "asks": [["40990.47","0.01619"], ["41021.21","0"]],
//	    "bids": [["40990.46","0.76114"]]
//	  }
//	}
//
// snapshots arrive in the same shape with m = "depth-snapshot". seqnum is
// monotonically increasing but not dense, so gaps can not be told apart
// from inactivity: the book runs overwrite-by-recency.
type depthFrame struct {
	M      string    `json:"m"`
	Symbol string    `json:"symbol"`
	Data   depthData `json:"data"`
}

type depthData struct {
	Ts     int64      `json:"ts"`
	Seqnum int64      `json:"seqnum"`
	Asks   [][]string `json:"asks"`
	Bids   [][]string `json:"bids"`
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
		Policy:       domain.PolicyMonotonic,
		Source:       domain.SnapshotSourcePush,
		Granularity:  domain.GranularityLevel,
		PendingLimit: s.pendingLimit,
	}
}

func (s *StreamAPI) DepthDiffStream(symbol *domain.MarketSymbol) (*domain.Subscription[*domain.DepthUpdate], error) {
	sub, err := s.client.Subscribe("depth:" + marketID(symbol))
	if err != nil {
		return nil, err
	}

	out := make(chan *domain.DepthUpdate)
	go func() {
		defer close(out)

		for msg := range sub.Stream {
			frame := &depthFrame{}
			if err := json.Unmarshal(msg, frame); err != nil {
				logger.Printf("unmarshaling depth update: %s", err)
				continue
			}

			update := domain.NewDepthUpdate(symbol,
				frame.Data.Bids, frame.Data.Asks,
				frame.Data.Seqnum, frame.Data.Seqnum)
			update.Timestamp = frame.Data.Ts
			out <- update
		}
	}()

	return &domain.Subscription[*domain.DepthUpdate]{
		Stream:      out,
		Topic:       sub.Topic,
		Unsubscribe: sub.Unsubscribe,
	}, nil
}

func (s *StreamAPI) DepthSnapshotStream(symbol *domain.MarketSymbol) (*domain.Subscription[*domain.BookSnapshot], error) {
	sub, err := s.client.Subscribe("depth-snapshot:" + marketID(symbol))
	if err != nil {
		return nil, err
	}

	out := make(chan *domain.BookSnapshot, 1)
	go func() {
		defer close(out)

		for msg := range sub.Stream {
			frame := &depthFrame{}
			if err := json.Unmarshal(msg, frame); err != nil {
				logger.Printf("unmarshaling depth snapshot: %s", err)
				continue
			}

			out <- &domain.BookSnapshot{
				Source:       domain.OrderBookSource_Provider,
				Symbol:       symbol.String(),
				LastUpdateID: frame.Data.Seqnum,
				Bids:         frame.Data.Bids,
				Asks:         frame.Data.Asks,
				Timestamp:    frame.Data.Ts,
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
	return maintainer.CreateOrderBook("ascendex", symbol, maxDepth)
}

func marketID(symbol *domain.MarketSymbol) string {
	return strings.ToUpper(symbol.Join("/"))
}
