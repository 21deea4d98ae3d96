package kucoin

import (
	"encoding/json"

	"github.com/bookbridge-io/bookbridge/domain"
)

// level2 messages:
//
//	{
//	  "type": "message",
//	  "topic": "/market/level2:BTC-USDT",
//	  "subject": "trade.l2update",
//	  "data": {
//	    "changes": {
//	      "asks": [["18906","0.00331","14103845"]],
//	      "bids": [["18903.9","0.066","14103844"]]
//	    },
//	    "sequenceEnd": 14103845,
//	    "sequenceStart": 14103844,
//	    "symbol": "BTC-USDT",
//	    "time": 1663747970273
//	  }
//	}
//
// every sequence number occurs exactly once across updates, so a batch
// whose range does not start right after the book nonce is a gap.
type depthMessage struct {
	Data depthUpdateData `json:"data"`
}

type depthUpdateData struct {
	Changes       bookChanges `json:"changes"`
	SequenceStart int64       `json:"sequenceStart"`
	SequenceEnd   int64       `json:"sequenceEnd"`
	Symbol        string      `json:"symbol"`
	Time          int64       `json:"time"`
}

type bookChanges struct {
	Asks [][]string `json:"asks"`
	Bids [][]string `json:"bids"`
}

type StreamAPI struct {
	client       *StreamClient
	syncAPI      *SyncAPI
	pendingLimit int
}

func NewStreamAPI(client *StreamClient, syncAPI *SyncAPI, pendingLimit int) *StreamAPI {
	return &StreamAPI{
		client:       client,
		syncAPI:      syncAPI,
		pendingLimit: pendingLimit,
	}
}

func (s *StreamAPI) sequencerOptions() domain.SequencerOptions {
	return domain.SequencerOptions{
		Policy:       domain.PolicyRange,
		Source:       domain.SnapshotSourcePull,
		Granularity:  domain.GranularityLevel,
		PendingLimit: s.pendingLimit,
	}
}

func (s *StreamAPI) DepthDiffStream(symbol *domain.MarketSymbol) (*domain.Subscription[*domain.DepthUpdate], error) {
	sub, err := s.client.Subscribe("/market/level2:" + marketID(symbol))
	if err != nil {
		return nil, err
	}

	out := make(chan *domain.DepthUpdate)
	go func() {
		defer close(out)

		for msg := range sub.Stream {
			message := &depthMessage{}
			if err := json.Unmarshal(msg, message); err != nil {
				logger.Printf("unmarshaling depth update: %s", err)
				continue
			}

			update := domain.NewDepthUpdate(symbol,
				dropMarketOrderRows(message.Data.Changes.Bids),
				dropMarketOrderRows(message.Data.Changes.Asks),
				message.Data.SequenceStart, message.Data.SequenceEnd)
			update.Timestamp = message.Data.Time
			out <- update
		}
	}()

	return &domain.Subscription[*domain.DepthUpdate]{
		Stream:      out,
		Topic:       sub.Topic,
		Unsubscribe: sub.Unsubscribe,
	}, nil
}

// Changes with a zero price describe market orders that never rest on the
// book. They still consume sequence numbers, so they are dropped after the
// sequence range is recorded, not before.
func dropMarketOrderRows(rows [][]string) [][]string {
	kept := rows[:0:0]
	for _, row := range rows {
		if len(row) > 0 && row[0] == "0" {
			continue
		}
		kept = append(kept, row)
	}
	return kept
}

func (s *StreamAPI) GetOrderBook(symbol *domain.MarketSymbol, maxDepth int) *domain.CreateOrderBookResult {
	maintainer := domain.NewOrderBookMaintainer(s, s.syncAPI, s.sequencerOptions())
	return maintainer.CreateOrderBook("kucoin", symbol, maxDepth)
}
