package currencycom

import (
	"encoding/json"
	"strings"

	"github.com/bookbridge-io/bookbridge/domain"
)

// <symbol>@depth payloads, binance-family diff format:
//
//	{
//	  "stream": "btcusd@depth",
//	  "data": {
//	    "E": 1590999850000,
//	    "U": 1590999849038,
//	    "u": 1590999849041,
//	    "b": [["0.02487", "72.41"]],
//	    "a": [["0.02495", "0"]]
//	  }
//	}
type depthUpdateData struct {
	EventTime     int64      `json:"E"`
	FirstUpdateID int64      `json:"U"`
	FinalUpdateID int64      `json:"u"`
	Bids          [][]string `json:"b"`
	Asks          [][]string `json:"a"`
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
	topic := marketID(symbol) + "@depth"
	sub, err := s.client.Subscribe(topic)
	if err != nil {
		return nil, err
	}

	out := make(chan *domain.DepthUpdate)
	go func() {
		defer close(out)

		for msg := range sub.Stream {
			envelope := &streamEnvelope{}
			if err := json.Unmarshal(msg, envelope); err != nil {
				logger.Printf("unmarshaling depth update: %s", err)
				continue
			}

			data := &depthUpdateData{}
			if err := json.Unmarshal(envelope.Data, data); err != nil {
				logger.Printf("unmarshaling depth update data: %s", err)
				continue
			}

			update := domain.NewDepthUpdate(symbol,
				data.Bids, data.Asks,
				data.FirstUpdateID, data.FinalUpdateID)
			update.Timestamp = data.EventTime
			out <- update
		}
	}()

	return &domain.Subscription[*domain.DepthUpdate]{
		Stream:      out,
		Topic:       topic,
		Unsubscribe: sub.Unsubscribe,
	}, nil
}

func (s *StreamAPI) GetOrderBook(symbol *domain.MarketSymbol, maxDepth int) *domain.CreateOrderBookResult {
	maintainer := domain.NewOrderBookMaintainer(s, s.syncAPI, s.sequencerOptions())
	return maintainer.CreateOrderBook("currencycom", symbol, maxDepth)
}

func marketID(symbol *domain.MarketSymbol) string {
	return strings.ToLower(symbol.Join(""))
}
