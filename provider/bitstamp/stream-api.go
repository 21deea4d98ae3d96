package bitstamp

import (
	"encoding/json"
	"strconv"

	"github.com/bookbridge-io/bookbridge/domain"
)

// diff_order_book messages:
//
//	{
//	  "event": "data",
//	  "channel": "diff_order_book_btcusd",
//	  "data": {
//	    "timestamp": "1583652948",
//	    "microtimestamp": "1583652948955826",
//	    "bids": [["8736.97", "0.05000000"]],
//	    "asks": [["8747.59", "0"]]
//	  }
//	}
type diffMessage struct {
	Event   string   `json:"event"`
	Channel string   `json:"channel"`
	Data    diffData `json:"data"`
}

type diffData struct {
	Timestamp      string     `json:"timestamp"`
	Microtimestamp string     `json:"microtimestamp"`
	Bids           [][]string `json:"bids"`
	Asks           [][]string `json:"asks"`
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
		// microtimestamps only order updates, they can not expose holes
		Policy:       domain.PolicyMonotonic,
		Source:       domain.SnapshotSourcePull,
		Granularity:  domain.GranularityLevel,
		PendingLimit: s.pendingLimit,
	}
}

func (s *StreamAPI) DepthDiffStream(symbol *domain.MarketSymbol) (*domain.Subscription[*domain.DepthUpdate], error) {
	sub, err := s.client.Subscribe("diff_order_book_" + marketID(symbol))
	if err != nil {
		return nil, err
	}

	out := make(chan *domain.DepthUpdate)
	go func() {
		defer close(out)

		for msg := range sub.Stream {
			message := &diffMessage{}
			if err := json.Unmarshal(msg, message); err != nil {
				logger.Printf("unmarshaling depth update: %s", err)
				continue
			}

			microtimestamp, err := strconv.ParseInt(message.Data.Microtimestamp, 10, 64)
			if err != nil {
				logger.Printf("parsing microtimestamp %q: %s", message.Data.Microtimestamp, err)
				continue
			}

			update := domain.NewDepthUpdate(symbol,
				message.Data.Bids, message.Data.Asks,
				microtimestamp, microtimestamp)
			update.Timestamp = microtimestamp / 1000
			out <- update
		}
	}()

	return &domain.Subscription[*domain.DepthUpdate]{
		Stream:      out,
		Topic:       sub.Topic,
		Unsubscribe: sub.Unsubscribe,
	}, nil
}

func (s *StreamAPI) GetOrderBook(symbol *domain.MarketSymbol, maxDepth int) *domain.CreateOrderBookResult {
	maintainer := domain.NewOrderBookMaintainer(s, s.syncAPI, s.sequencerOptions())
	return maintainer.CreateOrderBook("bitstamp", symbol, maxDepth)
}

func marketID(symbol *domain.MarketSymbol) string {
	return symbol.Join("")
}
