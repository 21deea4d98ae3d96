package domain

import (
	"sync"
	"time"
)

type OrderBookSource string

const (
	OrderBookSource_Provider       OrderBookSource = "Provider"
	OrderBookSource_LocalOrderBook OrderBookSource = "LocalOrderBook"
)

// BookSnapshot is the normalized wire shape of a book at a point in time.
// It is both what the service returns to clients and what seeds a fresh
// OrderBook, so serializing a book and re-parsing it as a snapshot yields
// the same book.
type BookSnapshot struct {
	Source       OrderBookSource `json:"source"`
	Symbol       string          `json:"symbol"`
	LastUpdateID int64           `json:"lastUpdateId"`
	Bids         [][]string      `json:"bids"`
	Asks         [][]string      `json:"asks"`
	Timestamp    int64           `json:"timestamp,omitempty"`
	Datetime     string          `json:"datetime,omitempty"`
}

// OrderBook is the full local book for one symbol on one provider. It is
// mutated only by its sequencer, on a single dispatch goroutine per
// connection; the mutex exists for readers (rpc, publisher) living on other
// goroutines, not for concurrent mutation.
type OrderBook struct {
	Provider string
	Symbol   *MarketSymbol
	Bids     *BookSide
	Asks     *BookSide

	// Nonce is the sequence number (or feed timestamp, for exchanges
	// without sequence numbers) of the last applied update. Never
	// decreases while the book is live.
	Nonce          int64
	LastUpdateTime int64 // ms epoch

	granularity Granularity
	mu          sync.RWMutex
}

func NewOrderBook(provider string, symbol *MarketSymbol, granularity Granularity) *OrderBook {
	return &OrderBook{
		Provider:    provider,
		Symbol:      symbol,
		Bids:        NewBookSide(SideBid),
		Asks:        NewBookSide(SideAsk),
		granularity: granularity,
	}
}

// Seed replaces the book contents wholesale from a snapshot. Aggregated
// snapshots carry [price, size] rows; exchanges that stream per-order
// entries snapshot [price, size, entryID] rows, which must seed the entry
// index so later removals by id find their aggregate.
func (ob *OrderBook) Seed(snapshot *BookSnapshot) error {
	bids := NewBookSide(SideBid)
	asks := NewBookSide(SideAsk)

	if err := ApplyDeltas(bids, snapshot.Bids, snapshotGranularity(snapshot.Bids)); err != nil {
		return err
	}
	if err := ApplyDeltas(asks, snapshot.Asks, snapshotGranularity(snapshot.Asks)); err != nil {
		return err
	}

	ob.mu.Lock()
	defer ob.mu.Unlock()

	ob.Bids = bids
	ob.Asks = asks
	ob.Nonce = snapshot.LastUpdateID
	if snapshot.Timestamp != 0 {
		ob.LastUpdateTime = snapshot.Timestamp
	} else {
		ob.LastUpdateTime = time.Now().UnixMilli()
	}
	return nil
}

// ApplyUpdate folds one delta batch into the book and advances the nonce.
// Both sides are parsed before either is touched, so a malformed update
// leaves the book exactly as it was.
func (ob *OrderBook) ApplyUpdate(update *DepthUpdate) error {
	bidDeltas, err := parseDeltas(update.Bids, ob.granularity)
	if err != nil {
		return err
	}
	askDeltas, err := parseDeltas(update.Asks, ob.granularity)
	if err != nil {
		return err
	}

	ob.mu.Lock()
	defer ob.mu.Unlock()

	storeDeltas(ob.Bids, bidDeltas, ob.granularity)
	storeDeltas(ob.Asks, askDeltas, ob.granularity)

	ob.Nonce = update.SequenceEnd
	if update.Timestamp != 0 {
		ob.LastUpdateTime = update.Timestamp
	} else {
		ob.LastUpdateTime = time.Now().UnixMilli()
	}
	return nil
}

func storeDeltas(bs *BookSide, deltas []delta, granularity Granularity) {
	for _, d := range deltas {
		if granularity == GranularityOrder {
			bs.StoreOrder(d.id, d.price, d.size)
		} else {
			bs.Store(d.price, d.size)
		}
	}
}

// Reset clears both sides and the nonce, returning the book to its
// just-created state.
func (ob *OrderBook) Reset() {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	ob.Bids.Clear()
	ob.Asks.Clear()
	ob.Nonce = 0
	ob.LastUpdateTime = 0
}

// TakeSnapshot serializes the best `limit` levels of each side into the
// normalized snapshot structure. limit <= 0 means the full depth.
func (ob *OrderBook) TakeSnapshot(limit int) *BookSnapshot {
	ob.mu.RLock()
	defer ob.mu.RUnlock()

	return &BookSnapshot{
		Source:       OrderBookSource_LocalOrderBook,
		Symbol:       ob.Symbol.String(),
		LastUpdateID: ob.Nonce,
		Bids:         serializeLevels(ob.Bids.Best(limit)),
		Asks:         serializeLevels(ob.Asks.Best(limit)),
		Timestamp:    ob.LastUpdateTime,
		Datetime:     iso8601(ob.LastUpdateTime),
	}
}

func (ob *OrderBook) BestBid() (PriceLevel, bool) {
	ob.mu.RLock()
	defer ob.mu.RUnlock()

	best := ob.Bids.Best(1)
	if len(best) == 0 {
		return PriceLevel{}, false
	}
	return best[0], true
}

func (ob *OrderBook) BestAsk() (PriceLevel, bool) {
	ob.mu.RLock()
	defer ob.mu.RUnlock()

	best := ob.Asks.Best(1)
	if len(best) == 0 {
		return PriceLevel{}, false
	}
	return best[0], true
}

func serializeLevels(levels []PriceLevel) [][]string {
	result := make([][]string, len(levels))
	for i, level := range levels {
		result[i] = []string{level.Price.String(), level.Size.String()}
	}
	return result
}

func iso8601(ms int64) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format("2006-01-02T15:04:05.000Z")
}
