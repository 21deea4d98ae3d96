package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

type Side string

const (
	SideBid Side = "bid"
	SideAsk Side = "ask"
)

type PriceLevel struct {
	Price decimal.Decimal
	Size  decimal.Decimal
}

// BookSide holds one side of the price ladder. Levels are keyed by the
// canonical decimal string of the price, so "1.50" and "1.5" from the feed
// address the same level instead of creating phantom neighbours.
//
// When the exchange streams per-order entries instead of aggregated levels,
// the side additionally tracks entryID -> (price, size) so that a removal by
// id can decrement the right aggregate.
type BookSide struct {
	side    Side
	levels  map[string]PriceLevel
	entries map[string]PriceLevel
}

func NewBookSide(side Side) *BookSide {
	return &BookSide{
		side:    side,
		levels:  make(map[string]PriceLevel),
		entries: make(map[string]PriceLevel),
	}
}

// Store inserts or overwrites the level at price. A size <= 0 removes the
// level; removing an absent level is a no-op because feeds routinely send a
// removal for a level a prior message already cleared.
func (bs *BookSide) Store(price, size decimal.Decimal) {
	key := price.String()

	if size.Sign() <= 0 {
		delete(bs.levels, key)
		return
	}

	bs.levels[key] = PriceLevel{Price: price, Size: size}
}

// StoreOrder applies a per-order entry. The aggregate level at the entry's
// price is adjusted by the difference against the previously known size of
// the same entry id.
func (bs *BookSide) StoreOrder(id string, price, size decimal.Decimal) {
	prev, known := bs.entries[id]
	if known {
		bs.adjustLevel(prev.Price, prev.Size.Neg())
		delete(bs.entries, id)
	}

	if size.Sign() <= 0 {
		return
	}

	bs.entries[id] = PriceLevel{Price: price, Size: size}
	bs.adjustLevel(price, size)
}

func (bs *BookSide) adjustLevel(price, diff decimal.Decimal) {
	key := price.String()

	level, ok := bs.levels[key]
	if !ok {
		level = PriceLevel{Price: price, Size: decimal.Zero}
	}

	level.Size = level.Size.Add(diff)
	if level.Size.Sign() <= 0 {
		delete(bs.levels, key)
		return
	}

	bs.levels[key] = level
}

// Best returns the n levels closest to the spread: bids descending by price,
// asks ascending. n <= 0 returns the whole side.
func (bs *BookSide) Best(n int) []PriceLevel {
	result := make([]PriceLevel, 0, len(bs.levels))
	for _, level := range bs.levels {
		result = append(result, level)
	}

	sort.Slice(result, func(i, j int) bool {
		if bs.side == SideBid {
			return result[i].Price.GreaterThan(result[j].Price)
		}
		return result[i].Price.LessThan(result[j].Price)
	})

	if n > 0 && len(result) > n {
		result = result[:n]
	}
	return result
}

func (bs *BookSide) Len() int {
	return len(bs.levels)
}

func (bs *BookSide) Clear() {
	bs.levels = make(map[string]PriceLevel)
	bs.entries = make(map[string]PriceLevel)
}
