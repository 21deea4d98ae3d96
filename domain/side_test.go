package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestBookSide_StoreAndOverwrite(t *testing.T) {
	bs := NewBookSide(SideBid)

	bs.Store(d("10.0"), d("5"))
	bs.Store(d("10.0"), d("3"))

	best := bs.Best(0)
	assert.Equal(t, 1, bs.Len(), "overwriting a price must not create a second level")
	assert.True(t, best[0].Size.Equal(d("3")), "later store wins")
}

func TestBookSide_RemoveIsIdempotent(t *testing.T) {
	bs := NewBookSide(SideAsk)
	bs.Store(d("101"), d("2"))

	bs.Store(d("999"), d("0"))
	bs.Store(d("101"), d("0"))
	bs.Store(d("101"), d("0"))

	assert.Equal(t, 0, bs.Len(), "removing absent levels must be a no-op")
}

func TestBookSide_EquivalentDecimalStringsMerge(t *testing.T) {
	bs := NewBookSide(SideBid)

	bs.Store(d("1.50"), d("1"))
	bs.Store(d("1.5"), d("4"))

	assert.Equal(t, 1, bs.Len(), "1.50 and 1.5 are the same price level")
	assert.True(t, bs.Best(1)[0].Size.Equal(d("4")))
}

func TestBookSide_BestOrdering(t *testing.T) {
	bids := NewBookSide(SideBid)
	asks := NewBookSide(SideAsk)

	for _, p := range []string{"99", "101.5", "100", "98.7", "103"} {
		bids.Store(d(p), d("1"))
		asks.Store(d(p), d("1"))
	}

	bestBids := bids.Best(0)
	for i := 1; i < len(bestBids); i++ {
		assert.True(t, bestBids[i-1].Price.GreaterThan(bestBids[i].Price),
			"bids must be strictly descending")
	}

	bestAsks := asks.Best(0)
	for i := 1; i < len(bestAsks); i++ {
		assert.True(t, bestAsks[i-1].Price.LessThan(bestAsks[i].Price),
			"asks must be strictly ascending")
	}

	assert.Len(t, bids.Best(2), 2, "Best must honor the limit")
	assert.Len(t, bids.Best(50), 5, "limit beyond depth returns the whole side")
}

func TestBookSide_OrderGranularity(t *testing.T) {
	bs := NewBookSide(SideAsk)

	bs.StoreOrder("a", d("100"), d("1"))
	bs.StoreOrder("b", d("100"), d("2"))
	assert.True(t, bs.Best(1)[0].Size.Equal(d("3")), "entries at one price aggregate")

	// resize entry "a"
	bs.StoreOrder("a", d("100"), d("0.5"))
	assert.True(t, bs.Best(1)[0].Size.Equal(d("2.5")))

	// move entry "b" to another price
	bs.StoreOrder("b", d("101"), d("2"))
	best := bs.Best(0)
	assert.Equal(t, 2, len(best))
	assert.True(t, best[0].Size.Equal(d("0.5")))
	assert.True(t, best[1].Size.Equal(d("2")))

	// remove both
	bs.StoreOrder("a", d("100"), d("0"))
	bs.StoreOrder("b", d("101"), d("0"))
	assert.Equal(t, 0, bs.Len())

	// removing an unknown entry is a no-op
	bs.StoreOrder("ghost", d("100"), d("0"))
	assert.Equal(t, 0, bs.Len())
}
