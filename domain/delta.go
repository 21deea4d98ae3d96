package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Granularity int

const (
	// GranularityLevel: rows are [price, size] aggregates.
	GranularityLevel Granularity = iota
	// GranularityOrder: rows are [price, size, entryID] per-order entries.
	GranularityOrder
)

// DepthUpdate is one incremental update unit as delivered by a provider
// stream, still carrying the exchange's string-encoded rows.
type DepthUpdate struct {
	Symbol        *MarketSymbol
	Bids          [][]string
	Asks          [][]string
	SequenceStart int64
	SequenceEnd   int64
	Timestamp     int64 // ms epoch, 0 when the feed carries none
}

func NewDepthUpdate(symbol *MarketSymbol, bids, asks [][]string, seqStart, seqEnd int64) *DepthUpdate {
	return &DepthUpdate{
		Symbol:        symbol,
		Bids:          bids,
		Asks:          asks,
		SequenceStart: seqStart,
		SequenceEnd:   seqEnd,
	}
}

type delta struct {
	price decimal.Decimal
	size  decimal.Decimal
	id    string
}

// ApplyDeltas folds a batch of rows into one side of the book, in the order
// the exchange supplied them, so a later row for the same price wins. The
// whole batch is parsed before the first mutation: a malformed row rejects
// the batch and leaves the side untouched.
func ApplyDeltas(bs *BookSide, rows [][]string, granularity Granularity) error {
	deltas, err := parseDeltas(rows, granularity)
	if err != nil {
		return err
	}

	for _, d := range deltas {
		if granularity == GranularityOrder {
			bs.StoreOrder(d.id, d.price, d.size)
		} else {
			bs.Store(d.price, d.size)
		}
	}
	return nil
}

func snapshotGranularity(rows [][]string) Granularity {
	if len(rows) > 0 && len(rows[0]) >= 3 {
		return GranularityOrder
	}
	return GranularityLevel
}

func parseDeltas(rows [][]string, granularity Granularity) ([]delta, error) {
	deltas := make([]delta, 0, len(rows))

	for _, row := range rows {
		if len(row) < 2 {
			return nil, fmt.Errorf("%w: row has %d fields", ErrMalformedUpdate, len(row))
		}

		price, err := decimal.NewFromString(row[0])
		if err != nil {
			return nil, fmt.Errorf("%w: bad price %q", ErrMalformedUpdate, row[0])
		}
		size, err := decimal.NewFromString(row[1])
		if err != nil {
			return nil, fmt.Errorf("%w: bad size %q", ErrMalformedUpdate, row[1])
		}

		d := delta{price: price, size: size}
		if granularity == GranularityOrder {
			if len(row) < 3 {
				return nil, fmt.Errorf("%w: row misses entry id", ErrMalformedUpdate)
			}
			d.id = row[2]
		}

		deltas = append(deltas, d)
	}

	return deltas, nil
}
