package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeStreamAPI struct {
	updates   chan *DepthUpdate
	snapshots chan *BookSnapshot
}

func newFakeStreamAPI() *fakeStreamAPI {
	return &fakeStreamAPI{
		updates:   make(chan *DepthUpdate, 16),
		snapshots: make(chan *BookSnapshot, 1),
	}
}

func (f *fakeStreamAPI) DepthDiffStream(symbol *MarketSymbol) (*Subscription[*DepthUpdate], error) {
	return &Subscription[*DepthUpdate]{
		Stream:      f.updates,
		Topic:       "depth:" + symbol.String(),
		Unsubscribe: func() {},
	}, nil
}

func (f *fakeStreamAPI) DepthSnapshotStream(symbol *MarketSymbol) (*Subscription[*BookSnapshot], error) {
	return &Subscription[*BookSnapshot]{
		Stream:      f.snapshots,
		Topic:       "snapshot:" + symbol.String(),
		Unsubscribe: func() {},
	}, nil
}

func (f *fakeStreamAPI) GetOrderBook(symbol *MarketSymbol, maxDepth int) *CreateOrderBookResult {
	return &CreateOrderBookResult{Err: errors.New("not used in tests")}
}

type fakeSyncAPI struct {
	snapshot *BookSnapshot
	err      error
}

func (f *fakeSyncAPI) OrderBookSnapshot(symbol *MarketSymbol, limit int) (*BookSnapshot, error) {
	return f.snapshot, f.err
}

func TestOrderbookMaintainer_PullSnapshotFlow(t *testing.T) {
	stream := newFakeStreamAPI()
	sync := &fakeSyncAPI{snapshot: &BookSnapshot{
		LastUpdateID: 5,
		Bids:         [][]string{{"100", "1"}},
		Asks:         [][]string{{"101", "2"}},
	}}

	m := NewOrderBookMaintainer(stream, sync, SequencerOptions{
		Policy: PolicyMonotonic,
		Source: SnapshotSourcePull,
	})

	// deltas arrive before the snapshot is even requested
	stream.updates <- NewDepthUpdate(nil, [][]string{{"99", "3"}}, nil, 6, 6)
	stream.updates <- NewDepthUpdate(nil, nil, [][]string{{"101.5", "1"}}, 7, 7)

	result := m.CreateOrderBook("bitstamp", testSymbol(t), 0)
	assert.NoError(t, result.Err)
	assert.Equal(t, int64(7), result.OrderBook.Nonce, "buffered deltas replay after the snapshot")

	snapshot := result.OrderBook.TakeSnapshot(0)
	assert.Equal(t, [][]string{{"100", "1"}, {"99", "3"}}, snapshot.Bids)
	assert.Equal(t, [][]string{{"101", "2"}, {"101.5", "1"}}, snapshot.Asks)

	result.Unsubscribe()
	_, open := <-result.Done
	assert.False(t, open)
}

func TestOrderbookMaintainer_PushSnapshotFlow(t *testing.T) {
	stream := newFakeStreamAPI()

	m := NewOrderBookMaintainer(stream, nil, SequencerOptions{
		Policy: PolicyStrict,
		Source: SnapshotSourcePush,
	})

	stream.snapshots <- &BookSnapshot{
		LastUpdateID: 10,
		Bids:         [][]string{{"100", "1"}},
		Asks:         [][]string{{"101", "2"}},
	}

	result := m.CreateOrderBook("gopax", testSymbol(t), 0)
	assert.NoError(t, result.Err)
	assert.Equal(t, int64(10), result.OrderBook.Nonce)

	// a live update re-resolves the update channel
	stream.updates <- NewDepthUpdate(nil, [][]string{{"99", "1"}}, nil, 11, 11)

	deadline := time.After(2 * time.Second)
	for applied := false; !applied; {
		select {
		case book := <-result.Updates:
			applied = book.TakeSnapshot(0).LastUpdateID == 11
		case <-deadline:
			t.Fatal("no update delivered")
		}
	}

	result.Unsubscribe()
}

func TestOrderbookMaintainer_DesyncSurfacesOnDone(t *testing.T) {
	stream := newFakeStreamAPI()

	m := NewOrderBookMaintainer(stream, nil, SequencerOptions{
		Policy: PolicyStrict,
		Source: SnapshotSourcePush,
	})

	stream.snapshots <- &BookSnapshot{
		LastUpdateID: 10,
		Bids:         [][]string{{"100", "1"}},
		Asks:         [][]string{{"101", "2"}},
	}

	result := m.CreateOrderBook("gopax", testSymbol(t), 0)
	assert.NoError(t, result.Err)

	// seq 12 after nonce 10: one message lost
	stream.updates <- NewDepthUpdate(nil, [][]string{{"99", "1"}}, nil, 12, 12)

	select {
	case err := <-result.Done:
		assert.ErrorIs(t, err, ErrOrderBookOutOfSync)
	case <-time.After(2 * time.Second):
		t.Fatal("desync not surfaced")
	}
}

func TestOrderbookMaintainer_StreamClosedBeforeSeeding(t *testing.T) {
	stream := newFakeStreamAPI()
	sync := &fakeSyncAPI{snapshot: &BookSnapshot{LastUpdateID: 5}}

	m := NewOrderBookMaintainer(stream, sync, SequencerOptions{
		Policy: PolicyMonotonic,
		Source: SnapshotSourcePull,
	})

	// transport loss before the first delta ever arrives
	close(stream.updates)

	symbol := testSymbol(t)
	done := make(chan *CreateOrderBookResult, 1)
	go func() {
		done <- m.CreateOrderBook("bitstamp", symbol, 0)
	}()

	select {
	case result := <-done:
		assert.ErrorIs(t, result.Err, ErrStreamClosed)
		assert.Nil(t, result.OrderBook)
	case <-time.After(2 * time.Second):
		t.Fatal("CreateOrderBook did not return after the stream closed")
	}
}

func TestOrderbookMaintainer_SyncAPIFailure(t *testing.T) {
	stream := newFakeStreamAPI()
	sync := &fakeSyncAPI{err: errors.New("http 502")}

	m := NewOrderBookMaintainer(stream, sync, SequencerOptions{
		Policy: PolicyMonotonic,
		Source: SnapshotSourcePull,
	})

	stream.updates <- NewDepthUpdate(nil, [][]string{{"99", "3"}}, nil, 6, 6)

	result := m.CreateOrderBook("bitstamp", testSymbol(t), 0)
	assert.Error(t, result.Err)
	assert.Nil(t, result.OrderBook)
}
