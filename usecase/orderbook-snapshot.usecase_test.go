package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookbridge-io/bookbridge/domain"
	"github.com/bookbridge-io/bookbridge/infrastructure/publisher"
)

type fakeStreamAPI struct {
	updates chan *domain.OrderBook
	done    chan error
}

func (f *fakeStreamAPI) DepthDiffStream(symbol *domain.MarketSymbol) (*domain.Subscription[*domain.DepthUpdate], error) {
	panic("not used")
}

func (f *fakeStreamAPI) GetOrderBook(symbol *domain.MarketSymbol, maxDepth int) *domain.CreateOrderBookResult {
	book := domain.NewOrderBook("fake", symbol, domain.GranularityLevel)
	if err := book.Seed(&domain.BookSnapshot{
		LastUpdateID: 5,
		Bids:         [][]string{{"100", "1"}},
		Asks:         [][]string{{"101", "2"}},
	}); err != nil {
		return &domain.CreateOrderBookResult{Err: err}
	}

	return &domain.CreateOrderBookResult{
		OrderBook:   book,
		Snapshot:    book.TakeSnapshot(maxDepth),
		Updates:     f.updates,
		Done:        f.done,
		StaleDrops:  func() int64 { return 0 },
		Unsubscribe: func() {},
	}
}

type fakeSyncAPI struct{}

func (f *fakeSyncAPI) OrderBookSnapshot(symbol *domain.MarketSymbol, limit int) (*domain.BookSnapshot, error) {
	return &domain.BookSnapshot{
		Source:       domain.OrderBookSource_Provider,
		Symbol:       symbol.String(),
		LastUpdateID: 3,
		Bids:         [][]string{{"99", "1"}},
		Asks:         [][]string{{"102", "1"}},
	}, nil
}

type fakeConnManager struct {
	stream *fakeStreamAPI
	sync   *fakeSyncAPI
}

func (f *fakeConnManager) StreamAPI(provider string) (domain.ProviderStreamAPI, error) {
	if f.stream == nil {
		return nil, domain.ErrProviderNotFound
	}
	return f.stream, nil
}

func (f *fakeConnManager) SyncAPI(provider string) (domain.ProviderSyncAPI, error) {
	if f.sync == nil {
		return nil, domain.ErrProviderNotFound
	}
	return f.sync, nil
}

type recordingPublisher struct {
	mu       sync.Mutex
	payloads []*publisher.BestOfBook
}

func (p *recordingPublisher) Publish(ctx context.Context, payload *publisher.BestOfBook) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.payloads)
}

func mustSymbol(t *testing.T) *domain.MarketSymbol {
	t.Helper()
	symbol, err := domain.NewMarketSymbolFromString("BTC_USDT")
	require.NoError(t, err)
	return symbol
}

func TestGetOrderBookSnapshot_FallsBackToProviderWhileSeeding(t *testing.T) {
	cm := &fakeConnManager{
		stream: &fakeStreamAPI{updates: make(chan *domain.OrderBook), done: make(chan error)},
		sync:   &fakeSyncAPI{},
	}
	uc := NewOrderBookSnapshotUseCase(cm, publisher.NewNoopPublisher())
	symbol := mustSymbol(t)

	snapshot, err := uc.GetOrderBookSnapshot("fake", symbol, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderBookSource_Provider, snapshot.Source)
	assert.Equal(t, int64(3), snapshot.LastUpdateID)

	// the background create finishes and later calls serve the local book
	require.Eventually(t, func() bool {
		s, err := uc.GetOrderBookSnapshot("fake", symbol, 0)
		return err == nil && s.Source == domain.OrderBookSource_LocalOrderBook
	}, 2*time.Second, 10*time.Millisecond)

	snapshot, err = uc.GetOrderBookSnapshot("fake", symbol, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), snapshot.LastUpdateID)
}

func TestGetLocalOrderBook_CreatesAndRetiresOnDesync(t *testing.T) {
	stream := &fakeStreamAPI{updates: make(chan *domain.OrderBook), done: make(chan error, 1)}
	cm := &fakeConnManager{stream: stream, sync: &fakeSyncAPI{}}
	uc := NewOrderBookSnapshotUseCase(cm, publisher.NewNoopPublisher())
	symbol := mustSymbol(t)

	book, err := uc.GetLocalOrderBook("fake", symbol)
	require.NoError(t, err)
	assert.Equal(t, int64(5), book.Nonce)

	again, err := uc.GetLocalOrderBook("fake", symbol)
	require.NoError(t, err)
	assert.Same(t, book, again)

	// a desync retires the book from storage
	stream.done <- domain.ErrOrderBookOutOfSync
	close(stream.done)
	close(stream.updates)

	require.Eventually(t, func() bool {
		_, err := uc.storage.Get("fake", symbol)
		return err != nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatch_ForwardsUpdatesToPublisher(t *testing.T) {
	stream := &fakeStreamAPI{updates: make(chan *domain.OrderBook, 4), done: make(chan error, 1)}
	cm := &fakeConnManager{stream: stream, sync: &fakeSyncAPI{}}
	pub := &recordingPublisher{}
	uc := NewOrderBookSnapshotUseCase(cm, pub)
	symbol := mustSymbol(t)

	book, err := uc.GetLocalOrderBook("fake", symbol)
	require.NoError(t, err)

	stream.updates <- book
	stream.updates <- book

	require.Eventually(t, func() bool {
		return pub.count() == 2
	}, 2*time.Second, 10*time.Millisecond)

	pub.mu.Lock()
	defer pub.mu.Unlock()
	assert.Equal(t, "fake", pub.payloads[0].Provider)
	assert.Equal(t, "BTC_USDT", pub.payloads[0].Symbol)
	assert.Equal(t, "100", pub.payloads[0].BidPrice)
}

func TestGetOrderBookSnapshot_UnknownProvider(t *testing.T) {
	uc := NewOrderBookSnapshotUseCase(&fakeConnManager{}, publisher.NewNoopPublisher())
	symbol := mustSymbol(t)

	_, err := uc.GetOrderBookSnapshot("nope", symbol, 0)
	assert.Error(t, err)
}
