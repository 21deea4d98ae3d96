package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/bookbridge-io/bookbridge/domain"
	promclient "github.com/bookbridge-io/bookbridge/infrastructure/prometheus"
	"github.com/bookbridge-io/bookbridge/infrastructure/publisher"
)

const starting = "starting"

var logger = log.New(os.Stdout, "[orderbook-snapshot-usecase] ", log.LstdFlags)

type OrderBookSnapshotUseCase struct {
	connManager domain.ConnManager
	storage     *domain.OrderBookStorage
	publisher   publisher.Publisher

	// waitingRoom keys mark books whose stream subscription is still
	// seeding, so concurrent requests do not start a second maintainer.
	waitingRoom sync.Map

	subMu       sync.Mutex
	subscribers map[string][]chan *domain.OrderBook
}

func NewOrderBookSnapshotUseCase(
	connManager domain.ConnManager, pub publisher.Publisher,
) *OrderBookSnapshotUseCase {
	return &OrderBookSnapshotUseCase{
		connManager: connManager,
		storage:     domain.NewOrderBookStorage(),
		publisher:   pub,
		subscribers: make(map[string][]chan *domain.OrderBook),
	}
}

// GetOrderBookSnapshot returns the snapshot from the local book when one is
// live, falling back to the provider's own API while the local book is
// still seeding.
func (o *OrderBookSnapshotUseCase) GetOrderBookSnapshot(
	provider string, symbol *domain.MarketSymbol, limit int,
) (*domain.BookSnapshot, error) {
	waitingRoomKey := o.waitingRoomKey(provider, symbol)
	if _, ok := o.waitingRoom.Load(waitingRoomKey); ok {
		logger.Printf("book is seeding, provider snapshot returned: provider=%s symbol=%s", provider, symbol)
		return o.providerSnapshot(provider, symbol, limit)
	}

	orderbook, err := o.storage.Get(provider, symbol)
	if err != nil {
		if _, loaded := o.waitingRoom.LoadOrStore(waitingRoomKey, starting); !loaded {
			go o.createOrderBook(provider, symbol)
		}
		return o.providerSnapshot(provider, symbol, limit)
	}

	return orderbook.TakeSnapshot(limit), nil
}

// GetLocalOrderBook returns the live local book, creating it on first use.
// Unlike GetOrderBookSnapshot it blocks until the book is live, because
// stream consumers need the book, not a stand-in.
func (o *OrderBookSnapshotUseCase) GetLocalOrderBook(
	provider string, symbol *domain.MarketSymbol,
) (*domain.OrderBook, error) {
	if orderbook, err := o.storage.Get(provider, symbol); err == nil {
		return orderbook, nil
	}

	waitingRoomKey := o.waitingRoomKey(provider, symbol)
	if _, loaded := o.waitingRoom.LoadOrStore(waitingRoomKey, starting); loaded {
		return nil, fmt.Errorf("order book for %s %s is seeding, retry later", provider, symbol)
	}

	return o.createOrderBook(provider, symbol)
}

// WatchOrderBook resolves once the book is live and then delivers it again
// after every applied depth update, until Unsubscribe or until the book is
// retired (the stream closes).
func (o *OrderBookSnapshotUseCase) WatchOrderBook(
	provider string, symbol *domain.MarketSymbol,
) (*domain.Subscription[*domain.OrderBook], error) {
	if _, err := o.GetLocalOrderBook(provider, symbol); err != nil {
		return nil, err
	}

	key := o.waitingRoomKey(provider, symbol)
	ch := make(chan *domain.OrderBook, 16)

	o.subMu.Lock()
	o.subscribers[key] = append(o.subscribers[key], ch)
	o.subMu.Unlock()

	return &domain.Subscription[*domain.OrderBook]{
		Stream: ch,
		Topic:  key,
		Unsubscribe: func() {
			o.subMu.Lock()
			defer o.subMu.Unlock()
			for i, sub := range o.subscribers[key] {
				if sub == ch {
					o.subscribers[key] = append(o.subscribers[key][:i], o.subscribers[key][i+1:]...)
					close(ch)
					return
				}
			}
		},
	}, nil
}

func (o *OrderBookSnapshotUseCase) fanOut(key string, book *domain.OrderBook) {
	o.subMu.Lock()
	defer o.subMu.Unlock()

	for _, ch := range o.subscribers[key] {
		// a slow watcher loses intermediate ticks, never the book itself
		select {
		case ch <- book:
		default:
		}
	}
}

func (o *OrderBookSnapshotUseCase) dropSubscribers(key string) {
	o.subMu.Lock()
	defer o.subMu.Unlock()

	for _, ch := range o.subscribers[key] {
		close(ch)
	}
	delete(o.subscribers, key)
}

// providerSnapshot serves the stand-in snapshot while the local book is not
// live yet. Providers that push snapshots over the stream have no sync API,
// so there the caller has to wait for the local book instead.
func (o *OrderBookSnapshotUseCase) providerSnapshot(
	provider string, symbol *domain.MarketSymbol, limit int,
) (*domain.BookSnapshot, error) {
	syncAPI, err := o.connManager.SyncAPI(provider)
	if err != nil {
		return nil, fmt.Errorf("order book for %s %s is seeding and %s offers no snapshot api",
			provider, symbol, provider)
	}
	return syncAPI.OrderBookSnapshot(symbol, limit)
}

func (o *OrderBookSnapshotUseCase) createOrderBook(
	provider string, symbol *domain.MarketSymbol,
) (*domain.OrderBook, error) {
	defer o.waitingRoom.Delete(o.waitingRoomKey(provider, symbol))

	streamAPI, err := o.connManager.StreamAPI(provider)
	if err != nil {
		return nil, err
	}

	result := streamAPI.GetOrderBook(symbol, 0)
	if result.Err != nil {
		logger.Printf("failed to create order book: provider=%s symbol=%s err=%s", provider, symbol, result.Err)
		return nil, result.Err
	}

	o.storage.Add(provider, symbol, result.OrderBook)
	promclient.OpenOrderBooksGauge.WithLabelValues(provider).Inc()
	logger.Printf("order book is live and added to the runtime storage: provider=%s symbol=%s", provider, symbol)

	go o.watch(provider, symbol, result)
	return result.OrderBook, nil
}

// watch forwards every applied update to the publisher and retires the
// book when its maintainer stops.
func (o *OrderBookSnapshotUseCase) watch(
	provider string, symbol *domain.MarketSymbol, result *domain.CreateOrderBookResult,
) {
	key := o.waitingRoomKey(provider, symbol)
	var staleSeen int64

	for book := range result.Updates {
		o.fanOut(key, book)

		payload := publisher.BestOfBookFrom(book)
		if err := o.publisher.Publish(context.Background(), payload); err != nil {
			logger.Printf("publishing best of book: provider=%s symbol=%s err=%s", provider, symbol, err)
		}

		if stale := result.StaleDrops(); stale > staleSeen {
			promclient.StaleUpdatesCounter.WithLabelValues(provider).Add(float64(stale - staleSeen))
			staleSeen = stale
		}
	}

	if err := <-result.Done; err != nil {
		if errors.Is(err, domain.ErrOrderBookOutOfSync) {
			promclient.DesyncCounter.WithLabelValues(provider).Inc()
		}
		logger.Printf("order book retired: provider=%s symbol=%s err=%s", provider, symbol, err)
	}

	o.storage.Remove(provider, symbol)
	o.dropSubscribers(key)
	promclient.OpenOrderBooksGauge.WithLabelValues(provider).Dec()
}

func (o *OrderBookSnapshotUseCase) waitingRoomKey(provider string, symbol *domain.MarketSymbol) string {
	return fmt.Sprintf("%s-%s", provider, symbol)
}
