package domain

import (
	"sync"
)

// OrderBookStorage is the runtime map of live books, keyed by provider and
// symbol. Books enter on a successful create and leave on desync or
// unsubscribe; in between they are only read.
type OrderBookStorage struct {
	mu      sync.RWMutex
	storage map[string]map[string]*OrderBook
}

func NewOrderBookStorage() *OrderBookStorage {
	return &OrderBookStorage{
		storage: make(map[string]map[string]*OrderBook),
	}
}

func (o *OrderBookStorage) Add(provider string, symbol *MarketSymbol, orderBook *OrderBook) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.storage[provider]; !ok {
		o.storage[provider] = make(map[string]*OrderBook)
	}
	o.storage[provider][symbol.String()] = orderBook
}

func (o *OrderBookStorage) Get(provider string, symbol *MarketSymbol) (*OrderBook, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	books, ok := o.storage[provider]
	if !ok {
		return nil, ErrProviderNotFound
	}

	book, ok := books[symbol.String()]
	if !ok {
		return nil, ErrOrderBookNotFound
	}
	return book, nil
}

// Remove drops the book, e.g. after a desync. Removing an absent book is a
// no-op.
func (o *OrderBookStorage) Remove(provider string, symbol *MarketSymbol) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if books, ok := o.storage[provider]; ok {
		delete(books, symbol.String())
	}
}

func (o *OrderBookStorage) OrderBookCount(provider string) int {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if _, ok := o.storage[provider]; !ok {
		return 0
	}
	return len(o.storage[provider])
}
