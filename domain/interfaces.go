package domain

// ProviderSyncAPI pulls the initial order book state for exchanges that do
// not push a snapshot on the stream.
type ProviderSyncAPI interface {
	OrderBookSnapshot(symbol *MarketSymbol, limit int) (*BookSnapshot, error)
}

// ProviderStreamAPI is implemented by every exchange adapter.
type ProviderStreamAPI interface {
	DepthDiffStream(symbol *MarketSymbol) (*Subscription[*DepthUpdate], error)
	GetOrderBook(symbol *MarketSymbol, maxDepth int) *CreateOrderBookResult
}

// SnapshotStreamer is additionally implemented by adapters whose exchange
// pushes the initial snapshot over the stream itself.
type SnapshotStreamer interface {
	DepthSnapshotStream(symbol *MarketSymbol) (*Subscription[*BookSnapshot], error)
}

type ConnManager interface {
	StreamAPI(provider string) (ProviderStreamAPI, error)
	SyncAPI(provider string) (ProviderSyncAPI, error)
}

// CreateOrderBookResult resolves once the book reaches the live state.
type CreateOrderBookResult struct {
	OrderBook *OrderBook
	Snapshot  *BookSnapshot

	// Updates delivers the book again after every applied delta.
	Updates <-chan *OrderBook
	// Done delivers the desync error (or nothing, on plain unsubscribe)
	// and is closed when the maintainer stops.
	Done <-chan error

	// StaleDrops samples how many duplicate updates have been discarded.
	StaleDrops func() int64

	Unsubscribe func()
	Err         error
}
