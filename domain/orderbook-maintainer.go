package domain

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bookbridge-io/bookbridge/helpers"
)

// ErrStreamClosed: the transport dropped the depth stream. Books for the
// connection are discarded; callers resubscribe after reconnect.
var ErrStreamClosed = errors.New("depth stream closed")

// OrderbookMaintainer wires one symbol's stream subscription to one
// sequencer: it subscribes to the diff stream, obtains the initial snapshot
// (pushed by the exchange or pulled from the sync API, depending on the
// capability set), and then keeps the book live on a single dispatch
// goroutine until a desync, an unsubscribe or a transport loss.
type OrderbookMaintainer struct {
	streamAPI ProviderStreamAPI
	syncAPI   ProviderSyncAPI
	opts      SequencerOptions

	seq        *Sequencer
	snapshotCh chan *BookSnapshot
	updates    chan *OrderBook
	doneCh     chan error
	stop       chan struct{}
	stopOnce   sync.Once
}

func NewOrderBookMaintainer(
	stream ProviderStreamAPI,
	syncAPI ProviderSyncAPI,
	opts SequencerOptions,
) *OrderbookMaintainer {
	return &OrderbookMaintainer{
		streamAPI:  stream,
		syncAPI:    syncAPI,
		opts:       opts,
		snapshotCh: make(chan *BookSnapshot, 1),
		updates:    make(chan *OrderBook, 16),
		doneCh:     make(chan error, 1),
		stop:       make(chan struct{}),
	}
}

// CreateOrderBook blocks until the book reaches the live state (the
// snapshot is applied and buffered updates are replayed) and resolves with
// it, or with the error that prevented seeding.
func (m *OrderbookMaintainer) CreateOrderBook(provider string, symbol *MarketSymbol, limit int) *CreateOrderBookResult {
	book := NewOrderBook(provider, symbol, m.opts.Granularity)
	m.seq = NewSequencer(book, m.opts)

	diffSub, err := m.streamAPI.DepthDiffStream(symbol)
	if err != nil {
		return &CreateOrderBookResult{Err: fmt.Errorf("subscribing to depth stream: %w", err)}
	}

	var pushSnapshots <-chan *BookSnapshot
	var unsubscribeSnapshots func()
	if m.opts.Source == SnapshotSourcePush {
		streamer, ok := m.streamAPI.(SnapshotStreamer)
		if !ok {
			diffSub.Unsubscribe()
			return &CreateOrderBookResult{Err: fmt.Errorf("provider %s declares push snapshots but streams none", provider)}
		}
		snapSub, err := streamer.DepthSnapshotStream(symbol)
		if err != nil {
			diffSub.Unsubscribe()
			return &CreateOrderBookResult{Err: fmt.Errorf("subscribing to snapshot stream: %w", err)}
		}
		pushSnapshots = snapSub.Stream
		unsubscribeSnapshots = snapSub.Unsubscribe
	}

	live := make(chan error, 1)
	firstUpdate := make(chan struct{})
	go m.dispatchLoop(diffSub, pushSnapshots, unsubscribeSnapshots, live, firstUpdate)

	if m.opts.Source == SnapshotSourcePull {
		// Give the stream a moment to accumulate deltas overlapping the
		// snapshot, so the seed-then-replay never leaves a hole. The stream
		// can also die right here, before a single delta arrives; waiting on
		// firstUpdate alone would then block forever.
		select {
		case <-helpers.WithLatestFrom(firstUpdate, helpers.AfterSignal(time.Second)):
		case err := <-live:
			m.Stop()
			return &CreateOrderBookResult{Err: err}
		case <-m.stop:
			return &CreateOrderBookResult{Err: ErrStreamClosed}
		}

		snapshot, err := m.syncAPI.OrderBookSnapshot(symbol, limit)
		if err != nil {
			m.Stop()
			return &CreateOrderBookResult{Err: fmt.Errorf("fetching snapshot: %w", err)}
		}
		m.snapshotCh <- snapshot
	}

	var liveErr error
	select {
	case liveErr = <-live:
	case <-m.stop:
		liveErr = ErrStreamClosed
	}
	if liveErr != nil {
		m.Stop()
		return &CreateOrderBookResult{Err: liveErr}
	}

	return &CreateOrderBookResult{
		OrderBook:   book,
		Snapshot:    book.TakeSnapshot(limit),
		Updates:     m.updates,
		Done:        m.doneCh,
		StaleDrops:  m.seq.StaleDrops,
		Unsubscribe: m.Stop,
	}
}

// Stop is the cancellation primitive; safe to call at any time, any state.
func (m *OrderbookMaintainer) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
}

// dispatchLoop is the single goroutine that mutates the book. Messages are
// processed to completion in arrival order; there is no other mutator.
func (m *OrderbookMaintainer) dispatchLoop(
	diff *Subscription[*DepthUpdate],
	pushSnapshots <-chan *BookSnapshot,
	unsubscribeSnapshots func(),
	live chan<- error,
	firstUpdate chan<- struct{},
) {
	defer func() {
		diff.Unsubscribe()
		if unsubscribeSnapshots != nil {
			unsubscribeSnapshots()
		}
		close(m.updates)
		close(m.doneCh)
	}()

	firstSeen := false
	wentLive := false

	for {
		select {
		case <-m.stop:
			return

		case update, ok := <-diff.Stream:
			if !ok {
				if !wentLive {
					live <- ErrStreamClosed
				}
				m.doneCh <- ErrStreamClosed
				return
			}
			if !firstSeen {
				close(firstUpdate)
				firstSeen = true
			}

			err := m.seq.HandleUpdate(update)
			switch {
			case err == nil:
				if wentLive && m.seq.State() == StateLive {
					m.notify()
				}
			case errors.Is(err, ErrMalformedUpdate):
				logger.Printf("%s %s: %s", m.seq.Book().Provider, m.seq.Book().Symbol, err)
			case errors.Is(err, ErrOrderBookOutOfSync):
				if !wentLive {
					live <- err
				}
				m.doneCh <- err
				return
			}

		case snapshot := <-m.pullOrPush(pushSnapshots):
			if m.seq.State() != StateUnseeded {
				continue
			}
			if err := m.seq.HandleSnapshot(snapshot); err != nil {
				if !wentLive {
					live <- err
				}
				m.doneCh <- err
				return
			}
			wentLive = true
			live <- nil
			m.notify()
		}
	}
}

// pullOrPush selects the snapshot source: the exchange's own snapshot
// stream for push providers, the injection channel fed by the sync API
// otherwise.
func (m *OrderbookMaintainer) pullOrPush(pushSnapshots <-chan *BookSnapshot) <-chan *BookSnapshot {
	if m.opts.Source == SnapshotSourcePush {
		return pushSnapshots
	}
	return m.snapshotCh
}

// notify re-resolves the update channel with the mutated book. A slow
// consumer loses intermediate ticks, never the latest book state, because
// every message carries the same pointer.
func (m *OrderbookMaintainer) notify() {
	select {
	case m.updates <- m.seq.Book():
	default:
	}
}
