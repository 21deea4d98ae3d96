package domain

import (
	"fmt"
	"log"
	"os"
	"sync/atomic"

	"github.com/gammazero/deque"
)

var logger = log.New(os.Stdout, "[domain] ", log.LstdFlags)

type SequencerState int

const (
	// StateUnseeded: no snapshot applied yet, updates are buffered.
	StateUnseeded SequencerState = iota
	// StateLive: snapshot applied, updates are applied as they arrive.
	StateLive
	// StateDesynced: terminal for this book instance, resubscribe required.
	StateDesynced
)

type SequencePolicy int

const (
	// PolicyMonotonic drops updates at or behind the nonce and applies the
	// rest. For exchanges whose sequence field is not guaranteed to be
	// strictly sequential (or is a timestamp), overwrite-by-recency is the
	// only sound option.
	PolicyMonotonic SequencePolicy = iota
	// PolicyStrict requires SequenceStart == nonce+1 for every applied
	// update. A hole means lost messages: the book goes out of sync.
	PolicyStrict
	// PolicyRange accepts updates whose [SequenceStart, SequenceEnd] range
	// covers nonce+1 (the binance/kucoin protocol family).
	PolicyRange
)

type SnapshotSource int

const (
	// SnapshotSourcePush: the exchange sends the initial snapshot on the
	// stream itself.
	SnapshotSourcePush SnapshotSource = iota
	// SnapshotSourcePull: the initial snapshot must be fetched from the
	// sync API once the stream is running.
	SnapshotSourcePull
)

// SequencerOptions is the per-exchange capability set. It is fixed at
// construction; nothing mutates it afterwards.
type SequencerOptions struct {
	Policy      SequencePolicy
	Source      SnapshotSource
	Granularity Granularity

	// PendingLimit caps the number of updates buffered while waiting for a
	// snapshot. Overflow forces a resync instead of unbounded growth. A
	// zero limit disables the cap.
	PendingLimit int
}

// Sequencer drives one order book through the unseeded -> live -> desynced
// lifecycle: buffering updates until the snapshot lands, replaying them in
// arrival order, then applying live updates with duplicate suppression and,
// where the protocol allows it, gap detection.
//
// All methods must be called from the single dispatch goroutine of the
// owning connection.
type Sequencer struct {
	book    *OrderBook
	opts    SequencerOptions
	state   SequencerState
	pending deque.Deque[*DepthUpdate]

	// staleDropped counts updates discarded because they were at or behind
	// the book nonce. Duplicates are normal feed behavior, not errors.
	// Atomic so metrics readers on other goroutines can sample it.
	staleDropped atomic.Int64
}

func NewSequencer(book *OrderBook, opts SequencerOptions) *Sequencer {
	return &Sequencer{
		book:  book,
		opts:  opts,
		state: StateUnseeded,
	}
}

func (s *Sequencer) Book() *OrderBook { return s.book }

func (s *Sequencer) State() SequencerState { return s.state }

func (s *Sequencer) PendingLen() int { return s.pending.Len() }

// StaleDrops reports how many updates have been discarded as stale.
func (s *Sequencer) StaleDrops() int64 { return s.staleDropped.Load() }

// HandleUpdate feeds one stream update into the state machine. A nil return
// with no state change covers both "applied" and "stale, discarded". An
// ErrOrderBookOutOfSync return means the book is terminal and the caller
// must drop it and resubscribe.
func (s *Sequencer) HandleUpdate(update *DepthUpdate) error {
	switch s.state {
	case StateDesynced:
		return ErrOrderBookOutOfSync

	case StateUnseeded:
		if s.opts.PendingLimit > 0 && s.pending.Len() >= s.opts.PendingLimit {
			s.desync()
			return fmt.Errorf("%w: pending buffer overflow at %d updates",
				ErrOrderBookOutOfSync, s.pending.Len())
		}
		s.pending.PushBack(update)
		return nil

	default:
		return s.apply(update)
	}
}

// HandleSnapshot seeds the book and replays every buffered update, in FIFO
// order, through the same path live updates take.
func (s *Sequencer) HandleSnapshot(snapshot *BookSnapshot) error {
	if s.state == StateDesynced {
		return ErrOrderBookOutOfSync
	}

	if err := s.book.Seed(snapshot); err != nil {
		return err
	}
	s.state = StateLive

	for s.pending.Len() > 0 {
		update := s.pending.PopFront()

		err := s.apply(update)
		if err == nil {
			continue
		}
		if s.state == StateDesynced {
			s.pending.Clear()
			return err
		}
		// A malformed buffered update skips itself, not the replay.
		logger.Printf("dropping buffered update for %s: %s", s.book.Symbol, err)
	}
	return nil
}

// Reset returns the sequencer to the unseeded state with an empty book, for
// a forced resync on the same subscription.
func (s *Sequencer) Reset() {
	s.book.Reset()
	s.pending.Clear()
	s.state = StateUnseeded
	s.staleDropped.Store(0)
}

func (s *Sequencer) apply(update *DepthUpdate) error {
	if update.SequenceEnd <= s.book.Nonce {
		s.staleDropped.Add(1)
		return nil
	}

	switch s.opts.Policy {
	case PolicyStrict:
		if update.SequenceStart > s.book.Nonce+1 {
			s.desync()
			return fmt.Errorf("%w: expected seq %d, got %d",
				ErrOrderBookOutOfSync, s.book.Nonce+1, update.SequenceStart)
		}
	case PolicyRange:
		if update.SequenceStart > s.book.Nonce+1 {
			s.desync()
			return fmt.Errorf("%w: update range [%d, %d] leaves a hole after %d",
				ErrOrderBookOutOfSync, update.SequenceStart, update.SequenceEnd, s.book.Nonce)
		}
	}

	return s.book.ApplyUpdate(update)
}

func (s *Sequencer) desync() {
	s.state = StateDesynced
	s.pending.Clear()
}
