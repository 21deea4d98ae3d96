package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestSequencer(t *testing.T, opts SequencerOptions) *Sequencer {
	t.Helper()
	book := NewOrderBook("test", testSymbol(t), opts.Granularity)
	return NewSequencer(book, opts)
}

func TestSequencer_BufferThenReplay(t *testing.T) {
	seq := newTestSequencer(t, SequencerOptions{Policy: PolicyMonotonic})

	d1 := NewDepthUpdate(seq.Book().Symbol, [][]string{{"99", "5"}}, nil, 6, 6)
	d2 := NewDepthUpdate(seq.Book().Symbol, nil, [][]string{{"102", "7"}}, 7, 7)

	assert.NoError(t, seq.HandleUpdate(d1))
	assert.NoError(t, seq.HandleUpdate(d2))
	assert.Equal(t, StateUnseeded, seq.State())
	assert.Equal(t, 2, seq.PendingLen(), "updates before the snapshot are buffered, not applied")
	assert.Equal(t, 0, seq.Book().Bids.Len())

	err := seq.HandleSnapshot(&BookSnapshot{
		LastUpdateID: 5,
		Bids:         [][]string{{"100", "1"}},
		Asks:         [][]string{{"101", "2"}},
	})
	assert.NoError(t, err)

	assert.Equal(t, StateLive, seq.State())
	assert.Equal(t, 0, seq.PendingLen())
	assert.Equal(t, int64(7), seq.Book().Nonce, "replay applies D1 then D2")

	snapshot := seq.Book().TakeSnapshot(0)
	assert.Equal(t, [][]string{{"100", "1"}, {"99", "5"}}, snapshot.Bids)
	assert.Equal(t, [][]string{{"101", "2"}, {"102", "7"}}, snapshot.Asks)
}

func TestSequencer_StaleDeltaIsDiscarded(t *testing.T) {
	seq := newTestSequencer(t, SequencerOptions{Policy: PolicyMonotonic})
	assert.NoError(t, seq.HandleSnapshot(&BookSnapshot{
		LastUpdateID: 10,
		Bids:         [][]string{{"100", "1"}},
		Asks:         [][]string{{"101", "2"}},
	}))

	for _, staleSeq := range []int64{10, 9, 1} {
		update := NewDepthUpdate(seq.Book().Symbol, [][]string{{"100", "0"}}, nil, staleSeq, staleSeq)
		assert.NoError(t, seq.HandleUpdate(update))
	}

	assert.Equal(t, int64(10), seq.Book().Nonce, "stale deltas must not advance the nonce")
	assert.Equal(t, 1, seq.Book().Bids.Len(), "stale deltas must not mutate the book")
	assert.Equal(t, int64(3), seq.StaleDrops())
	assert.Equal(t, StateLive, seq.State())
}

func TestSequencer_GapDesyncsStrictPolicy(t *testing.T) {
	seq := newTestSequencer(t, SequencerOptions{Policy: PolicyStrict})
	assert.NoError(t, seq.HandleSnapshot(&BookSnapshot{
		LastUpdateID: 10,
		Bids:         [][]string{{"100", "1"}},
		Asks:         [][]string{{"101", "2"}},
	}))

	// N+2 with exactly sequential increments expected: one message lost
	update := NewDepthUpdate(seq.Book().Symbol, [][]string{{"99", "1"}}, nil, 12, 12)
	err := seq.HandleUpdate(update)

	assert.ErrorIs(t, err, ErrOrderBookOutOfSync)
	assert.Equal(t, StateDesynced, seq.State())
	assert.Equal(t, 1, seq.Book().Bids.Len(), "the gapped delta must not be applied")

	// the state is terminal for this book instance
	next := NewDepthUpdate(seq.Book().Symbol, [][]string{{"98", "1"}}, nil, 13, 13)
	assert.ErrorIs(t, seq.HandleUpdate(next), ErrOrderBookOutOfSync)
}

func TestSequencer_MonotonicPolicyToleratesGaps(t *testing.T) {
	seq := newTestSequencer(t, SequencerOptions{Policy: PolicyMonotonic})
	assert.NoError(t, seq.HandleSnapshot(&BookSnapshot{
		LastUpdateID: 10,
		Bids:         [][]string{{"100", "1"}},
		Asks:         [][]string{{"101", "2"}},
	}))

	update := NewDepthUpdate(seq.Book().Symbol, [][]string{{"99", "1"}}, nil, 25, 25)
	assert.NoError(t, seq.HandleUpdate(update))
	assert.Equal(t, StateLive, seq.State())
	assert.Equal(t, int64(25), seq.Book().Nonce)
}

func TestSequencer_RangePolicy(t *testing.T) {
	seq := newTestSequencer(t, SequencerOptions{Policy: PolicyRange})
	assert.NoError(t, seq.HandleSnapshot(&BookSnapshot{
		LastUpdateID: 100,
		Bids:         [][]string{{"100", "1"}},
		Asks:         [][]string{{"101", "2"}},
	}))

	// range covering nonce+1 applies
	covering := NewDepthUpdate(seq.Book().Symbol, [][]string{{"99", "1"}}, nil, 95, 110)
	assert.NoError(t, seq.HandleUpdate(covering))
	assert.Equal(t, int64(110), seq.Book().Nonce)

	// range starting past nonce+1 leaves a hole
	hole := NewDepthUpdate(seq.Book().Symbol, [][]string{{"98", "1"}}, nil, 115, 120)
	assert.ErrorIs(t, seq.HandleUpdate(hole), ErrOrderBookOutOfSync)
	assert.Equal(t, StateDesynced, seq.State())
}

func TestSequencer_PendingOverflowForcesResync(t *testing.T) {
	seq := newTestSequencer(t, SequencerOptions{Policy: PolicyMonotonic, PendingLimit: 3})

	for i := int64(1); i <= 3; i++ {
		update := NewDepthUpdate(seq.Book().Symbol, [][]string{{"100", "1"}}, nil, i, i)
		assert.NoError(t, seq.HandleUpdate(update))
	}

	overflow := NewDepthUpdate(seq.Book().Symbol, [][]string{{"100", "1"}}, nil, 4, 4)
	err := seq.HandleUpdate(overflow)
	assert.ErrorIs(t, err, ErrOrderBookOutOfSync)
	assert.Equal(t, StateDesynced, seq.State())
	assert.Equal(t, 0, seq.PendingLen(), "a desync clears the buffer")
}

func TestSequencer_Reset(t *testing.T) {
	seq := newTestSequencer(t, SequencerOptions{Policy: PolicyStrict})
	assert.NoError(t, seq.HandleSnapshot(&BookSnapshot{
		LastUpdateID: 10,
		Bids:         [][]string{{"100", "1"}},
		Asks:         [][]string{{"101", "2"}},
	}))

	gap := NewDepthUpdate(seq.Book().Symbol, [][]string{{"99", "1"}}, nil, 12, 12)
	assert.Error(t, seq.HandleUpdate(gap))

	seq.Reset()
	assert.Equal(t, StateUnseeded, seq.State())
	assert.Equal(t, int64(0), seq.Book().Nonce)
	assert.Equal(t, 0, seq.Book().Bids.Len())

	// a fresh snapshot seeds the same instance again
	assert.NoError(t, seq.HandleSnapshot(&BookSnapshot{
		LastUpdateID: 20,
		Bids:         [][]string{{"100", "1"}},
		Asks:         [][]string{{"101", "2"}},
	}))
	assert.Equal(t, StateLive, seq.State())
}

// End-to-end shape: seed at nonce 5, apply seq 6 removing the only bid and
// adding an ask.
func TestSequencer_SnapshotThenDelta(t *testing.T) {
	seq := newTestSequencer(t, SequencerOptions{Policy: PolicyStrict})

	assert.NoError(t, seq.HandleSnapshot(&BookSnapshot{
		LastUpdateID: 5,
		Bids:         [][]string{{"100", "1"}},
		Asks:         [][]string{{"101", "2"}},
	}))

	update := NewDepthUpdate(seq.Book().Symbol,
		[][]string{{"100", "0"}},
		[][]string{{"101.5", "1"}},
		6, 6,
	)
	assert.NoError(t, seq.HandleUpdate(update))

	snapshot := seq.Book().TakeSnapshot(0)
	assert.Empty(t, snapshot.Bids)
	assert.Equal(t, [][]string{{"101", "2"}, {"101.5", "1"}}, snapshot.Asks)
	assert.Equal(t, int64(6), snapshot.LastUpdateID)
}
