package orderbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderbookv1 "github.com/openclob/matching-engine/internal/domain/orderbook/v1"
)

func oddLotOrder(side orderbookv1.Side, price string, quantity int64) *orderbookv1.Order {
	return newOrder(side, price, quantity, orderbookv1.OrderTypeOddLot)
}

func TestOddLot_RemainderParksOnOverflowQueue(t *testing.T) {
	f := newBookFixture(t)
	f.restOrder(t, orderbookv1.SideSell, "100", 4)

	incoming := oddLotOrder(orderbookv1.SideBuy, "100", 10)
	matched, err := f.book.Process(incoming)

	require.NoError(t, err)
	assert.True(t, matched)
	assert.Equal(t, int64(6), incoming.Quantity)

	// The remainder is parked, not resting.
	assert.Equal(t, 1, f.book.OverflowLen())
	assert.Equal(t, int64(0), f.book.BidTotalVolume())
}

func TestOddLot_QueueDrainedOnNextCall(t *testing.T) {
	f := newBookFixture(t)

	// First call finds no liquidity at all; the full quantity parks.
	first := oddLotOrder(orderbookv1.SideBuy, "100", 10)
	matched, err := f.book.Process(first)
	require.NoError(t, err)
	assert.False(t, matched)
	require.Equal(t, 1, f.book.OverflowLen())

	// Liquidity arrives, then any odd-lot call drains the queue first.
	f.restOrder(t, orderbookv1.SideSell, "100", 10)
	second := oddLotOrder(orderbookv1.SideBuy, "99", 1)
	_, err = f.book.Process(second)
	require.NoError(t, err)

	assert.True(t, first.IsFilled())
	assert.Equal(t, int64(10), f.sink.filledFor(first.ID))
	// The second order missed its price and parked in turn.
	assert.Equal(t, 1, f.book.OverflowLen())
}

func TestOddLot_RetriesExhausted(t *testing.T) {
	f := newBookFixture(t)

	parked := oddLotOrder(orderbookv1.SideBuy, "100", 10)
	parked.MaxRetries = 2
	_, err := f.book.Process(parked)
	require.NoError(t, err)
	require.Equal(t, 1, f.book.OverflowLen())

	// Each subsequent call burns one retry; no liquidity ever appears.
	trigger := func() {
		o := oddLotOrder(orderbookv1.SideSell, "200", 1)
		_, err := f.book.Process(o)
		require.NoError(t, err)
	}

	trigger()
	assert.Empty(t, f.sink.cancels)

	trigger()
	require.Len(t, f.sink.cancels, 1)
	assert.Equal(t, parked.ID, f.sink.cancels[0].orderID)
	assert.Equal(t, int64(10), f.sink.cancels[0].remaining)
	assert.Equal(t, orderbookv1.CancelReasonRetriesExhausted, f.sink.cancels[0].reason)
}

func TestOddLot_PartialProgressAcrossRetries(t *testing.T) {
	f := newBookFixture(t)

	parked := oddLotOrder(orderbookv1.SideBuy, "100", 10)
	parked.MaxRetries = 5
	_, err := f.book.Process(parked)
	require.NoError(t, err)

	// A slice of liquidity shows up before each retry.
	f.restOrder(t, orderbookv1.SideSell, "100", 4)
	_, err = f.book.Process(oddLotOrder(orderbookv1.SideSell, "200", 1))
	require.NoError(t, err)
	assert.Equal(t, int64(6), parked.Quantity)
	assert.Equal(t, 2, f.book.OverflowLen())

	f.restOrder(t, orderbookv1.SideSell, "100", 6)
	_, err = f.book.Process(oddLotOrder(orderbookv1.SideSell, "200", 1))
	require.NoError(t, err)

	assert.True(t, parked.IsFilled())
	assert.Equal(t, int64(10), f.sink.filledFor(parked.ID))
}
