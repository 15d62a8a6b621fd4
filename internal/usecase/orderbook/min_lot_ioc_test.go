package orderbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderbookv1 "github.com/openclob/matching-engine/internal/domain/orderbook/v1"
)

func TestMinLotIOC_FillsAcrossLevels(t *testing.T) {
	f := newBookFixture(t)
	cheap := f.restOrder(t, orderbookv1.SideSell, "100", 5)
	dear := f.restOrder(t, orderbookv1.SideSell, "101", 6)

	incoming := newOrder(orderbookv1.SideBuy, "102", 8, orderbookv1.OrderTypeMinLotIOC)
	incoming.MinLot = 3
	matched, err := f.book.Process(incoming)

	require.NoError(t, err)
	assert.True(t, matched)

	// Exactly two fills: all of the cheap level, then part of the next.
	require.Len(t, f.sink.trades, 2)
	assert.Equal(t, cheap.ID, f.sink.trades[0].MakerOrderID)
	assert.Equal(t, int64(5), f.sink.trades[0].Quantity)
	assert.Equal(t, dear.ID, f.sink.trades[1].MakerOrderID)
	assert.Equal(t, int64(3), f.sink.trades[1].Quantity)

	assert.True(t, incoming.IsFilled())
	assert.Empty(t, f.sink.cancels)
	assert.Equal(t, int64(0), f.book.BidTotalVolume())
	assert.Equal(t, int64(3), f.book.AskTotalVolume())
}

func TestMinLotIOC_RemainderNeverRests(t *testing.T) {
	f := newBookFixture(t)
	f.restOrder(t, orderbookv1.SideSell, "100", 5)

	incoming := newOrder(orderbookv1.SideBuy, "100", 20, orderbookv1.OrderTypeMinLotIOC)
	incoming.MinLot = 3
	matched, err := f.book.Process(incoming)

	require.NoError(t, err)
	assert.True(t, matched)
	assert.Equal(t, int64(0), f.book.BidTotalVolume())

	require.Len(t, f.sink.cancels, 1)
	assert.Equal(t, int64(15), f.sink.cancels[0].remaining)
	assert.Equal(t, orderbookv1.CancelReasonIOCExpired, f.sink.cancels[0].reason)
}

func TestMinLotIOC_RemainderBelowFloorReported(t *testing.T) {
	f := newBookFixture(t)
	f.restOrder(t, orderbookv1.SideSell, "100", 8)

	incoming := newOrder(orderbookv1.SideBuy, "100", 10, orderbookv1.OrderTypeMinLotIOC)
	incoming.MinLot = 5
	matched, err := f.book.Process(incoming)

	require.NoError(t, err)
	assert.True(t, matched)

	// Remainder 2 is below the floor of 5; still discarded, but reported
	// distinctly.
	require.Len(t, f.sink.cancels, 1)
	assert.Equal(t, int64(2), f.sink.cancels[0].remaining)
	assert.Equal(t, orderbookv1.CancelReasonBelowMinLot, f.sink.cancels[0].reason)
	assert.Equal(t, int64(0), f.book.BidTotalVolume())
}

func TestMinLotIOC_NoLiquidity(t *testing.T) {
	f := newBookFixture(t)

	incoming := newOrder(orderbookv1.SideBuy, "100", 10, orderbookv1.OrderTypeMinLotIOC)
	matched, err := f.book.Process(incoming)

	require.NoError(t, err)
	assert.False(t, matched)
	assert.Empty(t, f.sink.trades)
	require.Len(t, f.sink.cancels, 1)
	assert.Equal(t, int64(10), f.sink.cancels[0].remaining)
}
