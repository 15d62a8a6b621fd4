package orderbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderbookv1 "github.com/openclob/matching-engine/internal/domain/orderbook/v1"
)

func TestProRata_ProportionalAllocation(t *testing.T) {
	f := newBookFixture(t)
	big := f.restOrder(t, orderbookv1.SideSell, "100", 60)
	small := f.restOrder(t, orderbookv1.SideSell, "100", 40)

	incoming := newOrder(orderbookv1.SideBuy, "100", 50, orderbookv1.OrderTypeProRata)
	matched, err := f.book.Process(incoming)

	require.NoError(t, err)
	assert.True(t, matched)

	// floor(60/100*50)=30 and floor(40/100*50)=20, no residual.
	require.Len(t, f.sink.trades, 2)
	assert.Equal(t, big.ID, f.sink.trades[0].MakerOrderID)
	assert.Equal(t, int64(30), f.sink.trades[0].Quantity)
	assert.Equal(t, small.ID, f.sink.trades[1].MakerOrderID)
	assert.Equal(t, int64(20), f.sink.trades[1].Quantity)

	assert.True(t, incoming.IsFilled())
	assert.Empty(t, f.sink.cancels)
	assert.Equal(t, int64(30), big.Quantity)
	assert.Equal(t, int64(20), small.Quantity)
}

func TestProRata_FloorRoundingResidualDropped(t *testing.T) {
	f := newBookFixture(t)
	f.restOrder(t, orderbookv1.SideSell, "100", 3)
	f.restOrder(t, orderbookv1.SideSell, "100", 3)
	f.restOrder(t, orderbookv1.SideSell, "100", 3)

	incoming := newOrder(orderbookv1.SideBuy, "100", 8, orderbookv1.OrderTypeProRata)
	matched, err := f.book.Process(incoming)

	require.NoError(t, err)
	assert.True(t, matched)

	// floor(3/9*8)=2 each; 2 units of the incoming order are unallocated
	// and reported as residual, not redistributed.
	require.Len(t, f.sink.trades, 3)
	for _, trade := range f.sink.trades {
		assert.Equal(t, int64(2), trade.Quantity)
	}
	require.Len(t, f.sink.cancels, 1)
	assert.Equal(t, incoming.ID, f.sink.cancels[0].orderID)
	assert.Equal(t, int64(2), f.sink.cancels[0].remaining)
	assert.Equal(t, orderbookv1.CancelReasonProRataResidual, f.sink.cancels[0].reason)

	// The residual does not carry into deeper levels or rest.
	assert.Equal(t, int64(0), f.book.BidTotalVolume())
}

func TestProRata_AllocationBelowFloorDropsToZero(t *testing.T) {
	f := newBookFixture(t)
	big := f.restOrder(t, orderbookv1.SideSell, "100", 90)
	small := f.restOrder(t, orderbookv1.SideSell, "100", 10)
	small.MinLot = 5

	incoming := newOrder(orderbookv1.SideBuy, "100", 20, orderbookv1.OrderTypeProRata)
	matched, err := f.book.Process(incoming)

	require.NoError(t, err)
	assert.True(t, matched)

	// Small's share floor(10/100*20)=2 is under its floor of 5, so it
	// receives nothing rather than a partial allocation.
	require.Len(t, f.sink.trades, 1)
	assert.Equal(t, big.ID, f.sink.trades[0].MakerOrderID)
	assert.Equal(t, int64(18), f.sink.trades[0].Quantity)
	assert.Equal(t, int64(10), small.Quantity)

	require.Len(t, f.sink.cancels, 1)
	assert.Equal(t, int64(2), f.sink.cancels[0].remaining)
}

func TestProRata_OnlyFirstCrossingLevel(t *testing.T) {
	f := newBookFixture(t)
	f.restOrder(t, orderbookv1.SideSell, "100", 4)
	deeper := f.restOrder(t, orderbookv1.SideSell, "101", 50)

	incoming := newOrder(orderbookv1.SideBuy, "101", 10, orderbookv1.OrderTypeProRata)
	matched, err := f.book.Process(incoming)

	require.NoError(t, err)
	assert.True(t, matched)

	// The whole level is allocated; the rest is residual even though a
	// deeper crossing level exists.
	require.Len(t, f.sink.trades, 1)
	assert.Equal(t, int64(4), f.sink.trades[0].Quantity)
	assert.Equal(t, int64(50), deeper.Quantity)
	require.Len(t, f.sink.cancels, 1)
	assert.Equal(t, int64(6), f.sink.cancels[0].remaining)
}

func TestProRata_NoCrossingLevel(t *testing.T) {
	f := newBookFixture(t)
	f.restOrder(t, orderbookv1.SideSell, "105", 10)

	incoming := newOrder(orderbookv1.SideBuy, "100", 10, orderbookv1.OrderTypeProRata)
	matched, err := f.book.Process(incoming)

	require.NoError(t, err)
	assert.False(t, matched)
	assert.Empty(t, f.sink.trades)
	require.Len(t, f.sink.cancels, 1)
	assert.Equal(t, int64(10), f.sink.cancels[0].remaining)
}

func TestProRataShare_NoOverflow(t *testing.T) {
	// Values whose product overflows int64 must still divide correctly.
	share := proRataShare(4_000_000_000, 3_000_000_000, 6_000_000_000)
	assert.Equal(t, int64(2_000_000_000), share)
}
