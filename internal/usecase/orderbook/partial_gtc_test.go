package orderbook

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderbookv1 "github.com/openclob/matching-engine/internal/domain/orderbook/v1"
)

func TestPartialGTC_RemainderRests(t *testing.T) {
	f := newBookFixture(t)
	f.restOrder(t, orderbookv1.SideSell, "100", 6)

	incoming := newOrder(orderbookv1.SideBuy, "100", 10, orderbookv1.OrderTypePartialGTC)
	incoming.MinLot = 2
	incoming.MaxRetries = 5
	arrival := incoming.Timestamp

	matched, err := f.book.Process(incoming)

	require.NoError(t, err)
	assert.True(t, matched)
	require.Len(t, f.sink.trades, 1)
	assert.Equal(t, int64(6), f.sink.trades[0].Quantity)

	// The remainder rests at the original limit, keeping its floor and
	// retry budget, as a new queue entrant.
	assert.Equal(t, int64(4), f.book.BidTotalVolume())
	best, ok := f.book.BestBid()
	require.True(t, ok)
	assert.True(t, best.Equal(decimal.RequireFromString("100")))
	assert.Equal(t, int64(2), incoming.MinLot)
	assert.Equal(t, 5, incoming.MaxRetries)
	assert.Greater(t, incoming.Timestamp, arrival)
}

func TestPartialGTC_RestedRemainderQueuesBehindLaterArrivals(t *testing.T) {
	f := newBookFixture(t)
	f.restOrder(t, orderbookv1.SideSell, "100", 5)

	// First order partially fills and rests 5.
	first := newOrder(orderbookv1.SideBuy, "100", 10, orderbookv1.OrderTypePartialGTC)
	_, err := f.book.Process(first)
	require.NoError(t, err)

	// Second order rests behind it at the same price.
	second := newOrder(orderbookv1.SideBuy, "100", 5, orderbookv1.OrderTypePartialGTC)
	_, err = f.book.Process(second)
	require.NoError(t, err)

	// A crossing sell fills the first remainder before the second order.
	sell := newOrder(orderbookv1.SideSell, "100", 5, orderbookv1.OrderTypePartialGTC)
	_, err = f.book.Process(sell)
	require.NoError(t, err)

	require.Len(t, f.sink.trades, 2)
	assert.Equal(t, first.ID, f.sink.trades[1].MakerOrderID)
	assert.True(t, first.IsFilled())
	assert.Equal(t, int64(5), second.Quantity)
}

func TestPartialGTC_FullFillNothingRests(t *testing.T) {
	f := newBookFixture(t)
	f.restOrder(t, orderbookv1.SideSell, "100", 10)

	incoming := newOrder(orderbookv1.SideBuy, "100", 10, orderbookv1.OrderTypePartialGTC)
	matched, err := f.book.Process(incoming)

	require.NoError(t, err)
	assert.True(t, matched)
	assert.True(t, incoming.IsFilled())
	assert.Equal(t, int64(0), f.book.BidTotalVolume())
	assert.Equal(t, int64(0), f.book.AskTotalVolume())
}

func TestPartialGTC_NoCrossRestsFullQuantity(t *testing.T) {
	f := newBookFixture(t)
	f.restOrder(t, orderbookv1.SideSell, "105", 10)

	incoming := newOrder(orderbookv1.SideBuy, "100", 10, orderbookv1.OrderTypePartialGTC)
	matched, err := f.book.Process(incoming)

	require.NoError(t, err)
	assert.False(t, matched)
	assert.Empty(t, f.sink.trades)
	assert.Equal(t, int64(10), f.book.BidTotalVolume())
}
