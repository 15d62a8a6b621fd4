package orderbook

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderbookv1 "github.com/openclob/matching-engine/internal/domain/orderbook/v1"
)

func TestAuction_ClearingPriceAndVolume(t *testing.T) {
	f := newBookFixture(t)
	f.restOrder(t, orderbookv1.SideBuy, "105", 3)
	f.restOrder(t, orderbookv1.SideBuy, "103", 4)
	f.restOrder(t, orderbookv1.SideBuy, "101", 12)
	f.restOrder(t, orderbookv1.SideSell, "100", 2)
	f.restOrder(t, orderbookv1.SideSell, "102", 7)

	incoming := newOrder(orderbookv1.SideSell, "104", 4, orderbookv1.OrderTypeAuction)
	matched, err := f.book.Process(incoming)

	require.NoError(t, err)
	assert.True(t, matched)

	// Crossable volume peaks at 7, first reached at price 102.
	var total int64
	for _, trade := range f.sink.trades {
		assert.True(t, trade.Price.Equal(decimal.RequireFromString("102")))
		total += trade.Quantity
	}
	assert.Equal(t, int64(7), total)

	// Bids at 105 and 103 cleared; the 101 bid is below the clearing price.
	assert.Equal(t, int64(12), f.book.BidTotalVolume())
	// Asks: 100 cleared, 102 has 2 left, the incoming 104 rests untouched.
	assert.Equal(t, int64(6), f.book.AskTotalVolume())
	assert.Equal(t, int64(4), incoming.Quantity)

	best, ok := f.book.BestAsk()
	require.True(t, ok)
	assert.True(t, best.Equal(decimal.RequireFromString("102")))
}

func TestAuction_Deterministic(t *testing.T) {
	run := func() (string, int64) {
		f := newBookFixture(t)
		f.restOrder(t, orderbookv1.SideBuy, "105", 3)
		f.restOrder(t, orderbookv1.SideBuy, "103", 4)
		f.restOrder(t, orderbookv1.SideBuy, "101", 12)
		f.restOrder(t, orderbookv1.SideSell, "100", 2)
		f.restOrder(t, orderbookv1.SideSell, "102", 7)

		incoming := newOrder(orderbookv1.SideSell, "104", 4, orderbookv1.OrderTypeAuction)
		_, err := f.book.Process(incoming)
		require.NoError(t, err)

		var total int64
		price := ""
		for _, trade := range f.sink.trades {
			price = trade.Price.String()
			total += trade.Quantity
		}
		return price, total
	}

	wantPrice, wantVolume := run()
	for i := 0; i < 10; i++ {
		price, volume := run()
		assert.Equal(t, wantPrice, price)
		assert.Equal(t, wantVolume, volume)
	}
}

func TestAuction_TieBreaksToLowestPrice(t *testing.T) {
	f := newBookFixture(t)
	f.restOrder(t, orderbookv1.SideBuy, "102", 5)
	f.restOrder(t, orderbookv1.SideSell, "100", 5)

	// Both 100 and 102 clear 5; the lowest qualifying price must win.
	incoming := newOrder(orderbookv1.SideSell, "101", 1, orderbookv1.OrderTypeAuction)
	matched, err := f.book.Process(incoming)

	require.NoError(t, err)
	assert.True(t, matched)
	require.NotEmpty(t, f.sink.trades)
	for _, trade := range f.sink.trades {
		assert.True(t, trade.Price.Equal(decimal.RequireFromString("100")))
	}
}

func TestAuction_IncomingParticipatesInCross(t *testing.T) {
	f := newBookFixture(t)
	maker := f.restOrder(t, orderbookv1.SideBuy, "101", 5)

	incoming := newOrder(orderbookv1.SideSell, "100", 5, orderbookv1.OrderTypeAuction)
	matched, err := f.book.Process(incoming)

	require.NoError(t, err)
	assert.True(t, matched)
	require.Len(t, f.sink.trades, 1)
	assert.Equal(t, maker.ID, f.sink.trades[0].MakerOrderID)
	assert.Equal(t, incoming.ID, f.sink.trades[0].TakerOrderID)
	assert.True(t, incoming.IsFilled())
	assert.Equal(t, int64(0), f.book.BidTotalVolume())
	assert.Equal(t, int64(0), f.book.AskTotalVolume())
}

func TestAuction_NoCrossRestsIncoming(t *testing.T) {
	f := newBookFixture(t)
	f.restOrder(t, orderbookv1.SideBuy, "99", 5)

	incoming := newOrder(orderbookv1.SideSell, "101", 5, orderbookv1.OrderTypeAuction)
	matched, err := f.book.Process(incoming)

	require.NoError(t, err)
	assert.False(t, matched)
	assert.Empty(t, f.sink.trades)
	assert.Equal(t, int64(5), f.book.AskTotalVolume())
	assert.Equal(t, int64(5), f.book.BidTotalVolume())
}
