package orderbook

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderbookv1 "github.com/openclob/matching-engine/internal/domain/orderbook/v1"
	"github.com/openclob/matching-engine/pkg/logger"
)

type cancelRecord struct {
	orderID   uint64
	remaining int64
	reason    orderbookv1.CancelReason
}

// recordingSink captures events in the order the book reports them.
type recordingSink struct {
	trades  []orderbookv1.Trade
	cancels []cancelRecord
}

func (s *recordingSink) TradeExecuted(trade orderbookv1.Trade) {
	s.trades = append(s.trades, trade)
}

func (s *recordingSink) OrderCancelled(order *orderbookv1.Order, remaining int64, reason orderbookv1.CancelReason) {
	s.cancels = append(s.cancels, cancelRecord{orderID: order.ID, remaining: remaining, reason: reason})
}

// filledFor sums the fill quantity attributed to an order across all trades.
func (s *recordingSink) filledFor(orderID uint64) int64 {
	var total int64
	for _, trade := range s.trades {
		if trade.MakerOrderID == orderID || trade.TakerOrderID == orderID {
			total += trade.Quantity
		}
	}
	return total
}

type bookFixture struct {
	book *Book
	sink *recordingSink
}

func newBookFixture(t *testing.T) *bookFixture {
	t.Helper()
	log, err := logger.NewLogger()
	require.NoError(t, err)

	sink := &recordingSink{}
	return &bookFixture{
		book: NewBook("BTC-USD", sink, log),
		sink: sink,
	}
}

func newOrder(side orderbookv1.Side, price string, quantity int64, orderType orderbookv1.OrderType) *orderbookv1.Order {
	return orderbookv1.NewOrder("user-"+price, side, decimal.RequireFromString(price), quantity, orderType)
}

// restOrder plants an order directly on the book side, bypassing matching.
func (f *bookFixture) restOrder(t *testing.T, side orderbookv1.Side, price string, quantity int64) *orderbookv1.Order {
	t.Helper()
	order := newOrder(side, price, quantity, orderbookv1.OrderTypePartialGTC)
	if side == orderbookv1.SideBuy {
		require.NoError(t, f.book.bids.Insert(order))
	} else {
		require.NoError(t, f.book.asks.Insert(order))
	}
	return order
}

func TestBook_Process_Validation(t *testing.T) {
	f := newBookFixture(t)

	t.Run("nil order", func(t *testing.T) {
		_, err := f.book.Process(nil)
		assert.ErrorIs(t, err, orderbookv1.ErrNilOrder)
	})

	t.Run("zero quantity is a no-op", func(t *testing.T) {
		order := newOrder(orderbookv1.SideBuy, "100", 0, orderbookv1.OrderTypePartialGTC)
		matched, err := f.book.Process(order)
		require.NoError(t, err)
		assert.False(t, matched)
		assert.Equal(t, int64(0), f.book.BidTotalVolume())
	})

	t.Run("negative quantity", func(t *testing.T) {
		order := newOrder(orderbookv1.SideBuy, "100", 10, orderbookv1.OrderTypePartialGTC)
		order.Quantity = -1
		_, err := f.book.Process(order)
		assert.ErrorIs(t, err, orderbookv1.ErrInvalidQuantity)
	})

	t.Run("non-positive price", func(t *testing.T) {
		order := newOrder(orderbookv1.SideBuy, "0", 10, orderbookv1.OrderTypePartialGTC)
		_, err := f.book.Process(order)
		assert.ErrorIs(t, err, orderbookv1.ErrInvalidPrice)
	})

	t.Run("duplicate id", func(t *testing.T) {
		order := f.restOrder(t, orderbookv1.SideBuy, "90", 10)
		_, err := f.book.Process(order)
		assert.ErrorIs(t, err, orderbookv1.ErrDuplicateOrder)
	})
}

func TestBook_Process_UnknownTypeFallsBackToGreedy(t *testing.T) {
	f := newBookFixture(t)
	maker := f.restOrder(t, orderbookv1.SideSell, "100", 5)

	incoming := newOrder(orderbookv1.SideBuy, "100", 8, orderbookv1.OrderType("mystery"))
	matched, err := f.book.Process(incoming)

	require.NoError(t, err)
	assert.True(t, matched)
	require.Len(t, f.sink.trades, 1)
	assert.Equal(t, maker.ID, f.sink.trades[0].MakerOrderID)
	assert.Equal(t, int64(5), f.sink.trades[0].Quantity)

	// Remainder rests instead of vanishing.
	assert.Equal(t, int64(3), f.book.BidTotalVolume())
	best, ok := f.book.BestBid()
	require.True(t, ok)
	assert.True(t, best.Equal(decimal.RequireFromString("100")))
}

func TestBook_PriceTimePriority(t *testing.T) {
	f := newBookFixture(t)
	first := f.restOrder(t, orderbookv1.SideSell, "100", 5)
	second := f.restOrder(t, orderbookv1.SideSell, "100", 5)
	cheaper := f.restOrder(t, orderbookv1.SideSell, "99", 5)

	incoming := newOrder(orderbookv1.SideBuy, "100", 12, orderbookv1.OrderTypePartialGTC)
	_, err := f.book.Process(incoming)
	require.NoError(t, err)

	// Best price first, then earliest arrival at the shared price.
	require.Len(t, f.sink.trades, 3)
	assert.Equal(t, cheaper.ID, f.sink.trades[0].MakerOrderID)
	assert.Equal(t, first.ID, f.sink.trades[1].MakerOrderID)
	assert.Equal(t, second.ID, f.sink.trades[2].MakerOrderID)
	assert.Equal(t, int64(2), f.sink.trades[2].Quantity)
	assert.Equal(t, int64(3), second.Quantity)
}

func TestBook_Conservation(t *testing.T) {
	f := newBookFixture(t)
	f.restOrder(t, orderbookv1.SideSell, "100", 7)
	f.restOrder(t, orderbookv1.SideSell, "101", 4)

	incoming := newOrder(orderbookv1.SideBuy, "101", 20, orderbookv1.OrderTypePartialGTC)
	original := incoming.Quantity
	_, err := f.book.Process(incoming)
	require.NoError(t, err)

	assert.Equal(t, original, f.sink.filledFor(incoming.ID)+incoming.Quantity)
	assert.GreaterOrEqual(t, incoming.Quantity, int64(0))
	assert.Equal(t, incoming.Quantity, f.book.BidTotalVolume())
}

func TestBook_DepthQueries(t *testing.T) {
	f := newBookFixture(t)
	f.restOrder(t, orderbookv1.SideBuy, "99", 10)
	f.restOrder(t, orderbookv1.SideBuy, "98", 5)
	f.restOrder(t, orderbookv1.SideSell, "101", 7)

	bidDepth := f.book.BidDepth()
	require.Len(t, bidDepth, 2)
	assert.True(t, bidDepth[0].Price.Equal(decimal.RequireFromString("99")))
	assert.Equal(t, int64(10), bidDepth[0].Quantity)

	askDepth := f.book.AskDepth()
	require.Len(t, askDepth, 1)
	assert.Equal(t, int64(7), askDepth[0].Quantity)

	assert.Equal(t, int64(15), f.book.BidTotalVolume())
	assert.Equal(t, int64(7), f.book.AskTotalVolume())

	bestAsk, ok := f.book.BestAsk()
	require.True(t, ok)
	assert.True(t, bestAsk.Equal(decimal.RequireFromString("101")))

	depth := f.book.DepthSnapshot()
	assert.Equal(t, bidDepth, depth.Bids)
	assert.Equal(t, askDepth, depth.Asks)
}
