package orderbook

import (
	"fmt"

	"github.com/openclob/matching-engine/pkg/logger"
	"github.com/shopspring/decimal"

	orderbookv1 "github.com/openclob/matching-engine/internal/domain/orderbook/v1"
)

// Strategy consumes an incoming order against the book and decides fills
// versus resting or cancellation. It reports whether any fill occurred.
type Strategy func(book *Book, order *orderbookv1.Order) bool

// Book owns both sides of the order book for one instrument and dispatches
// each incoming order to the strategy registered for its type. Fills and
// cancellations are reported to the event sink synchronously, in the order
// they happen.
//
// Book is not safe for concurrent use; the engine owns it from a single
// goroutine per instrument.
type Book struct {
	instrument string
	bids       *orderbookv1.SideBook
	asks       *orderbookv1.SideBook
	strategies map[orderbookv1.OrderType]Strategy
	overflow   *overflowQueue
	sink       orderbookv1.EventSink
	logger     logger.Interface
}

// NewBook creates an order book with all six strategies registered.
func NewBook(instrument string, sink orderbookv1.EventSink, log logger.Interface) *Book {
	b := &Book{
		instrument: instrument,
		bids:       orderbookv1.NewSideBook(orderbookv1.SideBuy),
		asks:       orderbookv1.NewSideBook(orderbookv1.SideSell),
		overflow:   newOverflowQueue(),
		sink:       sink,
		logger:     log,
	}

	b.strategies = map[orderbookv1.OrderType]Strategy{
		orderbookv1.OrderTypeExactFull:  matchExactFull,
		orderbookv1.OrderTypeMinLotIOC:  matchMinLotIOC,
		orderbookv1.OrderTypePartialGTC: matchPartialGTC,
		orderbookv1.OrderTypeProRata:    matchProRata,
		orderbookv1.OrderTypeAuction:    matchAuction,
		orderbookv1.OrderTypeOddLot:     matchOddLot,
	}

	return b
}

// Instrument returns the instrument this book trades.
func (b *Book) Instrument() string {
	return b.instrument
}

// Process dispatches the order to the strategy for its type and reports
// whether any fill occurred. An unregistered type falls back to a greedy
// price-time match with the remainder resting, never a silent no-op.
func (b *Book) Process(order *orderbookv1.Order) (bool, error) {
	if order == nil {
		return false, orderbookv1.ErrNilOrder
	}
	if order.Quantity < 0 {
		return false, fmt.Errorf("%w: got %d", orderbookv1.ErrInvalidQuantity, order.Quantity)
	}
	if order.IsFilled() {
		// Already consumed upstream, nothing to match.
		return false, nil
	}
	if !order.Price.IsPositive() {
		return false, fmt.Errorf("%w: got %s", orderbookv1.ErrInvalidPrice, order.Price)
	}
	if b.side(order.Side).Contains(order.ID) || b.side(order.Side.Opposite()).Contains(order.ID) {
		return false, fmt.Errorf("%w: %d", orderbookv1.ErrDuplicateOrder, order.ID)
	}

	strategy, ok := b.strategies[order.Type]
	if !ok {
		b.logger.Warn("Unknown order type, matching greedily and resting remainder",
			logger.Field{Key: "orderID", Value: order.ID},
			logger.Field{Key: "type", Value: string(order.Type)},
		)
		strategy = matchDefault
	}

	return strategy(b, order), nil
}

// side returns the book side holding the given side's resting orders.
func (b *Book) side(s orderbookv1.Side) *orderbookv1.SideBook {
	if s == orderbookv1.SideBuy {
		return b.bids
	}
	return b.asks
}

// opposite returns the side an incoming order matches against.
func (b *Book) opposite(order *orderbookv1.Order) *orderbookv1.SideBook {
	return b.side(order.Side.Opposite())
}

// fill executes quantity between a resting maker and the incoming taker,
// deducting both atomically and reporting the trade at the maker's price.
func (b *Book) fill(maker, taker *orderbookv1.Order, quantity int64) {
	price := maker.Price
	if err := b.side(maker.Side).Reduce(maker, quantity); err != nil {
		// Reduce can only fail on a maker the walk did not obtain from
		// the book, which would be a bug worth failing loudly over.
		b.logger.Error(err,
			logger.Field{Key: "makerOrderID", Value: maker.ID},
			logger.Field{Key: "quantity", Value: quantity},
		)
		return
	}
	taker.Quantity -= quantity

	b.sink.TradeExecuted(orderbookv1.Trade{
		MakerOrderID: maker.ID,
		TakerOrderID: taker.ID,
		Price:        price,
		Quantity:     quantity,
	})
}

// matchGreedy walks the opposite side in price-time priority, filling the
// incoming order while its limit crosses the best resting price. It
// returns the total quantity filled.
func (b *Book) matchGreedy(order *orderbookv1.Order) int64 {
	opp := b.opposite(order)

	var filled int64
	for !order.IsFilled() {
		maker := opp.PeekBest()
		if maker == nil || !order.Crosses(maker.Price) {
			break
		}

		take := maker.Quantity
		if take > order.Quantity {
			take = order.Quantity
		}
		b.fill(maker, order, take)
		filled += take
	}
	return filled
}

// rest inserts the order's remainder on its own side with a fresh arrival
// timestamp; the remainder is a new queue entrant, having never rested.
func (b *Book) rest(order *orderbookv1.Order) {
	order.RenewTimestamp()
	if err := b.side(order.Side).Insert(order); err != nil {
		b.logger.Error(err,
			logger.Field{Key: "orderID", Value: order.ID},
			logger.Field{Key: "side", Value: order.Side.String()},
		)
	}
}

// matchDefault is the documented fallback for unregistered order types:
// greedy price-time match, remainder rests.
func matchDefault(b *Book, order *orderbookv1.Order) bool {
	filled := b.matchGreedy(order)
	if !order.IsFilled() {
		b.rest(order)
	}
	return filled > 0
}

// BestBid returns the highest resting bid price. ok is false when no bids
// rest.
func (b *Book) BestBid() (decimal.Decimal, bool) {
	return b.bids.BestPrice()
}

// BestAsk returns the lowest resting ask price. ok is false when no asks
// rest.
func (b *Book) BestAsk() (decimal.Decimal, bool) {
	return b.asks.BestPrice()
}

// BidTotalVolume returns the aggregate resting bid quantity.
func (b *Book) BidTotalVolume() int64 {
	return b.bids.TotalVolume()
}

// AskTotalVolume returns the aggregate resting ask quantity.
func (b *Book) AskTotalVolume() int64 {
	return b.asks.TotalVolume()
}

// BidDepth returns resting bid levels, best first.
func (b *Book) BidDepth() []orderbookv1.LevelDepth {
	return b.bids.Depth()
}

// AskDepth returns resting ask levels, best first.
func (b *Book) AskDepth() []orderbookv1.LevelDepth {
	return b.asks.Depth()
}

// Depth is a point-in-time view of both sides of the book, best levels
// first.
type Depth struct {
	Bids []orderbookv1.LevelDepth `json:"bids"`
	Asks []orderbookv1.LevelDepth `json:"asks"`
}

// DepthSnapshot returns both sides of the book at call time.
func (b *Book) DepthSnapshot() Depth {
	return Depth{
		Bids: b.bids.Depth(),
		Asks: b.asks.Depth(),
	}
}

// OverflowLen returns the number of remainders parked on the odd-lot
// retry queue.
func (b *Book) OverflowLen() int {
	return b.overflow.Len()
}
