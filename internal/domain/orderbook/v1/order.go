package orderbookv1

import (
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
)

// Side represents which side of the book an order belongs to.
type Side int8

const (
	// SideBuy is a bid.
	SideBuy Side = iota
	// SideSell is an ask.
	SideSell
)

// Opposite returns the side an order of this side matches against.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

func (s Side) String() string {
	if s == SideBuy {
		return "buy"
	}
	return "sell"
}

// OrderType selects the matching strategy applied to an incoming order.
type OrderType string

const (
	// OrderTypeExactFull fills completely against one resting order at the
	// exact limit price, or cancels entirely.
	OrderTypeExactFull OrderType = "exact_full"
	// OrderTypeMinLotIOC fills what it can immediately and cancels the rest.
	OrderTypeMinLotIOC OrderType = "min_lot_ioc"
	// OrderTypePartialGTC fills what it can and rests the remainder.
	OrderTypePartialGTC OrderType = "partial_gtc"
	// OrderTypeProRata allocates the incoming quantity proportionally across
	// the first crossing price level.
	OrderTypeProRata OrderType = "pro_rata"
	// OrderTypeAuction clears both sides at a single computed price.
	OrderTypeAuction OrderType = "auction_cross"
	// OrderTypeOddLot fills what it can and parks the remainder on a retry
	// queue drained on subsequent calls.
	OrderTypeOddLot OrderType = "odd_lot_overflow"
)

var (
	idCounter     uint64
	lastTimestamp int64
)

// NextID returns a process-wide monotonically increasing order id.
// Ids are never reused.
func NextID() uint64 {
	return atomic.AddUint64(&idCounter, 1)
}

// NextTimestamp returns a monotonic, strictly increasing timestamp in
// nanoseconds. It is used only as the FIFO tie-break within a price level
// and is not wall-clock accurate.
func NextTimestamp() int64 {
	for {
		last := atomic.LoadInt64(&lastTimestamp)
		now := time.Now().UnixNano()
		if now <= last {
			now = last + 1
		}
		if atomic.CompareAndSwapInt64(&lastTimestamp, last, now) {
			return now
		}
	}
}

// AdvanceID raises the id counter to at least seen, so ids issued after a
// snapshot restore never collide with restored ones.
func AdvanceID(seen uint64) {
	for {
		cur := atomic.LoadUint64(&idCounter)
		if cur >= seen {
			return
		}
		if atomic.CompareAndSwapUint64(&idCounter, cur, seen) {
			return
		}
	}
}

// Order represents a single order. Identity fields are immutable after
// construction; Quantity is decremented by the matching strategies as
// fills occur and never goes negative. An order with Quantity 0 is inert.
type Order struct {
	ID         uint64          `json:"id"`
	UserID     string          `json:"userID"`
	Side       Side            `json:"side"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int64           `json:"quantity"`
	Type       OrderType       `json:"type"`
	Timestamp  int64           `json:"timestamp"`
	MinLot     int64           `json:"minLot"`
	MaxRetries int             `json:"maxRetries"`
}

// NewOrder creates a new order with a fresh id and arrival timestamp.
// MinLot defaults to 1 and MaxRetries to 3.
func NewOrder(userID string, side Side, price decimal.Decimal, quantity int64, orderType OrderType) *Order {
	return &Order{
		ID:         NextID(),
		UserID:     userID,
		Side:       side,
		Price:      price,
		Quantity:   quantity,
		Type:       orderType,
		Timestamp:  NextTimestamp(),
		MinLot:     1,
		MaxRetries: 3,
	}
}

// IsBuy reports whether the order is a bid.
func (o *Order) IsBuy() bool {
	return o.Side == SideBuy
}

// IsFilled reports whether the order has no remaining quantity.
func (o *Order) IsFilled() bool {
	return o.Quantity <= 0
}

// RenewTimestamp assigns a fresh arrival timestamp. A remainder that rests
// after a partial fill is a new queue entrant, not an heir to the original
// arrival slot, since the order never rested before that point.
func (o *Order) RenewTimestamp() {
	o.Timestamp = NextTimestamp()
}

// Crosses reports whether the order's limit crosses the given opposite-side
// price: a buy fills asks priced at or below its limit, a sell fills bids
// priced at or above its limit.
func (o *Order) Crosses(oppositePrice decimal.Decimal) bool {
	if o.IsBuy() {
		return oppositePrice.LessThanOrEqual(o.Price)
	}
	return oppositePrice.GreaterThanOrEqual(o.Price)
}

// PlaceOrderRequest represents a request to place an order, as delivered
// by the order intake stream.
type PlaceOrderRequest struct {
	UserID     string    `json:"userID"`
	Type       OrderType `json:"type"`
	Bid        bool      `json:"bid"`
	Quantity   int64     `json:"quantity"`
	Price      string    `json:"price"`
	MinLot     int64     `json:"minLot"`
	MaxRetries int       `json:"maxRetries"`
	Offset     int64     `json:"-"` // position in the intake stream
}

// ToOrder builds a fully-formed Order from the request, parsing the exact
// decimal price. Zero-valued MinLot and MaxRetries take their defaults.
func (r *PlaceOrderRequest) ToOrder() (*Order, error) {
	price, err := decimal.NewFromString(r.Price)
	if err != nil {
		return nil, err
	}

	side := SideSell
	if r.Bid {
		side = SideBuy
	}

	order := NewOrder(r.UserID, side, price, r.Quantity, r.Type)
	if r.MinLot > 0 {
		order.MinLot = r.MinLot
	}
	if r.MaxRetries > 0 {
		order.MaxRetries = r.MaxRetries
	}

	return order, nil
}
