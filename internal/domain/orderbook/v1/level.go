package orderbookv1

import (
	"container/list"

	"github.com/google/btree"
	"github.com/shopspring/decimal"
)

// Level is one price bucket on one side of the book: a FIFO queue of
// resting orders sharing the same limit price, with a cached total volume.
// Insertion order is priority order within the price.
type Level struct {
	Price  decimal.Decimal
	orders *list.List
	volume int64
}

// NewLevel creates an empty price bucket.
func NewLevel(price decimal.Decimal) *Level {
	return &Level{
		Price:  price,
		orders: list.New(),
	}
}

// Less orders levels by ascending price inside the btree.
func (l *Level) Less(than btree.Item) bool {
	return l.Price.LessThan(than.(*Level).Price)
}

// Enqueue appends an order at the back of the FIFO queue.
func (l *Level) Enqueue(order *Order) *list.Element {
	l.volume += order.Quantity
	return l.orders.PushBack(order)
}

// Front returns the oldest resting order at this price, or nil when empty.
func (l *Level) Front() *Order {
	e := l.orders.Front()
	if e == nil {
		return nil
	}
	return e.Value.(*Order)
}

// Each walks the FIFO queue front to back until fn returns false.
func (l *Level) Each(fn func(*Order) bool) {
	for e := l.orders.Front(); e != nil; e = e.Next() {
		if !fn(e.Value.(*Order)) {
			return
		}
	}
}

// TotalQuantity returns the aggregate resting quantity at this price.
func (l *Level) TotalQuantity() int64 {
	return l.volume
}

// OrderCount returns the number of resting orders at this price.
func (l *Level) OrderCount() int {
	return l.orders.Len()
}

// IsEmpty reports whether the bucket holds no orders.
func (l *Level) IsEmpty() bool {
	return l.orders.Len() == 0
}

// reduce deducts qty from the element's order and the cached volume,
// unlinking the order the instant it is fully filled. Callers go through
// SideBook so the level itself is removed when it empties.
func (l *Level) reduce(e *list.Element, qty int64) {
	order := e.Value.(*Order)
	order.Quantity -= qty
	l.volume -= qty
	if order.Quantity <= 0 {
		l.orders.Remove(e)
	}
}

// unlink removes the element outright, deducting its remaining quantity
// from the cached volume.
func (l *Level) unlink(e *list.Element) {
	order := e.Value.(*Order)
	l.volume -= order.Quantity
	l.orders.Remove(e)
}
