package orderbookv1

import (
	"container/list"
	"errors"
	"fmt"

	"github.com/google/btree"
	"github.com/shopspring/decimal"
)

var (
	// ErrNilOrder is returned when a nil order is inserted.
	ErrNilOrder = errors.New("order cannot be nil")
	// ErrInvalidQuantity is returned when an order with non-positive
	// quantity is inserted.
	ErrInvalidQuantity = errors.New("quantity must be positive")
	// ErrInvalidPrice is returned when an order with a non-positive price
	// is inserted.
	ErrInvalidPrice = errors.New("price must be positive")
	// ErrDuplicateOrder is returned when an order id is already resting.
	ErrDuplicateOrder = errors.New("order id already resting")
	// ErrOrderNotFound is returned when an order is not resting on the side.
	ErrOrderNotFound = errors.New("order not found")
	// ErrWrongSide is returned when an order is inserted into the opposite
	// side's book.
	ErrWrongSide = errors.New("order side does not match book side")
)

// LevelDepth is one price level of a depth snapshot.
type LevelDepth struct {
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity"`
	Orders   int             `json:"orders"`
}

type sideEntry struct {
	level *Level
	elem  *list.Element
}

// SideBook is one side of the order book: price buckets kept in a btree,
// best price being the maximum for bids and the minimum for asks. All
// resting-quantity mutation goes through Reduce so that emptied orders and
// emptied buckets are removed immediately and never visible to queries.
//
// SideBook is not safe for concurrent use. The engine serializes all access
// through a single goroutine per instrument.
type SideBook struct {
	side    Side
	tree    *btree.BTree
	entries map[uint64]*sideEntry
}

// NewSideBook creates an empty book side.
func NewSideBook(side Side) *SideBook {
	return &SideBook{
		side:    side,
		tree:    btree.New(32),
		entries: map[uint64]*sideEntry{},
	}
}

// Side returns which side this book holds.
func (sb *SideBook) Side() Side {
	return sb.side
}

// Insert adds an order to its price bucket, preserving FIFO order within
// the price.
func (sb *SideBook) Insert(order *Order) error {
	if order == nil {
		return ErrNilOrder
	}
	if order.Side != sb.side {
		return ErrWrongSide
	}
	if order.Quantity <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidQuantity, order.Quantity)
	}
	if !order.Price.IsPositive() {
		return fmt.Errorf("%w: got %s", ErrInvalidPrice, order.Price)
	}
	if _, exists := sb.entries[order.ID]; exists {
		return fmt.Errorf("%w: %d", ErrDuplicateOrder, order.ID)
	}

	level := sb.levelAt(order.Price)
	if level == nil {
		level = NewLevel(order.Price)
		sb.tree.ReplaceOrInsert(level)
	}

	sb.entries[order.ID] = &sideEntry{
		level: level,
		elem:  level.Enqueue(order),
	}

	return nil
}

// Contains reports whether an order id is resting on this side.
func (sb *SideBook) Contains(id uint64) bool {
	_, ok := sb.entries[id]
	return ok
}

// BestLevel returns the top-priority price bucket, or nil when the side is
// empty. An empty side is not an error; it signals no match is possible.
func (sb *SideBook) BestLevel() *Level {
	var item btree.Item
	if sb.side == SideBuy {
		item = sb.tree.Max()
	} else {
		item = sb.tree.Min()
	}
	if item == nil {
		return nil
	}
	return item.(*Level)
}

// BestPrice returns the top-priority price. ok is false when the side is
// empty.
func (sb *SideBook) BestPrice() (decimal.Decimal, bool) {
	level := sb.BestLevel()
	if level == nil {
		return decimal.Decimal{}, false
	}
	return level.Price, true
}

// PeekBest returns the oldest order at the best price, or nil when empty.
func (sb *SideBook) PeekBest() *Order {
	level := sb.BestLevel()
	if level == nil {
		return nil
	}
	return level.Front()
}

// LevelAt returns the bucket at exactly the given price, or nil.
func (sb *SideBook) LevelAt(price decimal.Decimal) *Level {
	return sb.levelAt(price)
}

func (sb *SideBook) levelAt(price decimal.Decimal) *Level {
	item := sb.tree.Get(&Level{Price: price})
	if item == nil {
		return nil
	}
	return item.(*Level)
}

// IteratePriority walks price buckets in match-priority order: descending
// price for bids, ascending for asks. The walk stops when fn returns false.
// fn must not insert or remove levels.
func (sb *SideBook) IteratePriority(fn func(*Level) bool) {
	iter := func(item btree.Item) bool {
		return fn(item.(*Level))
	}
	if sb.side == SideBuy {
		sb.tree.Descend(iter)
	} else {
		sb.tree.Ascend(iter)
	}
}

// Reduce deducts qty from a resting order, dropping the order when fully
// filled and its bucket when emptied. This is the single mutation path for
// resting quantity, so no orphaned bucket or zero-quantity order survives.
func (sb *SideBook) Reduce(order *Order, qty int64) error {
	entry, ok := sb.entries[order.ID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrOrderNotFound, order.ID)
	}
	if qty > order.Quantity {
		return fmt.Errorf("%w: reduce %d exceeds remaining %d", ErrInvalidQuantity, qty, order.Quantity)
	}

	level := entry.level
	level.reduce(entry.elem, qty)

	if order.Quantity <= 0 {
		delete(sb.entries, order.ID)
	}
	if level.IsEmpty() {
		sb.tree.Delete(level)
	}

	return nil
}

// Remove unlinks a resting order outright, along with its bucket when
// emptied.
func (sb *SideBook) Remove(order *Order) error {
	entry, ok := sb.entries[order.ID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrOrderNotFound, order.ID)
	}

	level := entry.level
	level.unlink(entry.elem)
	delete(sb.entries, order.ID)

	if level.IsEmpty() {
		sb.tree.Delete(level)
	}

	return nil
}

// OrderCount returns the number of resting orders on this side.
func (sb *SideBook) OrderCount() int {
	return len(sb.entries)
}

// TotalVolume returns the aggregate resting quantity across all levels.
func (sb *SideBook) TotalVolume() int64 {
	var total int64
	sb.tree.Ascend(func(item btree.Item) bool {
		total += item.(*Level).TotalQuantity()
		return true
	})
	return total
}

// Depth returns all price levels in match-priority order with their
// aggregate quantity. Only live levels are reported.
func (sb *SideBook) Depth() []LevelDepth {
	depth := make([]LevelDepth, 0, sb.tree.Len())
	sb.IteratePriority(func(level *Level) bool {
		depth = append(depth, LevelDepth{
			Price:    level.Price,
			Quantity: level.TotalQuantity(),
			Orders:   level.OrderCount(),
		})
		return true
	})
	return depth
}

// Orders returns all resting orders in price-then-time priority order.
func (sb *SideBook) Orders() []*Order {
	orders := make([]*Order, 0, len(sb.entries))
	sb.IteratePriority(func(level *Level) bool {
		level.Each(func(o *Order) bool {
			orders = append(orders, o)
			return true
		})
		return true
	})
	return orders
}
