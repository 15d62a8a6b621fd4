package orderbookv1

import "sort"

// ArrayLevel is one price level of an ArrayBook depth report.
type ArrayLevel struct {
	Price    int64 `json:"price"`
	Quantity int64 `json:"quantity"`
}

// ArrayBook is a single-side level book on two parallel slices, for paths
// where only FIFO-at-best-price level arithmetic is needed and allocation
// per order is too expensive. Prices are integer ticks. It tracks aggregate
// quantity per level only, never per-order attribution.
//
// Match leaves consumed levels in place with zero quantity instead of
// shifting the tail; reads skip the zero prefix and Compact reclaims it
// off the hot path.
type ArrayBook struct {
	side       Side
	prices     []int64
	quantities []int64
	// head is the first index that may hold a live level. Everything
	// before it is a zeroed prefix awaiting compaction.
	head int
}

// NewArrayBook creates an empty array book with the given level capacity
// hint.
func NewArrayBook(side Side, capacity int) *ArrayBook {
	if capacity < 0 {
		capacity = 0
	}
	return &ArrayBook{
		side:       side,
		prices:     make([]int64, 0, capacity),
		quantities: make([]int64, 0, capacity),
	}
}

// Side returns which side this book holds.
func (ab *ArrayBook) Side() Side {
	return ab.side
}

// before reports whether price a has strictly better priority than b:
// higher first for bids, lower first for asks.
func (ab *ArrayBook) before(a, b int64) bool {
	if ab.side == SideBuy {
		return a > b
	}
	return a < b
}

// crosses reports whether a resting level at price matches an incoming
// order from the opposite side limited at incoming.
func (ab *ArrayBook) crosses(price, incoming int64) bool {
	if ab.side == SideSell {
		return price <= incoming
	}
	return price >= incoming
}

// Add merges quantity into the level at price, inserting a new level at
// the binary-searched position when none exists.
func (ab *ArrayBook) Add(price, quantity int64) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if price <= 0 {
		return ErrInvalidPrice
	}

	i := sort.Search(len(ab.prices)-ab.head, func(j int) bool {
		return !ab.before(ab.prices[ab.head+j], price)
	}) + ab.head

	if i < len(ab.prices) && ab.prices[i] == price {
		ab.quantities[i] += quantity
		return nil
	}

	ab.prices = append(ab.prices, 0)
	ab.quantities = append(ab.quantities, 0)
	copy(ab.prices[i+1:], ab.prices[i:])
	copy(ab.quantities[i+1:], ab.quantities[i:])
	ab.prices[i] = price
	ab.quantities[i] = quantity

	return nil
}

// Match consumes resting quantity against an incoming opposite-side order,
// best level first, while the crossing condition holds. Fully consumed
// levels are zeroed in place, not removed; Compact reclaims them later.
// It returns the quantity filled.
func (ab *ArrayBook) Match(incomingPrice, incomingQty int64) int64 {
	var filled int64
	for i := ab.head; i < len(ab.prices) && incomingQty > 0; i++ {
		if ab.quantities[i] == 0 {
			continue
		}
		if !ab.crosses(ab.prices[i], incomingPrice) {
			break
		}

		take := ab.quantities[i]
		if take > incomingQty {
			take = incomingQty
		}
		ab.quantities[i] -= take
		incomingQty -= take
		filled += take

		if ab.quantities[i] == 0 && i == ab.head {
			ab.head = i + 1
		}
	}
	return filled
}

// BestPrice returns the top-priority live price, skipping any zeroed
// levels left by Match. ok is false when no live level remains.
func (ab *ArrayBook) BestPrice() (int64, bool) {
	for i := ab.head; i < len(ab.prices); i++ {
		if ab.quantities[i] > 0 {
			return ab.prices[i], true
		}
	}
	return 0, false
}

// TotalVolume returns the aggregate live quantity.
func (ab *ArrayBook) TotalVolume() int64 {
	var total int64
	for i := ab.head; i < len(ab.prices); i++ {
		total += ab.quantities[i]
	}
	return total
}

// Depth reports live levels in priority order. Zeroed levels are excluded
// even before compaction runs.
func (ab *ArrayBook) Depth() []ArrayLevel {
	depth := make([]ArrayLevel, 0, len(ab.prices)-ab.head)
	for i := ab.head; i < len(ab.prices); i++ {
		if ab.quantities[i] == 0 {
			continue
		}
		depth = append(depth, ArrayLevel{Price: ab.prices[i], Quantity: ab.quantities[i]})
	}
	return depth
}

// Len returns the number of live levels.
func (ab *ArrayBook) Len() int {
	n := 0
	for i := ab.head; i < len(ab.prices); i++ {
		if ab.quantities[i] > 0 {
			n++
		}
	}
	return n
}

// Compact removes zeroed levels, restoring the dense sorted layout. It is
// meant to run off the matching path, for example between processing
// batches.
func (ab *ArrayBook) Compact() {
	out := 0
	for i := ab.head; i < len(ab.prices); i++ {
		if ab.quantities[i] == 0 {
			continue
		}
		ab.prices[out] = ab.prices[i]
		ab.quantities[out] = ab.quantities[i]
		out++
	}
	ab.prices = ab.prices[:out]
	ab.quantities = ab.quantities[:out]
	ab.head = 0
}

// Clear empties the book without releasing capacity.
func (ab *ArrayBook) Clear() {
	ab.prices = ab.prices[:0]
	ab.quantities = ab.quantities[:0]
	ab.head = 0
}
