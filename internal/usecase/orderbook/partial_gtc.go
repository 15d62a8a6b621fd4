package orderbook

import (
	orderbookv1 "github.com/openclob/matching-engine/internal/domain/orderbook/v1"
)

// matchPartialGTC fills as much as possible immediately and rests any
// remainder on the incoming order's own side at its original limit price,
// keeping its minimum lot and retry budget. The remainder joins the queue
// with a fresh arrival timestamp.
func matchPartialGTC(b *Book, order *orderbookv1.Order) bool {
	filled := b.matchGreedy(order)
	if !order.IsFilled() {
		b.rest(order)
	}
	return filled > 0
}
