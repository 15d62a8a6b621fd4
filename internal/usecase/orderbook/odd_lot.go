package orderbook

import (
	"container/list"

	"github.com/openclob/matching-engine/pkg/logger"

	orderbookv1 "github.com/openclob/matching-engine/internal/domain/orderbook/v1"
)

// overflowEntry is one parked remainder with its consumed retry count.
type overflowEntry struct {
	order   *orderbookv1.Order
	retries int
}

// overflowQueue is the FIFO of unfilled remainders kept outside the book,
// re-attempted on every odd-lot call.
type overflowQueue struct {
	entries *list.List
}

func newOverflowQueue() *overflowQueue {
	return &overflowQueue{entries: list.New()}
}

func (q *overflowQueue) Push(order *orderbookv1.Order, retries int) {
	q.entries.PushBack(&overflowEntry{order: order, retries: retries})
}

func (q *overflowQueue) Pop() *overflowEntry {
	front := q.entries.Front()
	if front == nil {
		return nil
	}
	q.entries.Remove(front)
	return front.Value.(*overflowEntry)
}

func (q *overflowQueue) Len() int {
	return q.entries.Len()
}

// Each visits entries front to back.
func (q *overflowQueue) Each(fn func(order *orderbookv1.Order, retries int)) {
	for e := q.entries.Front(); e != nil; e = e.Next() {
		entry := e.Value.(*overflowEntry)
		fn(entry.order, entry.retries)
	}
}

// matchOddLot drains the overflow queue against the current book state,
// then matches the incoming order greedily and parks any remainder on the
// queue with a zero retry count. Drained entries that remain unfilled are
// requeued with their retry count incremented, until the order's retry
// budget is spent, at which point the remainder is cancelled. This is the
// one strategy that carries state across calls.
func matchOddLot(b *Book, order *orderbookv1.Order) bool {
	b.drainOverflow()

	filled := b.matchGreedy(order)
	if !order.IsFilled() {
		b.logger.Debug("Parking remainder on overflow queue",
			logger.Field{Key: "orderID", Value: order.ID},
			logger.Field{Key: "remaining", Value: order.Quantity},
		)
		b.overflow.Push(order, 0)
	}

	return filled > 0
}

// drainOverflow re-attempts every queued remainder once, in FIFO order.
// Only the entries present when the drain starts are visited, so a
// remainder requeued during the drain is not retried twice in one pass.
func (b *Book) drainOverflow() {
	for n := b.overflow.Len(); n > 0; n-- {
		entry := b.overflow.Pop()
		entry.retries++

		b.matchGreedy(entry.order)
		if entry.order.IsFilled() {
			continue
		}

		if entry.retries >= entry.order.MaxRetries {
			b.logger.Info("Overflow retry budget spent, cancelling remainder",
				logger.Field{Key: "orderID", Value: entry.order.ID},
				logger.Field{Key: "remaining", Value: entry.order.Quantity},
				logger.Field{Key: "retries", Value: entry.retries},
			)
			b.sink.OrderCancelled(entry.order, entry.order.Quantity, orderbookv1.CancelReasonRetriesExhausted)
			continue
		}

		b.overflow.Push(entry.order, entry.retries)
	}
}
