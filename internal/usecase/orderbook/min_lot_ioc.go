package orderbook

import (
	"github.com/openclob/matching-engine/pkg/logger"

	orderbookv1 "github.com/openclob/matching-engine/internal/domain/orderbook/v1"
)

// matchMinLotIOC fills as much as possible immediately and discards any
// remainder; nothing ever rests. The minimum lot does not change what
// fills, it only distinguishes how the discarded remainder is reported: a
// remainder below the floor is cancelled as below_min_lot, anything else
// as ioc_expired.
func matchMinLotIOC(b *Book, order *orderbookv1.Order) bool {
	filled := b.matchGreedy(order)

	remaining := order.Quantity
	if remaining > 0 {
		reason := orderbookv1.CancelReasonIOCExpired
		if remaining < order.MinLot {
			reason = orderbookv1.CancelReasonBelowMinLot
		}
		b.logger.Debug("Discarding immediate-or-cancel remainder",
			logger.Field{Key: "orderID", Value: order.ID},
			logger.Field{Key: "remaining", Value: remaining},
			logger.Field{Key: "minLot", Value: order.MinLot},
			logger.Field{Key: "reason", Value: string(reason)},
		)
		b.sink.OrderCancelled(order, remaining, reason)
	}

	return filled > 0
}
