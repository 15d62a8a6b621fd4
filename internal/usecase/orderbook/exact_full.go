package orderbook

import (
	"github.com/openclob/matching-engine/pkg/logger"

	orderbookv1 "github.com/openclob/matching-engine/internal/domain/orderbook/v1"
)

// matchExactFull fills the incoming order completely against a single
// resting order whose price and quantity both match exactly, or cancels it
// entirely. Crossing-but-unequal prices are ineligible. Among several
// exact candidates the earliest-arriving one wins.
func matchExactFull(b *Book, order *orderbookv1.Order) bool {
	opp := b.opposite(order)

	level := opp.LevelAt(order.Price)
	if level == nil {
		b.cancelFOK(order)
		return false
	}

	var maker *orderbookv1.Order
	level.Each(func(resting *orderbookv1.Order) bool {
		if resting.Quantity == order.Quantity {
			maker = resting
			return false
		}
		return true
	})
	if maker == nil {
		b.cancelFOK(order)
		return false
	}

	b.fill(maker, order, maker.Quantity)
	return true
}

func (b *Book) cancelFOK(order *orderbookv1.Order) {
	b.logger.Debug("No exact counterparty, killing order",
		logger.Field{Key: "orderID", Value: order.ID},
		logger.Field{Key: "price", Value: order.Price.String()},
		logger.Field{Key: "quantity", Value: order.Quantity},
	)
	b.sink.OrderCancelled(order, order.Quantity, orderbookv1.CancelReasonFillOrKillMiss)
}
