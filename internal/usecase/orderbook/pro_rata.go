package orderbook

import (
	"math/big"

	"github.com/openclob/matching-engine/pkg/logger"

	orderbookv1 "github.com/openclob/matching-engine/internal/domain/orderbook/v1"
)

// matchProRata allocates the incoming quantity proportionally across the
// resting orders of the first crossing price level. Each resting order
// receives floor(restingQty / levelQty * incomingQty); an allocation below
// that order's minimum lot is dropped to zero rather than partially
// honored. Quantity left over from floor-rounding or floor-rejection is
// not redistributed and not carried to deeper levels; it is reported as
// residual and cancelled. The redistribution policy is a known gap in the
// documented algorithm, kept as is rather than invented around.
func matchProRata(b *Book, order *orderbookv1.Order) bool {
	opp := b.opposite(order)

	level := opp.BestLevel()
	if level == nil || !order.Crosses(level.Price) {
		b.cancelResidual(order, order.Quantity)
		return false
	}

	levelQty := level.TotalQuantity()
	incomingQty := order.Quantity

	// The level is mutated while allocating, so walk a snapshot.
	makers := make([]*orderbookv1.Order, 0, level.OrderCount())
	level.Each(func(resting *orderbookv1.Order) bool {
		makers = append(makers, resting)
		return true
	})

	var filled int64
	for _, maker := range makers {
		share := proRataShare(maker.Quantity, incomingQty, levelQty)
		if share < maker.MinLot {
			continue
		}
		if share > maker.Quantity {
			share = maker.Quantity
		}
		if share > order.Quantity {
			share = order.Quantity
		}
		if share == 0 {
			continue
		}

		b.fill(maker, order, share)
		filled += share
	}

	if order.Quantity > 0 {
		b.cancelResidual(order, order.Quantity)
	}

	return filled > 0
}

// proRataShare computes floor(restingQty * incomingQty / levelQty) without
// intermediate int64 overflow.
func proRataShare(restingQty, incomingQty, levelQty int64) int64 {
	if levelQty == 0 {
		return 0
	}
	share := new(big.Int).Mul(big.NewInt(restingQty), big.NewInt(incomingQty))
	share.Quo(share, big.NewInt(levelQty))
	return share.Int64()
}

func (b *Book) cancelResidual(order *orderbookv1.Order, residual int64) {
	b.logger.Info("Unallocated pro-rata residual dropped",
		logger.Field{Key: "orderID", Value: order.ID},
		logger.Field{Key: "residual", Value: residual},
	)
	b.sink.OrderCancelled(order, residual, orderbookv1.CancelReasonProRataResidual)
}
