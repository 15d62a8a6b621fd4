package orderbook

import (
	"sort"

	"github.com/openclob/matching-engine/pkg/logger"
	"github.com/shopspring/decimal"

	orderbookv1 "github.com/openclob/matching-engine/internal/domain/orderbook/v1"
)

// matchAuction clears both sides of the book, plus the incoming order, in
// one batch at a single price. The clearing price maximizes the volume
// that can cross; on a tie the lowest qualifying price wins, found by an
// ascending scan over the distinct prices so repeated runs of the same
// book produce identical results. Crossing orders then match in
// price-time priority at the clearing price until one side is exhausted.
// The incoming order participates like any resting order and any
// remainder it keeps rests on its own side afterward.
func matchAuction(b *Book, order *orderbookv1.Order) bool {
	bids := b.bids.Orders()
	asks := b.asks.Orders()
	if order.IsBuy() {
		bids = insertByPriority(bids, order, orderbookv1.SideBuy)
	} else {
		asks = insertByPriority(asks, order, orderbookv1.SideSell)
	}

	clearing, volume := clearingPrice(bids, asks)
	if volume == 0 {
		if !order.IsFilled() {
			b.rest(order)
		}
		return false
	}

	b.logger.Info("Auction cross",
		logger.Field{Key: "clearingPrice", Value: clearing.String()},
		logger.Field{Key: "volume", Value: volume},
	)

	filled := b.crossAt(clearing, bids, asks, order)

	if !order.IsFilled() {
		b.rest(order)
	}

	return filled > 0
}

// insertByPriority places the incoming order into the side's price-time
// ordered list at its proper priority slot.
func insertByPriority(orders []*orderbookv1.Order, order *orderbookv1.Order, side orderbookv1.Side) []*orderbookv1.Order {
	at := sort.Search(len(orders), func(i int) bool {
		cmp := orders[i].Price.Cmp(order.Price)
		if cmp == 0 {
			return orders[i].Timestamp > order.Timestamp
		}
		if side == orderbookv1.SideBuy {
			return cmp < 0
		}
		return cmp > 0
	})

	orders = append(orders, nil)
	copy(orders[at+1:], orders[at:])
	orders[at] = order
	return orders
}

// clearingPrice scans the distinct prices present on either side in
// ascending order and returns the one maximizing the crossable volume
// min(bid volume at or above p, ask volume at or below p). The first
// price reaching the maximum wins, so ties break toward the lowest price.
func clearingPrice(bids, asks []*orderbookv1.Order) (decimal.Decimal, int64) {
	seen := map[string]struct{}{}
	prices := make([]decimal.Decimal, 0, len(bids)+len(asks))
	for _, o := range append(append([]*orderbookv1.Order{}, bids...), asks...) {
		key := o.Price.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		prices = append(prices, o.Price)
	}
	sort.Slice(prices, func(i, j int) bool {
		return prices[i].LessThan(prices[j])
	})

	var best decimal.Decimal
	var bestVolume int64
	for _, p := range prices {
		var bidVolume, askVolume int64
		for _, o := range bids {
			if o.Price.GreaterThanOrEqual(p) {
				bidVolume += o.Quantity
			}
		}
		for _, o := range asks {
			if o.Price.LessThanOrEqual(p) {
				askVolume += o.Quantity
			}
		}

		volume := bidVolume
		if askVolume < volume {
			volume = askVolume
		}
		if volume > bestVolume {
			best = p
			bestVolume = volume
		}
	}

	return best, bestVolume
}

// crossAt matches eligible bids against eligible asks at the clearing
// price in price-time priority until one side runs out. Resting orders
// are deducted through their side book so emptied buckets are reclaimed;
// the incoming order is not in the book yet and is deducted directly.
func (b *Book) crossAt(clearing decimal.Decimal, bids, asks []*orderbookv1.Order, incoming *orderbookv1.Order) int64 {
	var filled int64
	bi, ai := 0, 0
	for bi < len(bids) && ai < len(asks) {
		bid, ask := bids[bi], asks[ai]

		if bid.Price.LessThan(clearing) {
			break
		}
		if ask.Price.GreaterThan(clearing) {
			break
		}
		if bid.IsFilled() {
			bi++
			continue
		}
		if ask.IsFilled() {
			ai++
			continue
		}

		take := bid.Quantity
		if ask.Quantity < take {
			take = ask.Quantity
		}

		b.reduceParticipant(bid, take, incoming)
		b.reduceParticipant(ask, take, incoming)

		// The incoming order takes; between two resting orders the later
		// arrival takes.
		maker, taker := bid, ask
		if bid == incoming || (ask != incoming && bid.Timestamp > ask.Timestamp) {
			maker, taker = ask, bid
		}

		b.sink.TradeExecuted(orderbookv1.Trade{
			MakerOrderID: maker.ID,
			TakerOrderID: taker.ID,
			Price:        clearing,
			Quantity:     take,
		})
		filled += take

		if bid.IsFilled() {
			bi++
		}
		if ask.IsFilled() {
			ai++
		}
	}
	return filled
}

func (b *Book) reduceParticipant(order *orderbookv1.Order, qty int64, incoming *orderbookv1.Order) {
	if order == incoming {
		order.Quantity -= qty
		return
	}
	if err := b.side(order.Side).Reduce(order, qty); err != nil {
		b.logger.Error(err, logger.Field{Key: "orderID", Value: order.ID})
	}
}
