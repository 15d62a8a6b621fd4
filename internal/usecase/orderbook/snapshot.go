package orderbook

import (
	"github.com/shopspring/decimal"

	orderbookv1 "github.com/openclob/matching-engine/internal/domain/orderbook/v1"
	snapshotv1 "github.com/openclob/matching-engine/internal/domain/snapshot/v1"
)

// CreateSnapshot captures every resting order plus the overflow retry
// queue. The caller stamps the intake offset.
func (b *Book) CreateSnapshot() *snapshotv1.Snapshot {
	orders := make([]snapshotv1.BookOrder, 0, b.bids.OrderCount()+b.asks.OrderCount())
	for _, o := range b.bids.Orders() {
		orders = append(orders, toBookOrder(o))
	}
	for _, o := range b.asks.Orders() {
		orders = append(orders, toBookOrder(o))
	}

	overflow := make([]snapshotv1.OverflowRecord, 0, b.overflow.Len())
	b.overflow.Each(func(o *orderbookv1.Order, retries int) {
		overflow = append(overflow, snapshotv1.OverflowRecord{
			Order:   toBookOrder(o),
			Retries: retries,
		})
	})

	return &snapshotv1.Snapshot{
		OrderBookSnapshot: snapshotv1.OrderBookSnapshot{
			Orders:   orders,
			Overflow: overflow,
		},
	}
}

// RestoreOrderbook rebuilds the book from a snapshot, preserving original
// order ids and arrival timestamps so price-time priority survives the
// restart. The id counter is advanced past every restored id.
func (b *Book) RestoreOrderbook(snapshot *snapshotv1.Snapshot) error {
	if snapshot == nil {
		return nil
	}

	b.bids = orderbookv1.NewSideBook(orderbookv1.SideBuy)
	b.asks = orderbookv1.NewSideBook(orderbookv1.SideSell)
	b.overflow = newOverflowQueue()

	for _, record := range snapshot.OrderBookSnapshot.Orders {
		order, err := fromBookOrder(record)
		if err != nil {
			return err
		}
		if err := b.side(order.Side).Insert(order); err != nil {
			return err
		}
		orderbookv1.AdvanceID(order.ID)
	}

	for _, record := range snapshot.OrderBookSnapshot.Overflow {
		order, err := fromBookOrder(record.Order)
		if err != nil {
			return err
		}
		b.overflow.Push(order, record.Retries)
		orderbookv1.AdvanceID(order.ID)
	}

	return nil
}

func toBookOrder(o *orderbookv1.Order) snapshotv1.BookOrder {
	return snapshotv1.BookOrder{
		OrderID:    o.ID,
		UserID:     o.UserID,
		Bid:        o.IsBuy(),
		Price:      o.Price.String(),
		Quantity:   o.Quantity,
		Type:       o.Type,
		Timestamp:  o.Timestamp,
		MinLot:     o.MinLot,
		MaxRetries: o.MaxRetries,
	}
}

func fromBookOrder(record snapshotv1.BookOrder) (*orderbookv1.Order, error) {
	price, err := decimal.NewFromString(record.Price)
	if err != nil {
		return nil, err
	}

	side := orderbookv1.SideSell
	if record.Bid {
		side = orderbookv1.SideBuy
	}

	return &orderbookv1.Order{
		ID:         record.OrderID,
		UserID:     record.UserID,
		Side:       side,
		Price:      price,
		Quantity:   record.Quantity,
		Type:       record.Type,
		Timestamp:  record.Timestamp,
		MinLot:     record.MinLot,
		MaxRetries: record.MaxRetries,
	}, nil
}
