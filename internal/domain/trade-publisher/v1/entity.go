package tradepublisherv1

import (
	"encoding/json"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
	orderbookv1 "github.com/openclob/matching-engine/internal/domain/orderbook/v1"
)

var entropy = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)

// NewEventID returns a lexicographically sortable unique event id.
func NewEventID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// TradeEvent is the published form of one execution. The price travels as
// its exact decimal string.
type TradeEvent struct {
	EventID      string `json:"eventID"`
	Instrument   string `json:"instrument"`
	MakerOrderID uint64 `json:"makerOrderID"`
	TakerOrderID uint64 `json:"takerOrderID"`
	Price        string `json:"price"`
	Quantity     int64  `json:"quantity"`
	Timestamp    int64  `json:"timestamp"`
}

// OrderDoneEvent is published when an order leaves the book unfilled or
// partially filled, carrying the reason it was cancelled.
type OrderDoneEvent struct {
	EventID    string                   `json:"eventID"`
	Instrument string                   `json:"instrument"`
	OrderID    uint64                   `json:"orderID"`
	UserID     string                   `json:"userID"`
	Remaining  int64                    `json:"remaining"`
	Reason     orderbookv1.CancelReason `json:"reason"`
	Timestamp  int64                    `json:"timestamp"`
}

// CreateFromTrade builds a publishable event from a trade.
func CreateFromTrade(instrument string, trade orderbookv1.Trade) *TradeEvent {
	return &TradeEvent{
		EventID:      NewEventID(),
		Instrument:   instrument,
		MakerOrderID: trade.MakerOrderID,
		TakerOrderID: trade.TakerOrderID,
		Price:        trade.Price.String(),
		Quantity:     trade.Quantity,
		Timestamp:    time.Now().UnixNano(),
	}
}

// CreateFromCancel builds a publishable event from a cancellation.
func CreateFromCancel(instrument string, order *orderbookv1.Order, remaining int64, reason orderbookv1.CancelReason) *OrderDoneEvent {
	return &OrderDoneEvent{
		EventID:    NewEventID(),
		Instrument: instrument,
		OrderID:    order.ID,
		UserID:     order.UserID,
		Remaining:  remaining,
		Reason:     reason,
		Timestamp:  time.Now().UnixNano(),
	}
}

// ToBytes converts an event to its wire form.
func ToBytes(event any) []byte {
	buf, err := json.Marshal(event)
	if err != nil {
		return nil
	}
	return buf
}

// TradeFromBytes converts a byte array back to a trade event.
func TradeFromBytes(data []byte) *TradeEvent {
	var event TradeEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil
	}
	return &event
}

// OrderDoneFromBytes converts a byte array back to an order-done event.
func OrderDoneFromBytes(data []byte) *OrderDoneEvent {
	var event OrderDoneEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil
	}
	return &event
}
