package snapshotv1

import orderbookv1 "github.com/openclob/matching-engine/internal/domain/orderbook/v1"

// Snapshot represents the full engine state at a specific point in the
// intake stream.
type Snapshot struct {
	OrderOffset       int64             `json:"orderOffset"`
	OrderBookSnapshot OrderBookSnapshot `json:"orderBookSnapshot"`
}

// OrderBookSnapshot represents the state of the order book at a specific
// point in time, including the overflow retry queue.
type OrderBookSnapshot struct {
	Orders   []BookOrder      `json:"orders"`
	Overflow []OverflowRecord `json:"overflow,omitempty"`
}

// BookOrder represents one resting order. The price is serialized as its
// exact decimal string so no precision is lost in transit.
type BookOrder struct {
	OrderID    uint64                `json:"orderID"`
	UserID     string                `json:"userID"`
	Bid        bool                  `json:"bid"`
	Price      string                `json:"price"`
	Quantity   int64                 `json:"quantity"`
	Type       orderbookv1.OrderType `json:"type"`
	Timestamp  int64                 `json:"timestamp"`
	MinLot     int64                 `json:"minLot"`
	MaxRetries int                   `json:"maxRetries"`
}

// OverflowRecord represents one entry of the odd-lot overflow queue,
// carrying its consumed retry count.
type OverflowRecord struct {
	Order   BookOrder `json:"order"`
	Retries int       `json:"retries"`
}
