package orderbookv1

import "github.com/shopspring/decimal"

//go:generate mockgen -source sink.go -destination=mock/sink_mock.go -package=orderbookv1_mock

// CancelReason explains why an order left the book without filling in full.
type CancelReason string

const (
	// CancelReasonFillOrKillMiss means the book could not fill the full
	// quantity atomically.
	CancelReasonFillOrKillMiss CancelReason = "fill_or_kill_miss"
	// CancelReasonIOCExpired means the unfilled remainder of an
	// immediate-or-cancel order was discarded.
	CancelReasonIOCExpired CancelReason = "ioc_expired"
	// CancelReasonBelowMinLot means the fillable quantity was below the
	// order's minimum lot.
	CancelReasonBelowMinLot CancelReason = "below_min_lot"
	// CancelReasonProRataResidual means integer truncation left a
	// remainder that could not be allocated.
	CancelReasonProRataResidual CancelReason = "pro_rata_residual"
	// CancelReasonRetriesExhausted means an overflow remainder used up
	// its retry budget.
	CancelReasonRetriesExhausted CancelReason = "retries_exhausted"
)

// Trade is one execution between a resting maker and an incoming taker.
type Trade struct {
	MakerOrderID uint64          `json:"maker_order_id"`
	TakerOrderID uint64          `json:"taker_order_id"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int64           `json:"quantity"`
}

// EventSink receives executions and cancellations as the book produces
// them, in the order they happen.
type EventSink interface {
	TradeExecuted(trade Trade)
	OrderCancelled(order *Order, remaining int64, reason CancelReason)
}
