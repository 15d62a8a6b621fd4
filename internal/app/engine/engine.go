package engine

import (
	"context"
	"sync"
	"time"

	"github.com/openclob/matching-engine/pkg/config"
	"github.com/openclob/matching-engine/pkg/logger"
	"go.uber.org/zap/zapcore"

	orderreaderv1 "github.com/openclob/matching-engine/internal/domain/order-reader/v1"
	orderbookv1 "github.com/openclob/matching-engine/internal/domain/orderbook/v1"
	snapshotv1 "github.com/openclob/matching-engine/internal/domain/snapshot/v1"
	tradepublisherv1 "github.com/openclob/matching-engine/internal/domain/trade-publisher/v1"
	"github.com/openclob/matching-engine/internal/usecase/orderbook"
	"github.com/openclob/matching-engine/internal/usecase/risk"
)

// Engine owns the order book for one instrument and runs the order intake
// and snapshot loops. Orders pass the risk gate, then the book; every fill
// and cancellation the book produces is published synchronously before the
// next order is processed, so no event can be silently dropped mid-stream.
type Engine struct {
	book          *orderbook.Book
	orderReader   orderreaderv1.OrderReader
	snapshotStore snapshotv1.Store
	publisher     tradepublisherv1.TradePublisher
	gate          *risk.Gate
	logger        *logger.Logger
	config        *config.Config

	mu                 sync.RWMutex
	orderOffset        int64
	lastSnapshotOffset int64
	totalTrades        int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	snapshotInterval    time.Duration
	snapshotOffsetDelta int64
}

// NewEngine creates an engine with the default options.
func NewEngine(
	orderReader orderreaderv1.OrderReader,
	snapshotStore snapshotv1.Store,
	publisher tradepublisherv1.TradePublisher,
	gate *risk.Gate,
	log *logger.Logger,
	cfg *config.Config,
) *Engine {
	return NewEngineWithOptions(orderReader, snapshotStore, publisher, gate, log, cfg, DefaultEngineOptions())
}

// NewEngineWithOptions creates a new engine with custom options. The order
// book is restored from the latest snapshot before the engine accepts any
// order.
func NewEngineWithOptions(
	orderReader orderreaderv1.OrderReader,
	snapshotStore snapshotv1.Store,
	publisher tradepublisherv1.TradePublisher,
	gate *risk.Gate,
	log *logger.Logger,
	cfg *config.Config,
	options *Options,
) *Engine {
	e := &Engine{
		orderReader:   orderReader,
		snapshotStore: snapshotStore,
		publisher:     publisher,
		gate:          gate,
		logger:        log,
		config:        cfg,

		snapshotInterval:    options.SnapshotInterval,
		snapshotOffsetDelta: options.SnapshotOffsetDelta,
		orderOffset:         -1,
	}

	e.book = orderbook.NewBook(cfg.Instrument, e, log)

	if err := e.loadSnapshot(context.Background()); err != nil {
		e.logger.GetZap().Fatal("Failed to load snapshot", zapcore.Field{
			Key:       "error",
			Interface: err,
		})
	}

	return e
}

// Book exposes the underlying order book for state queries.
func (e *Engine) Book() *orderbook.Book {
	return e.book
}

// Start launches the order processing and snapshot routines.
func (e *Engine) Start(ctx context.Context) error {
	e.ctx, e.cancel = context.WithCancel(ctx)

	e.wg.Add(2)
	go e.runOrderProcessor()
	go e.runSnapshotManager()

	e.logger.Info("Engine started", logger.Field{
		Key:   "instrument",
		Value: e.config.Instrument,
	})

	return nil
}

// Stop gracefully shuts down the engine.
func (e *Engine) Stop(ctx context.Context) error {
	if e.cancel != nil {
		e.cancel()
	}

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.logger.Info("Engine stopped gracefully")
		return nil
	case <-ctx.Done():
		e.logger.Warn("Engine stop timeout exceeded")
		return ctx.Err()
	}
}

// runOrderProcessor reads, admits and matches orders in a single loop, so
// exactly one goroutine ever touches the book.
func (e *Engine) runOrderProcessor() {
	defer e.wg.Done()

	e.logger.Info("Starting order processor", logger.Field{
		Key:   "instrument",
		Value: e.config.Instrument,
	})

	currentOffset := e.getOrderOffset()
	if currentOffset > 0 {
		currentOffset++
	}

	if err := e.orderReader.SetOffset(currentOffset); err != nil {
		e.logger.GetZap().Fatal("Failed to set offset for order reader", zapcore.Field{
			Key:       "error",
			Interface: err,
		})
	}

	for {
		select {
		case <-e.ctx.Done():
			e.logger.Info("Order processor shutting down")
			e.orderReader.Close()
			return
		default:
			msg, orderRequest, err := e.orderReader.ReadMessage(e.ctx)
			if err != nil {
				e.logger.ErrorContext(e.ctx, err, logger.Field{
					Key:   "action",
					Value: "read_order_message",
				})
				time.Sleep(100 * time.Millisecond)
				continue
			}

			if err := e.orderReader.CommitMessages(e.ctx, msg); err != nil {
				e.logger.ErrorContext(e.ctx, err, logger.Field{
					Key:   "action",
					Value: "commit_order_message",
				})
			}

			if err := e.processOrder(orderRequest); err != nil {
				e.logger.ErrorContext(e.ctx, err, logger.Field{
					Key:   "action",
					Value: "process_order",
				})
				continue
			}

			e.setOrderOffset(msg.Offset)
		}
	}
}

// runSnapshotManager handles periodic snapshots.
func (e *Engine) runSnapshotManager() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.snapshotInterval)
	defer ticker.Stop()

	e.logger.Info("Starting snapshot manager")

	for {
		select {
		case <-e.ctx.Done():
			e.logger.Info("Snapshot manager shutting down")
			return
		case <-ticker.C:
			if e.shouldCreateSnapshot() {
				e.createAndStoreSnapshot()
			}
		}
	}
}

// processOrder admits one order request through the risk gate and hands it
// to the book.
func (e *Engine) processOrder(orderRequest *orderbookv1.PlaceOrderRequest) error {
	e.logger.Debug("Processing order",
		logger.Field{Key: "orderOffset", Value: orderRequest.Offset},
		logger.Field{Key: "userID", Value: orderRequest.UserID},
		logger.Field{Key: "type", Value: string(orderRequest.Type)},
		logger.Field{Key: "bid", Value: orderRequest.Bid},
	)

	order, err := orderRequest.ToOrder()
	if err != nil {
		return err
	}

	if !e.gate.Allow(order) {
		e.logger.Info("Order rejected by risk gate",
			logger.Field{Key: "orderID", Value: order.ID},
			logger.Field{Key: "userID", Value: order.UserID},
		)
		return nil
	}

	matched, err := e.book.Process(order)
	if err != nil {
		return err
	}

	if matched {
		e.logger.Debug("Order produced fills",
			logger.Field{Key: "orderID", Value: order.ID},
			logger.Field{Key: "remaining", Value: order.Quantity},
		)
	}

	return nil
}

// TradeExecuted publishes one fill. The book calls this synchronously for
// every trade, in execution order.
func (e *Engine) TradeExecuted(trade orderbookv1.Trade) {
	e.mu.Lock()
	e.totalTrades++
	total := e.totalTrades
	e.mu.Unlock()

	event := tradepublisherv1.CreateFromTrade(e.config.Instrument, trade)
	if err := e.publisher.PublishTrade(e.sinkContext(), event); err != nil {
		e.logger.Error(err,
			logger.Field{Key: "action", Value: "publish_trade"},
			logger.Field{Key: "eventID", Value: event.EventID},
		)
	}

	e.logger.Info("Trade executed",
		logger.Field{Key: "makerOrderID", Value: trade.MakerOrderID},
		logger.Field{Key: "takerOrderID", Value: trade.TakerOrderID},
		logger.Field{Key: "price", Value: trade.Price.String()},
		logger.Field{Key: "quantity", Value: trade.Quantity},
		logger.Field{Key: "totalTrades", Value: total},
	)
}

// OrderCancelled publishes one cancellation.
func (e *Engine) OrderCancelled(order *orderbookv1.Order, remaining int64, reason orderbookv1.CancelReason) {
	event := tradepublisherv1.CreateFromCancel(e.config.Instrument, order, remaining, reason)
	if err := e.publisher.PublishOrderDone(e.sinkContext(), event); err != nil {
		e.logger.Error(err,
			logger.Field{Key: "action", Value: "publish_order_done"},
			logger.Field{Key: "eventID", Value: event.EventID},
		)
	}

	e.logger.Info("Order cancelled",
		logger.Field{Key: "orderID", Value: order.ID},
		logger.Field{Key: "remaining", Value: remaining},
		logger.Field{Key: "reason", Value: string(reason)},
	)
}

// sinkContext is the context events are published under. Before Start the
// engine has no run context, so restores and tests publish under a
// background context.
func (e *Engine) sinkContext() context.Context {
	if e.ctx != nil {
		return e.ctx
	}
	return context.Background()
}

// shouldCreateSnapshot checks if enough of the stream has been consumed
// since the last snapshot.
func (e *Engine) shouldCreateSnapshot() bool {
	e.mu.RLock()
	currentOffset := e.orderOffset
	lastSnapshotOffset := e.lastSnapshotOffset
	e.mu.RUnlock()

	if currentOffset <= 0 {
		return false
	}

	return currentOffset-lastSnapshotOffset >= e.snapshotOffsetDelta
}

// createAndStoreSnapshot captures the book and overflow queue state,
// stamped with the current intake offset.
func (e *Engine) createAndStoreSnapshot() {
	currentOffset := e.getOrderOffset()

	e.logger.Info("Creating snapshot", logger.Field{
		Key:   "currentOffset",
		Value: currentOffset,
	})

	snapshot := e.book.CreateSnapshot()
	snapshot.OrderOffset = currentOffset

	if err := e.snapshotStore.Store(e.ctx, snapshot); err != nil {
		e.logger.ErrorContext(e.ctx, err, logger.Field{
			Key:   "action",
			Value: "store_snapshot",
		})
		return
	}

	e.setLastSnapshotOffset(currentOffset)
	e.logger.Info("Snapshot stored successfully",
		logger.Field{Key: "instrument", Value: e.config.Instrument},
		logger.Field{Key: "offset", Value: currentOffset},
	)
}

func (e *Engine) getOrderOffset() int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.orderOffset
}

func (e *Engine) setOrderOffset(offset int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.orderOffset = offset
}

func (e *Engine) getLastSnapshotOffset() int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastSnapshotOffset
}

func (e *Engine) setLastSnapshotOffset(offset int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastSnapshotOffset = offset
}

// loadSnapshot restores the book from the latest stored snapshot, if any.
func (e *Engine) loadSnapshot(ctx context.Context) error {
	snapshot, err := e.snapshotStore.LoadStore(ctx)
	if err != nil {
		return err
	}

	if snapshot != nil {
		if err := e.book.RestoreOrderbook(snapshot); err != nil {
			return err
		}
		e.mu.Lock()
		e.orderOffset = snapshot.OrderOffset
		e.lastSnapshotOffset = snapshot.OrderOffset
		e.mu.Unlock()

		e.logger.Info("Orderbook restored from snapshot", logger.Field{
			Key:   "orderOffset",
			Value: snapshot.OrderOffset,
		})
	}

	return nil
}

// GetOrderOffset returns the current order offset.
func (e *Engine) GetOrderOffset() int64 {
	return e.getOrderOffset()
}

// GetLastSnapshotOffset returns the last snapshot offset.
func (e *Engine) GetLastSnapshotOffset() int64 {
	return e.getLastSnapshotOffset()
}

// GetTotalTrades returns the number of trades executed since start.
func (e *Engine) GetTotalTrades() int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.totalTrades
}
