package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	app "github.com/openclob/matching-engine/internal/app/engine"
	orderreader "github.com/openclob/matching-engine/internal/usecase/order-reader"
	"github.com/openclob/matching-engine/internal/usecase/risk"
	snapshot "github.com/openclob/matching-engine/internal/usecase/snapshot"
	tradepublisher "github.com/openclob/matching-engine/internal/usecase/trade-publisher"
	"github.com/openclob/matching-engine/pkg/config"
	"github.com/openclob/matching-engine/pkg/logger"
	"github.com/openclob/matching-engine/pkg/redis"
)

var cfg *config.Config
var log *logger.Logger

func init() {
	cfg = &config.Config{}
	if err := config.Load(cfg); err != nil {
		panic(err)
	}

	l, err := logger.NewLogger()
	if err != nil {
		panic(err)
	}

	log = l
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	rclient := redis.NewClient(log, &cfg.Redis)
	if err := rclient.Connect(ctx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "connect_redis",
		})
		return
	}

	oReader := orderreader.NewReader(cfg.Kafka, log)
	snapshotStore := snapshot.NewSnapshotStore(rclient, cfg.Instrument, log)
	publisher := tradepublisher.NewPublisher(cfg.TradePublisher, log)
	gate := risk.NewGate(cfg.Risk, log)

	engine := app.NewEngine(
		oReader,
		snapshotStore,
		publisher,
		gate,
		log,
		cfg,
	)

	if err := engine.Start(ctx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "start_engine",
		})
		return
	}

	log.Info("Matching engine started", logger.Field{
		Key:   "instrument",
		Value: cfg.Instrument,
	})

	sig := <-sigChan
	log.Info("Received shutdown signal", logger.Field{
		Key:   "signal",
		Value: sig.String(),
	})

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := engine.Stop(shutdownCtx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "stop_engine",
		})
	}

	if err := publisher.Close(); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "close_trade_publisher",
		})
	}

	if err := rclient.Disconnect(shutdownCtx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "disconnect_redis",
		})
	}

	log.Info("Matching engine shutdown complete")
}
