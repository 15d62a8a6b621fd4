package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	pkgredis "github.com/openclob/matching-engine/pkg/redis"
)

// MustLoad loads the configuration from environment variables and a .env
// file, panicking on parse failure.
func MustLoad[T any](cfg T) {
	_ = godotenv.Load() // .env file is optional

	env.Must(cfg, env.Parse(cfg))
}

// Load loads the configuration from environment variables and a .env file.
func Load[T any](cfg T) error {
	_ = godotenv.Load() // .env file is optional

	return env.Parse(cfg)
}

// Config holds the configuration for the matching engine service.
type Config struct {
	// Instrument is the single tradable instrument this engine serves,
	// e.g. BTC-USD. One engine process owns exactly one instrument.
	Instrument string `env:"INSTRUMENT,required"`

	Kafka          KafkaConfig          `envPrefix:"KAFKA_"`
	TradePublisher TradePublisherConfig `envPrefix:"TRADE_PUBLISHER_"`
	Redis          pkgredis.Config      `envPrefix:"REDIS_"`
	Risk           RiskConfig           `envPrefix:"RISK_"`
}

// KafkaConfig holds the configuration for the order intake consumer.
type KafkaConfig struct {
	Topic   string   `env:"TOPIC,required"`
	GroupID string   `env:"GROUP_ID" envDefault:"matching-engine"`
	Brokers []string `env:"BROKER,required"`
}

// TradePublisherConfig holds the configuration for the trade event producer.
type TradePublisherConfig struct {
	Topic   string   `env:"TOPIC,required"`
	Brokers []string `env:"BROKER,required"`
}

// RiskConfig holds the admission-gate account limits.
type RiskConfig struct {
	Balance           int64 `env:"BALANCE" envDefault:"1000000"`
	DailyNetLimit     int64 `env:"DAILY_NET_LIMIT" envDefault:"100000"`
	InstrumentEnabled bool  `env:"INSTRUMENT_ENABLED" envDefault:"true"`
}
