package config

import "time"

type Kafka struct {
	Addresses      []string      `env:"KAFKA_ADDRESSES,required" envSeparator:","`
	Group          string        `env:"KAFKA_GROUP,required"`
	ClientID       string        `env:"KAFKA_CLIENT_ID" envDefault:"stockroom"`
	ProduceTimeout time.Duration `env:"KAFKA_PRODUCE_TIMEOUT" envDefault:"10s"`
	PingTimeout    time.Duration `env:"KAFKA_PING_TIMEOUT" envDefault:"5s"`
}
