package config

import (
	"fmt"
	"strings"
	"time"
)

type Postgres struct {
	Host     string `env:"POSTGRES_HOST,required"`
	Port     int    `env:"POSTGRES_PORT,required"`
	User     string `env:"POSTGRES_USER,required"`
	Password string `env:"POSTGRES_PASSWORD,required"`
	DB       string `env:"POSTGRES_DB,required"`
	SSLMode  string `env:"POSTGRES_SSL_MODE,required"`

	MaxConns        int32         `env:"POSTGRES_MAX_CONNS,required"`
	MinConns        int32         `env:"POSTGRES_MIN_CONNS,required"`
	MaxConnLifetime time.Duration `env:"POSTGRES_MAX_CONN_LIFETIME,required"`
	MaxConnIdleTime time.Duration `env:"POSTGRES_MAX_CONN_IDLE_TIME,required"`

	TxIsolation TxIsolation `env:"POSTGRES_TX_ISOLATION" envDefault:"read committed"`
}

// TxIsolation is the isolation level of every unit of work, in SQL spelling.
type TxIsolation string

const (
	TxIsolationSerializable    TxIsolation = "serializable"
	TxIsolationRepeatableRead  TxIsolation = "repeatable read"
	TxIsolationReadCommitted   TxIsolation = "read committed"
	TxIsolationReadUncommitted TxIsolation = "read uncommitted"
)

// UnmarshalText implements [encoding.TextUnmarshaler]. Case and the
// separator between words are not significant.
func (l *TxIsolation) UnmarshalText(text []byte) error {
	v := TxIsolation(strings.Join(strings.FieldsFunc(strings.ToLower(string(text)), func(r rune) bool {
		return r == ' ' || r == '_' || r == '-'
	}), " "))

	switch v {
	case TxIsolationSerializable, TxIsolationRepeatableRead, TxIsolationReadCommitted, TxIsolationReadUncommitted:
		*l = v
		return nil
	default:
		return fmt.Errorf("unknown transaction isolation level: %s", text)
	}
}
