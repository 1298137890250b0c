package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/stockroom/internal/config"
)

func TestNew(t *testing.T) {
	t.Run("Should apply defaults", func(t *testing.T) {
		type Config struct {
			Log   config.Log
			HTTP  config.HTTP
			Relay config.Relay
			Auth  config.Auth
		}

		cfg, err := config.New[Config]()
		require.NoError(t, err)

		assert.Equal(t, config.LogFormatJSON, cfg.Log.Format)
		assert.Equal(t, slog.LevelInfo, cfg.Log.Level)
		assert.Equal(t, uint32(8000), cfg.HTTP.Port)
		assert.Equal(t, []string{"*"}, cfg.HTTP.AllowedOrigins)
		assert.Equal(t, time.Second, cfg.Relay.Interval)
		assert.Empty(t, cfg.Auth.Tokens)
	})

	t.Run("Should parse env values", func(t *testing.T) {
		t.Setenv("LOG_FORMAT", "text")
		t.Setenv("LOG_LEVEL", "DEBUG")
		t.Setenv("AUTH_TOKENS", "a:admin,b:member")
		t.Setenv("RELAY_BATCH_SIZE", "10")

		type Config struct {
			Log   config.Log
			Auth  config.Auth
			Relay config.Relay
		}

		cfg, err := config.New[Config]()
		require.NoError(t, err)

		assert.Equal(t, config.LogFormatText, cfg.Log.Format)
		assert.Equal(t, slog.LevelDebug, cfg.Log.Level)
		assert.Equal(t, map[string]string{"a": "admin", "b": "member"}, cfg.Auth.Tokens)
		assert.Equal(t, uint32(10), cfg.Relay.BatchSize)
	})

	t.Run("Should fail on invalid log format", func(t *testing.T) {
		t.Setenv("LOG_FORMAT", "xml")

		_, err := config.New[struct{ Log config.Log }]()
		assert.Error(t, err)
	})

	t.Run("Should apply kafka defaults", func(t *testing.T) {
		t.Setenv("KAFKA_ADDRESSES", "broker-1:9092,broker-2:9092")
		t.Setenv("KAFKA_GROUP", "stockroom-events")

		cfg, err := config.New[struct{ Kafka config.Kafka }]()
		require.NoError(t, err)

		assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Addresses)
		assert.Equal(t, "stockroom", cfg.Kafka.ClientID)
		assert.Equal(t, 10*time.Second, cfg.Kafka.ProduceTimeout)
		assert.Equal(t, 5*time.Second, cfg.Kafka.PingTimeout)
	})

	t.Run("Should parse transaction isolation", func(t *testing.T) {
		cases := []struct {
			raw     string
			want    config.TxIsolation
			wantErr bool
		}{
			{raw: "SERIALIZABLE", want: config.TxIsolationSerializable},
			{raw: "repeatable_read", want: config.TxIsolationRepeatableRead},
			{raw: "Read Committed", want: config.TxIsolationReadCommitted},
			{raw: "read-uncommitted", want: config.TxIsolationReadUncommitted},
			{raw: "read comitted", wantErr: true},
			{raw: "", wantErr: true},
		}

		for _, tc := range cases {
			var got config.TxIsolation
			err := got.UnmarshalText([]byte(tc.raw))
			if tc.wantErr {
				assert.Error(t, err, tc.raw)
				continue
			}
			require.NoError(t, err, tc.raw)
			assert.Equal(t, tc.want, got)
		}
	})

	t.Run("Should fail on misspelled transaction isolation", func(t *testing.T) {
		setPostgresEnv(t)
		t.Setenv("POSTGRES_TX_ISOLATION", "serialisable")

		_, err := config.New[struct{ Postgres config.Postgres }]()
		assert.Error(t, err)
	})

	t.Run("Should default transaction isolation to read committed", func(t *testing.T) {
		setPostgresEnv(t)

		cfg, err := config.New[struct{ Postgres config.Postgres }]()
		require.NoError(t, err)
		assert.Equal(t, config.TxIsolationReadCommitted, cfg.Postgres.TxIsolation)
	})

	t.Run("Should fail on missing required postgres settings", func(t *testing.T) {
		_, err := config.New[struct{ Postgres config.Postgres }]()
		assert.Error(t, err)
	})
}

func setPostgresEnv(t *testing.T) {
	t.Helper()
	for k, v := range map[string]string{
		"POSTGRES_HOST":               "localhost",
		"POSTGRES_PORT":               "5432",
		"POSTGRES_USER":               "stockroom",
		"POSTGRES_PASSWORD":           "secret",
		"POSTGRES_DB":                 "stockroom",
		"POSTGRES_SSL_MODE":           "disable",
		"POSTGRES_MAX_CONNS":          "10",
		"POSTGRES_MIN_CONNS":          "1",
		"POSTGRES_MAX_CONN_LIFETIME":  "1h",
		"POSTGRES_MAX_CONN_IDLE_TIME": "30m",
	} {
		t.Setenv(k, v)
	}
}
