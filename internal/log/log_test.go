package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/stockroom/internal/config"
	"github.com/tuanvumaihuynh/stockroom/pkg/correlationid"
)

func TestEnrichedHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, config.Log{Format: config.LogFormatJSON, Level: slog.LevelInfo}))

	ctx := correlationid.NewContext(context.Background(), "req-42")
	logger.With(slog.String("service", "http")).InfoContext(ctx, "sale posted", slog.String("invoice_number", "INV-250101-0001"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "sale posted", entry["msg"])
	assert.Equal(t, "req-42", entry["correlation_id"])
	assert.Equal(t, "http", entry["service"])
	assert.Equal(t, "INV-250101-0001", entry["invoice_number"])
	assert.NotContains(t, entry, "trace_id")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, config.Log{Format: config.LogFormatText, Level: slog.LevelWarn}))

	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}
