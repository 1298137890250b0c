package event_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/stockroom/internal/event"
	"github.com/tuanvumaihuynh/stockroom/internal/storage/mq"
)

type mockConsumer struct {
	handlers map[string]mq.HandlerFunc
	runErr   error
	stopped  bool
}

func (m *mockConsumer) RegisterHandler(topic string, handler mq.HandlerFunc) error {
	if m.handlers == nil {
		m.handlers = map[string]mq.HandlerFunc{}
	}
	m.handlers[topic] = handler
	return nil
}

func (m *mockConsumer) Run(context.Context) (mq.CleanupFunc, error) {
	if m.runErr != nil {
		return nil, m.runErr
	}
	return func() { m.stopped = true }, nil
}

func TestService(t *testing.T) {
	ctx := context.Background()

	t.Run("Should handle sale posted events", func(t *testing.T) {
		buf := &bytes.Buffer{}
		consumer := &mockConsumer{}

		cleanup, err := event.New(slog.New(slog.NewJSONHandler(buf, nil)), consumer).Run(ctx)
		require.NoError(t, err)

		handler, ok := consumer.handlers[event.TopicSalePosted]
		require.True(t, ok)

		payload := []byte(`{
			"sale_id": "s-1",
			"invoice_number": "INV-202610-0001",
			"total_amount": "30.00",
			"total_profit": "10.00",
			"payment_status": "completed",
			"items": [{"product_id": "p-1", "variant": "Front", "quantity": 2, "remaining_stock": 3, "low_stock": true}],
			"posted_at": "2026-10-18T10:00:00Z"
		}`)
		require.NoError(t, handler(ctx, event.TopicSalePosted, payload))

		out := buf.String()
		assert.Contains(t, out, "INV-202610-0001")
		assert.Contains(t, out, "variant reached low stock")

		assert.Error(t, handler(ctx, event.TopicSalePosted, []byte("not json")))

		cleanup()
		assert.True(t, consumer.stopped)
	})

	t.Run("Should fail when consumer cannot run", func(t *testing.T) {
		consumer := &mockConsumer{runErr: errors.New("no brokers")}

		_, err := event.New(slog.New(slog.DiscardHandler), consumer).Run(ctx)
		assert.ErrorContains(t, err, "no brokers")
	})
}
