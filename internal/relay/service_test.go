package relay_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/stockroom/internal/config"
	"github.com/tuanvumaihuynh/stockroom/internal/relay"
	"github.com/tuanvumaihuynh/stockroom/internal/repository"
	"github.com/tuanvumaihuynh/stockroom/internal/storage/db"
	"github.com/tuanvumaihuynh/stockroom/internal/storage/mq"
)

type mockDB struct {
	db.DB
}

func (m *mockDB) WithTx(_ context.Context, txFunc func(db.DB) error) error {
	return txFunc(m)
}

type mockOutboxRepo struct {
	mu        sync.Mutex
	pending   []repository.OutboxMsg
	batchSize int32
	results   []repository.OutboxMsgResult
}

func (m *mockOutboxRepo) WithDB(db.DB) repository.OutboxMsgRepository { return m }

func (m *mockOutboxRepo) CreateOutboxMsg(context.Context, repository.CreateOutboxMsgParams) error {
	return nil
}

func (m *mockOutboxRepo) ListUnprocessedOutboxMsgs(_ context.Context, batchSize int32) ([]repository.OutboxMsg, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchSize = batchSize
	msgs := m.pending
	m.pending = nil
	return msgs, nil
}

func (m *mockOutboxRepo) MarkOutboxMsgsProcessed(_ context.Context, results []repository.OutboxMsgResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, results...)
	return nil
}

func (m *mockOutboxRepo) processed() []repository.OutboxMsgResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]repository.OutboxMsgResult(nil), m.results...)
}

type mockProducer struct {
	mu       sync.Mutex
	produced []mq.ProduceMsg
	failOn   string
}

func (m *mockProducer) Produce(_ context.Context, msg mq.ProduceMsg) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg.Topic == m.failOn {
		return errors.New("broker unavailable")
	}
	m.produced = append(m.produced, msg)
	return nil
}

func newService(repo *mockOutboxRepo, producer *mockProducer) *relay.Service {
	return relay.NewService(
		config.Relay{BatchSize: 50, Interval: 10 * time.Millisecond},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		&mockDB{},
		repo,
		producer,
	)
}

func TestRelayBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("Should produce and mark every message", func(t *testing.T) {
		key := "sale-1"
		ok := repository.OutboxMsg{
			ID:           uuid.New(),
			Topic:        "sale.posted",
			Headers:      map[string]string{"X-Correlation-ID": "c-1"},
			Payload:      json.RawMessage(`{"sale_id":"1"}`),
			PartitionKey: &key,
		}
		failing := repository.OutboxMsg{ID: uuid.New(), Topic: "broken", Payload: json.RawMessage(`{}`)}

		repo := &mockOutboxRepo{pending: []repository.OutboxMsg{ok, failing}}
		producer := &mockProducer{failOn: "broken"}

		n, err := newService(repo, producer).RelayBatch(ctx)
		require.NoError(t, err)

		assert.Equal(t, 2, n)
		assert.Equal(t, int32(50), repo.batchSize)
		require.Len(t, producer.produced, 1)
		assert.Equal(t, "c-1", producer.produced[0].Headers["X-Correlation-ID"])
		assert.Equal(t, &key, producer.produced[0].PartitionKey)

		results := map[uuid.UUID]*string{}
		for _, r := range repo.processed() {
			results[r.ID] = r.Error
		}
		assert.Nil(t, results[ok.ID])
		require.NotNil(t, results[failing.ID])
		assert.Contains(t, *results[failing.ID], "broker unavailable")
	})

	t.Run("Should do nothing without pending messages", func(t *testing.T) {
		repo := &mockOutboxRepo{}

		n, err := newService(repo, &mockProducer{}).RelayBatch(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Empty(t, repo.processed())
	})
}

func TestRun(t *testing.T) {
	repo := &mockOutboxRepo{pending: []repository.OutboxMsg{{ID: uuid.New(), Topic: "sale.posted"}}}
	producer := &mockProducer{}

	cleanup := newService(repo, producer).Run(context.Background())
	assert.Eventually(t, func() bool { return len(repo.processed()) == 1 }, time.Second, 5*time.Millisecond)
	cleanup()
}
