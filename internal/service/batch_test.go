package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/stockroom/internal/apperr"
	"github.com/tuanvumaihuynh/stockroom/internal/model"
	"github.com/tuanvumaihuynh/stockroom/internal/service"
)

type batchFixture struct {
	*saleFixture
	svc service.BatchService
}

func newBatchFixture() *batchFixture {
	f := newSaleFixture()
	logger, _ := newTestLogger()
	return &batchFixture{
		saleFixture: f,
		svc:         service.NewBatchService(f.db, logger, f.productRepo, f.sink),
	}
}

func TestBatchAddStock(t *testing.T) {
	ctx := context.Background()
	f := newBatchFixture()
	a := f.seedProduct("A", variant("V1", "1", "2", 1, 1), variant("V2", "1", "2", 0, 1))
	b := f.seedProduct("B", variant("V", "1", "2", 3, 1))

	res, err := f.svc.AddStock(ctx, []uuid.UUID{a.ID, b.ID, uuid.New()}, 4)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Affected)
	assert.Equal(t, "Added 4 units to 2 products", res.Message)
	assert.Equal(t, 5, f.db.stock(a.ID, "V1"))
	assert.Equal(t, 4, f.db.stock(a.ID, "V2"))
	assert.Equal(t, 7, f.db.stock(b.ID, "V"))
	assert.Equal(t, []model.NotificationType{
		model.NotificationTypeStockUpdate,
		model.NotificationTypeStockUpdate,
	}, f.sink.types())

	_, err = f.svc.AddStock(ctx, []uuid.UUID{a.ID}, 0)
	assert.True(t, errors.Is(err, apperr.ValidationErr))

	_, err = f.svc.AddStock(ctx, nil, 1)
	assert.True(t, errors.Is(err, apperr.ValidationErr))

	_, err = f.svc.AddStock(ctx, []uuid.UUID{a.ID}, service.MaxStock+1)
	assert.True(t, errors.Is(err, apperr.ValidationErr))
}

func TestBatchAddStockOverflow(t *testing.T) {
	ctx := context.Background()
	f := newBatchFixture()
	a := f.seedProduct("A", variant("V1", "1", "2", 1, 1))
	b := f.seedProduct("B", variant("V", "1", "2", service.MaxStock-10, 1))

	_, err := f.svc.AddStock(ctx, []uuid.UUID{a.ID, b.ID}, 11)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ValidationErr))

	assert.Equal(t, 1, f.db.stock(a.ID, "V1"))
	assert.Equal(t, service.MaxStock-10, f.db.stock(b.ID, "V"))
	assert.Empty(t, f.sink.types())

	res, err := f.svc.AddStock(ctx, []uuid.UUID{b.ID}, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Affected)
	assert.Equal(t, service.MaxStock, f.db.stock(b.ID, "V"))
}

func TestBatchMarkOutOfStock(t *testing.T) {
	ctx := context.Background()
	f := newBatchFixture()
	a := f.seedProduct("A", variant("V1", "1", "2", 9, 1), variant("V2", "1", "2", 4, 1))

	res, err := f.svc.MarkOutOfStock(ctx, []uuid.UUID{a.ID})
	require.NoError(t, err)

	assert.Equal(t, "Marked 1 products as out of stock", res.Message)
	assert.Equal(t, 0, f.db.stock(a.ID, "V1"))
	assert.Equal(t, 0, f.db.stock(a.ID, "V2"))
	assert.Equal(t, "Marked all variants of A as out of stock", f.sink.events[0].Message)
}

func TestBatchDecreasePrice(t *testing.T) {
	ctx := context.Background()

	t.Run("Should round new prices to cents", func(t *testing.T) {
		f := newBatchFixture()
		a := f.seedProduct("A", variant("V1", "1", "19.99", 1, 1), variant("V2", "1", "10", 1, 1))

		res, err := f.svc.DecreasePrice(ctx, []uuid.UUID{a.ID}, decimal.NewFromInt(15))
		require.NoError(t, err)
		assert.Equal(t, "Decreased prices for 1 products by 15%", res.Message)

		p := f.db.product(a.ID)
		assert.Equal(t, "16.99", p.Variants[0].SellingPrice.String())
		assert.Equal(t, "8.5", p.Variants[1].SellingPrice.String())
		assert.True(t, dec("1").Equal(p.Variants[0].CostPrice))
		assert.Equal(t, model.NotificationTypePriceChange, f.sink.events[0].Type)
	})

	t.Run("Should reject out of range percentage", func(t *testing.T) {
		f := newBatchFixture()
		a := f.seedProduct("A", variant("V", "1", "10", 1, 1))

		for _, pct := range []string{"0", "-5", "100.5"} {
			_, err := f.svc.DecreasePrice(ctx, []uuid.UUID{a.ID}, dec(pct))
			assert.True(t, errors.Is(err, apperr.ValidationErr), pct)
		}
		assert.True(t, dec("10").Equal(f.db.product(a.ID).Variants[0].SellingPrice))
	})

	t.Run("Should allow a full discount", func(t *testing.T) {
		f := newBatchFixture()
		a := f.seedProduct("A", variant("V", "1", "10", 1, 1))

		_, err := f.svc.DecreasePrice(ctx, []uuid.UUID{a.ID}, decimal.NewFromInt(100))
		require.NoError(t, err)
		assert.True(t, f.db.product(a.ID).Variants[0].SellingPrice.IsZero())
	})
}
