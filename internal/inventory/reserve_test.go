package inventory_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/stockroom/internal/apperr"
	"github.com/tuanvumaihuynh/stockroom/internal/inventory"
	"github.com/tuanvumaihuynh/stockroom/internal/model"
)

func newProduct(stock, threshold int) *model.Product {
	return &model.Product{
		ID:   uuid.New(),
		Name: "Brake Pad",
		Variants: []model.Variant{
			{
				Name:              "Front",
				SKU:               "BP-F",
				CostPrice:         decimal.NewFromInt(10),
				SellingPrice:      decimal.NewFromInt(15),
				CurrentStock:      stock,
				LowStockThreshold: threshold,
			},
			{
				Name:              "Rear",
				SKU:               "BP-R",
				CostPrice:         decimal.RequireFromString("7.25"),
				SellingPrice:      decimal.RequireFromString("9.99"),
				CurrentStock:      stock,
				LowStockThreshold: threshold,
			},
		},
	}
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestReserve(t *testing.T) {
	t.Run("Should compute profit and line total at catalog price", func(t *testing.T) {
		product := newProduct(10, 2)

		res, err := inventory.Reserve(product, "Front", 3, dec("15"))
		require.NoError(t, err)

		assert.True(t, decimal.NewFromInt(15).Equal(res.Item.Profit))
		assert.True(t, decimal.NewFromInt(45).Equal(res.LineTotal()))
		assert.Equal(t, 7, product.Variants[0].CurrentStock)
		assert.Equal(t, 10, res.PreviousStock)
		assert.Equal(t, 7, res.Variant.CurrentStock)
		assert.False(t, res.LowStock)
	})

	t.Run("Should use the override price for profit", func(t *testing.T) {
		product := newProduct(10, 2)

		res, err := inventory.Reserve(product, "Front", 3, dec("12"))
		require.NoError(t, err)

		assert.True(t, decimal.NewFromInt(6).Equal(res.Item.Profit))
		assert.True(t, decimal.NewFromInt(36).Equal(res.LineTotal()))
		assert.True(t, decimal.NewFromInt(15).Equal(res.Item.SellingPrice))
		assert.True(t, decimal.NewFromInt(12).Equal(res.Item.ActualSellingPrice))
	})

	t.Run("Should default actual price to selling price", func(t *testing.T) {
		product := newProduct(10, 2)

		res, err := inventory.Reserve(product, "Rear", 2, nil)
		require.NoError(t, err)

		assert.Equal(t, "9.99", res.Item.ActualSellingPrice.String())
		assert.Equal(t, "7.25", res.Item.CostPrice.String())
		assert.Equal(t, "5.48", res.Item.Profit.String())
		assert.Equal(t, product.ID, res.Item.Product)
	})

	t.Run("Should not round profit", func(t *testing.T) {
		product := newProduct(10, 2)

		res, err := inventory.Reserve(product, "Rear", 3, dec("9.995"))
		require.NoError(t, err)

		assert.Equal(t, "8.235", res.Item.Profit.String())
	})

	t.Run("Should allow a loss", func(t *testing.T) {
		product := newProduct(10, 2)

		res, err := inventory.Reserve(product, "Front", 1, dec("0"))
		require.NoError(t, err)

		assert.Equal(t, "-10", res.Item.Profit.String())
	})

	t.Run("Should flag low stock at the threshold but not above it", func(t *testing.T) {
		product := newProduct(10, 4)

		res, err := inventory.Reserve(product, "Front", 5, nil)
		require.NoError(t, err)
		assert.False(t, res.LowStock)

		res, err = inventory.Reserve(product, "Front", 1, nil)
		require.NoError(t, err)
		assert.True(t, res.LowStock)
		assert.Equal(t, 4, res.Variant.CurrentStock)
	})

	t.Run("Should sell the last unit", func(t *testing.T) {
		product := newProduct(3, 1)

		res, err := inventory.Reserve(product, "Front", 3, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Variant.CurrentStock)
		assert.True(t, res.LowStock)
	})
}

func TestReserveFailures(t *testing.T) {
	t.Run("Should fail on insufficient stock without mutating", func(t *testing.T) {
		product := newProduct(2, 1)

		_, err := inventory.Reserve(product, "Front", 3, nil)
		require.ErrorIs(t, err, apperr.InsufficientStockErr)
		assert.Contains(t, err.Error(), "available 2")
		assert.Equal(t, 2, product.Variants[0].CurrentStock)
	})

	t.Run("Should fail on unknown variant", func(t *testing.T) {
		product := newProduct(2, 1)

		_, err := inventory.Reserve(product, "Middle", 1, nil)
		require.ErrorIs(t, err, apperr.VariantNotFoundErr)
		assert.Contains(t, err.Error(), `"Middle"`)
	})

	t.Run("Should reject non positive quantity", func(t *testing.T) {
		product := newProduct(2, 1)

		_, err := inventory.Reserve(product, "Front", 0, nil)
		assert.ErrorIs(t, err, apperr.ValidationErr)
	})

	t.Run("Should reject negative override", func(t *testing.T) {
		product := newProduct(2, 1)

		_, err := inventory.Reserve(product, "Front", 1, dec("-1"))
		assert.ErrorIs(t, err, apperr.ValidationErr)
		assert.Equal(t, 2, product.Variants[0].CurrentStock)
	})
}
