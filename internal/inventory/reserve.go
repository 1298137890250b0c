// Package inventory holds the stock reservation and profit rules applied to a
// product aggregate when it is sold.
package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/stockroom/internal/apperr"
	"github.com/tuanvumaihuynh/stockroom/internal/model"
)

// Reservation is the outcome of reserving one sale line against a product.
type Reservation struct {
	// Item carries the price snapshot and the computed profit.
	Item model.SaleItem
	// Variant is the variant after the stock decrement.
	Variant       model.Variant
	PreviousStock int
	// LowStock is set when the remaining stock is at or below the threshold.
	LowStock bool
}

// LineTotal is the amount charged for the reserved line.
func (r Reservation) LineTotal() decimal.Decimal {
	return r.Item.LineTotal()
}

// Reserve checks that quantity units of the named variant are available, decrements
// the variant's stock in place and returns the priced sale line.
//
// The product is left untouched when an error is returned. Prices are snapshotted from
// the variant; actualPrice overrides the selling price when non-nil. Profit is
// (actual - cost) * quantity and is not rounded.
func Reserve(product *model.Product, variantName string, quantity int, actualPrice *decimal.Decimal) (Reservation, error) {
	if quantity < 1 {
		return Reservation{}, apperr.ValidationErr.WithMsgf("quantity must be at least 1, got %d", quantity)
	}
	if actualPrice != nil && actualPrice.IsNegative() {
		return Reservation{}, apperr.ValidationErr.WithMsg("actual selling price must not be negative")
	}

	idx := product.VariantIndex(variantName)
	if idx < 0 {
		return Reservation{}, apperr.VariantNotFoundErr.WithMsgf(
			"variant %q not found on product %q (%s)", variantName, product.Name, product.ID)
	}

	variant := &product.Variants[idx]
	if variant.CurrentStock < quantity {
		return Reservation{}, apperr.InsufficientStockErr.WithMsgf(
			"insufficient stock for %s - %s: available %d, requested %d",
			product.Name, variant.Name, variant.CurrentStock, quantity)
	}

	sellingPrice := variant.SellingPrice
	if actualPrice != nil {
		sellingPrice = *actualPrice
	}

	qty := decimal.NewFromInt(int64(quantity))
	item := model.SaleItem{
		Product:            product.ID,
		Variant:            variant.Name,
		Quantity:           quantity,
		CostPrice:          variant.CostPrice,
		SellingPrice:       variant.SellingPrice,
		ActualSellingPrice: sellingPrice,
		Profit:             sellingPrice.Sub(variant.CostPrice).Mul(qty),
	}

	previous := variant.CurrentStock
	variant.CurrentStock -= quantity

	return Reservation{
		Item:          item,
		Variant:       *variant,
		PreviousStock: previous,
		LowStock:      variant.IsLowStock(),
	}, nil
}
