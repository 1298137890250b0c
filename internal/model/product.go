package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category"`
	Brand       string    `json:"brand"`
	Supplier    string    `json:"supplier"`
	Variants    []Variant `json:"variants"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Variant is a SKU level configuration of a product. It is owned by the product
// and addressed by its name within that product.
type Variant struct {
	Name              string          `json:"name"`
	SKU               string          `json:"sku"`
	CostPrice         decimal.Decimal `json:"costPrice"`
	SellingPrice      decimal.Decimal `json:"sellingPrice"`
	CurrentStock      int             `json:"currentStock"`
	LowStockThreshold int             `json:"lowStockThreshold"`
	Location          string          `json:"location,omitempty"`
}

// IsLowStock reports whether the variant is at or below its low stock threshold.
func (v Variant) IsLowStock() bool {
	return v.CurrentStock <= v.LowStockThreshold
}

// VariantIndex returns the position of the named variant, or -1.
func (p *Product) VariantIndex(name string) int {
	for i := range p.Variants {
		if p.Variants[i].Name == name {
			return i
		}
	}
	return -1
}

// ProductSummary is the display data joined onto sale items at read time.
type ProductSummary struct {
	Name     string `json:"name"`
	Brand    string `json:"brand"`
	Category string `json:"category"`
}

// LowStockProduct groups the variants of a product that are at or below threshold.
type LowStockProduct struct {
	ID               uuid.UUID         `json:"id"`
	Name             string            `json:"name"`
	Brand            string            `json:"brand"`
	Category         string            `json:"category"`
	LowStockVariants []LowStockVariant `json:"lowStockVariants"`
}

type LowStockVariant struct {
	Name              string `json:"name"`
	SKU               string `json:"sku"`
	CurrentStock      int    `json:"currentStock"`
	LowStockThreshold int    `json:"lowStockThreshold"`
}

// StockStatus filters products by the stock level of their variants.
type StockStatus string

const (
	StockStatusInStock    StockStatus = "in-stock"
	StockStatusLowStock   StockStatus = "low-stock"
	StockStatusOutOfStock StockStatus = "out-of-stock"
)

func (s StockStatus) Validate() error {
	switch s {
	case StockStatusInStock, StockStatusLowStock, StockStatusOutOfStock:
		return nil
	default:
		return ErrInvalidEnum
	}
}
