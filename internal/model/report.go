package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SalesSummary struct {
	TotalSales          int64           `json:"totalSales"`
	TotalRevenue        decimal.Decimal `json:"totalRevenue"`
	TotalProfit         decimal.Decimal `json:"totalProfit"`
	AverageProfitMargin decimal.Decimal `json:"averageProfitMargin"`
	TotalProducts       int64           `json:"totalProducts"`
	LowStockItems       int64           `json:"lowStockItems"`
}

// SalesBucket aggregates sales over one interval, keyed by its formatted period.
type SalesBucket struct {
	Period  string          `json:"period"`
	Revenue decimal.Decimal `json:"revenue"`
	Profit  decimal.Decimal `json:"profit"`
	Count   int64           `json:"count"`
}

type TopProduct struct {
	Product      uuid.UUID       `json:"product"`
	Variant      string          `json:"variant"`
	ProductName  string          `json:"productName"`
	Brand        string          `json:"brand"`
	Category     string          `json:"category"`
	QuantitySold int64           `json:"quantitySold"`
	Revenue      decimal.Decimal `json:"revenue"`
	Profit       decimal.Decimal `json:"profit"`
}

type Interval string

const (
	IntervalDay   Interval = "day"
	IntervalWeek  Interval = "week"
	IntervalMonth Interval = "month"
	IntervalYear  Interval = "year"
)

func (i Interval) Validate() error {
	switch i {
	case IntervalDay, IntervalWeek, IntervalMonth, IntervalYear:
		return nil
	default:
		return ErrInvalidEnum
	}
}

type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int64 `json:"pages"`
}

// NewPagination computes the page count for total items split into pages of limit.
func NewPagination(total int64, page, limit int) Pagination {
	var pages int64
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return Pagination{Total: total, Page: page, Limit: limit, Pages: pages}
}

// ProductProfit aggregates sold items of one product, or of one variant when Variant is set.
type ProductProfit struct {
	Product      uuid.UUID       `json:"productId"`
	ProductName  string          `json:"productName"`
	Brand        string          `json:"brand,omitempty"`
	Category     string          `json:"category,omitempty"`
	Variant      string          `json:"variantName,omitempty"`
	SKU          string          `json:"sku,omitempty"`
	QuantitySold int64           `json:"quantitySold"`
	Revenue      decimal.Decimal `json:"revenue"`
	Cost         decimal.Decimal `json:"cost"`
	Profit       decimal.Decimal `json:"profit"`
	Margin       decimal.Decimal `json:"margin"`
}

type ProductProfits struct {
	Products []ProductProfit `json:"products"`
	Variants []ProductProfit `json:"variants"`
}

// Margin returns profit as a percentage of revenue, zero when there is no revenue.
func Margin(profit, revenue decimal.Decimal) decimal.Decimal {
	if !revenue.IsPositive() {
		return decimal.Zero
	}
	return profit.Div(revenue).Mul(decimal.NewFromInt(100))
}
