package event

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
)

const TopicSalePosted = "sale.posted"

type SalePostedEvent struct {
	SaleID        string           `json:"sale_id"`
	InvoiceNumber string           `json:"invoice_number"`
	TotalAmount   decimal.Decimal  `json:"total_amount"`
	TotalProfit   decimal.Decimal  `json:"total_profit"`
	PaymentStatus string           `json:"payment_status"`
	Items         []SalePostedItem `json:"items"`
	PostedAt      time.Time        `json:"posted_at"`
}

type SalePostedItem struct {
	ProductID      string `json:"product_id"`
	Variant        string `json:"variant"`
	Quantity       int    `json:"quantity"`
	RemainingStock int    `json:"remaining_stock"`
	LowStock       bool   `json:"low_stock"`
}

func (s *Service) handleSalePostedEvent(ctx context.Context, ev SalePostedEvent) error {
	s.logger.InfoContext(ctx, "handling sale posted event",
		slog.String("sale_id", ev.SaleID),
		slog.String("invoice_number", ev.InvoiceNumber),
		slog.String("total_amount", ev.TotalAmount.String()),
		slog.Int("items", len(ev.Items)),
	)

	for _, item := range ev.Items {
		if item.LowStock {
			s.logger.WarnContext(ctx, "variant reached low stock",
				slog.String("product_id", item.ProductID),
				slog.String("variant", item.Variant),
				slog.Int("remaining_stock", item.RemainingStock),
			)
		}
	}

	return nil
}
