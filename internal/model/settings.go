package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Settings struct {
	BusinessName         string               `json:"businessName"`
	Email                string               `json:"email,omitempty"`
	Phone                string               `json:"phone,omitempty"`
	Address              string               `json:"address,omitempty"`
	Currency             string               `json:"currency"`
	LowStockThreshold    int                  `json:"lowStockThreshold"`
	TaxRate              decimal.Decimal      `json:"taxRate"`
	NotificationSettings NotificationSettings `json:"notificationSettings"`
	UpdatedAt            time.Time            `json:"updatedAt"`
}

type NotificationSettings struct {
	LowStock     bool `json:"lowStock"`
	NewSales     bool `json:"newSales"`
	PriceChanges bool `json:"priceChanges"`
}

// DefaultSettings returns the settings used until an administrator saves their own.
func DefaultSettings() Settings {
	return Settings{
		BusinessName:      "Auto Parts Store",
		Currency:          "USD",
		LowStockThreshold: 5,
		TaxRate:           decimal.Zero,
		NotificationSettings: NotificationSettings{
			LowStock:     true,
			NewSales:     true,
			PriceChanges: true,
		},
	}
}

// Allows reports whether notifications of type t are enabled.
func (n NotificationSettings) Allows(t NotificationType) bool {
	switch t {
	case NotificationTypeLowStock:
		return n.LowStock
	case NotificationTypeNewSale:
		return n.NewSales
	case NotificationTypePriceChange:
		return n.PriceChanges
	default:
		return true
	}
}
