package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypeLowStock       NotificationType = "low_stock"
	NotificationTypeNewSale        NotificationType = "new_sale"
	NotificationTypePriceChange    NotificationType = "price_change"
	NotificationTypeProductAdded   NotificationType = "product_added"
	NotificationTypeProductUpdated NotificationType = "product_updated"
	NotificationTypeProductDeleted NotificationType = "product_deleted"
	NotificationTypeSaleUpdated    NotificationType = "sale_updated"
	NotificationTypeStockUpdate    NotificationType = "stock_update"
)

const (
	RelatedModelProduct = "Product"
	RelatedModelSale    = "Sale"
)

type Notification struct {
	ID           uuid.UUID        `json:"id"`
	Type         NotificationType `json:"type"`
	Message      string           `json:"message"`
	RelatedTo    *uuid.UUID       `json:"relatedTo,omitempty"`
	RelatedModel string           `json:"relatedModel,omitempty"`
	IsRead       bool             `json:"isRead"`
	CreatedAt    time.Time        `json:"createdAt"`
}
