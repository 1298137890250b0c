package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "Completed"
	PaymentStatusPending   PaymentStatus = "Pending"
	PaymentStatusCancelled PaymentStatus = "Cancelled"
)

func (s PaymentStatus) Validate() error {
	switch s {
	case PaymentStatusCompleted, PaymentStatusPending, PaymentStatusCancelled:
		return nil
	default:
		return ErrInvalidEnum
	}
}

// FlagStatus is the manual documentation marker of a sale.
type FlagStatus string

const (
	FlagStatusGreen FlagStatus = "green"
	FlagStatusRed   FlagStatus = "red"
)

func (s FlagStatus) Validate() error {
	switch s {
	case FlagStatusGreen, FlagStatusRed:
		return nil
	default:
		return ErrInvalidEnum
	}
}

const DefaultPaymentMethod = "Cash"

type Sale struct {
	ID            uuid.UUID       `json:"id"`
	InvoiceNumber string          `json:"invoiceNumber"`
	Customer      string          `json:"customer,omitempty"`
	Items         []SaleItem      `json:"items"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	TotalProfit   decimal.Decimal `json:"totalProfit"`
	PaymentMethod string          `json:"paymentMethod"`
	PaymentStatus PaymentStatus   `json:"paymentStatus"`
	FlagStatus    FlagStatus      `json:"flagStatus"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// SaleItem snapshots the variant prices at the time of sale.
type SaleItem struct {
	Product            uuid.UUID       `json:"product"`
	Variant            string          `json:"variant"`
	Quantity           int             `json:"quantity"`
	CostPrice          decimal.Decimal `json:"costPrice"`
	SellingPrice       decimal.Decimal `json:"sellingPrice"`
	ActualSellingPrice decimal.Decimal `json:"actualSellingPrice"`
	Profit             decimal.Decimal `json:"profit"`

	// ProductInfo is filled by read paths only and never persisted.
	ProductInfo *ProductSummary `json:"productInfo,omitempty"`
}

// LineTotal is the amount charged for the line.
func (i SaleItem) LineTotal() decimal.Decimal {
	return i.ActualSellingPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
