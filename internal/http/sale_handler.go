package http

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/stockroom/internal/model"
	"github.com/tuanvumaihuynh/stockroom/internal/service"
)

type postSaleItemRequest struct {
	Product            uuid.UUID        `json:"product" validate:"required"`
	Variant            string           `json:"variant" validate:"required"`
	Quantity           int              `json:"quantity" validate:"gt=0"`
	ActualSellingPrice *decimal.Decimal `json:"actualSellingPrice" validate:"omitempty,gte=0"`
}

type postSaleRequest struct {
	InvoiceNumber string                `json:"invoiceNumber" validate:"max=64"`
	Customer      string                `json:"customer"`
	Items         []postSaleItemRequest `json:"items" validate:"required,min=1,dive"`
	PaymentMethod string                `json:"paymentMethod"`
	PaymentStatus model.PaymentStatus   `json:"paymentStatus"`
	FlagStatus    model.FlagStatus      `json:"flagStatus" validate:"omitempty,enum"`
	Notes         string                `json:"notes"`
}

type updateSaleRequest struct {
	Customer      *string              `json:"customer"`
	PaymentMethod *string              `json:"paymentMethod"`
	PaymentStatus *model.PaymentStatus `json:"paymentStatus" validate:"omitempty,enum"`
	FlagStatus    *model.FlagStatus    `json:"flagStatus" validate:"omitempty,enum"`
	Notes         *string              `json:"notes"`
}

type listSalesResponse struct {
	Sales      []model.Sale     `json:"sales"`
	Pagination model.Pagination `json:"pagination"`
}

func (s *Service) postSale(w http.ResponseWriter, r *http.Request) error {
	var req postSaleRequest
	if err := s.decodeBody(r, &req, false); err != nil {
		return err
	}

	items := make([]service.PostSaleItemParams, len(req.Items))
	for i, item := range req.Items {
		items[i] = service.PostSaleItemParams{
			ProductID:          item.Product,
			Variant:            item.Variant,
			Quantity:           item.Quantity,
			ActualSellingPrice: item.ActualSellingPrice,
		}
	}

	sale, err := s.svcs.Sale.PostSale(r.Context(), service.PostSaleParams{
		InvoiceNumber: req.InvoiceNumber,
		Customer:      req.Customer,
		Items:         items,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: req.PaymentStatus,
		FlagStatus:    req.FlagStatus,
		Notes:         req.Notes,
	})
	if err != nil {
		return fmt.Errorf("sale service post sale: %w", err)
	}

	return s.writeJSON(w, r, http.StatusCreated, sale)
}

func (s *Service) listSales(w http.ResponseWriter, r *http.Request) error {
	page, err := bindPage(r)
	if err != nil {
		return err
	}

	search, err := queryValue[string](r, "search")
	if err != nil {
		return err
	}
	paymentStatus, err := queryValue[model.PaymentStatus](r, "paymentStatus")
	if err != nil {
		return err
	}
	startDate, err := dateQuery(r, "startDate")
	if err != nil {
		return err
	}
	endDate, err := dateQuery(r, "endDate")
	if err != nil {
		return err
	}

	res, err := s.svcs.Sale.ListSales(r.Context(), service.ListSalesParams{
		Page:          page.Page,
		Limit:         page.Limit,
		Search:        search,
		StartDate:     startDate,
		EndDate:       endDate,
		PaymentStatus: paymentStatus,
	})
	if err != nil {
		return fmt.Errorf("sale service list sales: %w", err)
	}

	return s.writeJSON(w, r, http.StatusOK, listSalesResponse{
		Sales:      orEmpty(res.Sales),
		Pagination: res.Pagination,
	})
}

func (s *Service) getSale(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "sale")
	if err != nil {
		return err
	}

	sale, err := s.svcs.Sale.GetSale(r.Context(), id)
	if err != nil {
		return fmt.Errorf("sale service get sale: %w", err)
	}

	return s.writeJSON(w, r, http.StatusOK, sale)
}

func (s *Service) updateSale(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "sale")
	if err != nil {
		return err
	}

	var req updateSaleRequest
	if err := s.decodeBody(r, &req, false); err != nil {
		return err
	}

	sale, err := s.svcs.Sale.UpdateSale(r.Context(), id, service.UpdateSaleParams{
		Customer:      req.Customer,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: req.PaymentStatus,
		FlagStatus:    req.FlagStatus,
		Notes:         req.Notes,
	})
	if err != nil {
		return fmt.Errorf("sale service update sale: %w", err)
	}

	return s.writeJSON(w, r, http.StatusOK, sale)
}

func (s *Service) deleteSale(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "sale")
	if err != nil {
		return err
	}

	if err := s.svcs.Sale.DeleteSale(r.Context(), id); err != nil {
		return fmt.Errorf("sale service delete sale: %w", err)
	}

	return s.writeJSON(w, r, http.StatusOK, messageResponse{Message: "Sale deleted successfully"})
}
