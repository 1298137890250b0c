package http

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/stockroom/internal/service"
)

type addStockRequest struct {
	ProductIDs []uuid.UUID `json:"productIds"`
	Quantity   int         `json:"quantity" validate:"gt=0,lte=2147483647"`
}

type markOutOfStockRequest struct {
	ProductIDs []uuid.UUID `json:"productIds"`
}

type decreasePriceRequest struct {
	ProductIDs []uuid.UUID     `json:"productIds"`
	Percentage decimal.Decimal `json:"percentage"`
}

type batchResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Affected int    `json:"affected"`
}

func newBatchResponse(res service.BatchResult) batchResponse {
	return batchResponse{Success: true, Message: res.Message, Affected: res.Affected}
}

func (s *Service) addStock(w http.ResponseWriter, r *http.Request) error {
	var req addStockRequest
	if err := s.decodeBody(r, &req, false); err != nil {
		return err
	}

	res, err := s.svcs.Batch.AddStock(r.Context(), req.ProductIDs, req.Quantity)
	if err != nil {
		return fmt.Errorf("batch service add stock: %w", err)
	}

	return s.writeJSON(w, r, http.StatusOK, newBatchResponse(res))
}

func (s *Service) markOutOfStock(w http.ResponseWriter, r *http.Request) error {
	var req markOutOfStockRequest
	if err := s.decodeBody(r, &req, false); err != nil {
		return err
	}

	res, err := s.svcs.Batch.MarkOutOfStock(r.Context(), req.ProductIDs)
	if err != nil {
		return fmt.Errorf("batch service mark out of stock: %w", err)
	}

	return s.writeJSON(w, r, http.StatusOK, newBatchResponse(res))
}

func (s *Service) decreasePrice(w http.ResponseWriter, r *http.Request) error {
	var req decreasePriceRequest
	if err := s.decodeBody(r, &req, false); err != nil {
		return err
	}

	res, err := s.svcs.Batch.DecreasePrice(r.Context(), req.ProductIDs, req.Percentage)
	if err != nil {
		return fmt.Errorf("batch service decrease price: %w", err)
	}

	return s.writeJSON(w, r, http.StatusOK, newBatchResponse(res))
}
