package http

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/stockroom/internal/model"
	"github.com/tuanvumaihuynh/stockroom/internal/repository"
	"github.com/tuanvumaihuynh/stockroom/internal/service"
)

type variantRequest struct {
	Name              string          `json:"name" validate:"required"`
	SKU               string          `json:"sku" validate:"required"`
	CostPrice         decimal.Decimal `json:"costPrice" validate:"gte=0"`
	SellingPrice      decimal.Decimal `json:"sellingPrice" validate:"gte=0"`
	CurrentStock      int             `json:"currentStock" validate:"gte=0"`
	LowStockThreshold int             `json:"lowStockThreshold" validate:"gte=0"`
	Location          string          `json:"location"`
}

type productRequest struct {
	Name        string           `json:"name" validate:"required"`
	Description string           `json:"description"`
	Category    string           `json:"category" validate:"required"`
	Brand       string           `json:"brand" validate:"required"`
	Supplier    string           `json:"supplier" validate:"required"`
	Variants    []variantRequest `json:"variants" validate:"required,min=1,dive"`
}

func (req productRequest) params() service.ProductParams {
	variants := make([]service.VariantParams, len(req.Variants))
	for i, v := range req.Variants {
		variants[i] = service.VariantParams{
			Name:              v.Name,
			SKU:               v.SKU,
			CostPrice:         v.CostPrice,
			SellingPrice:      v.SellingPrice,
			CurrentStock:      v.CurrentStock,
			LowStockThreshold: v.LowStockThreshold,
			Location:          v.Location,
		}
	}

	return service.ProductParams{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Brand:       req.Brand,
		Supplier:    req.Supplier,
		Variants:    variants,
	}
}

type listProductsQuery struct {
	Search      string
	Category    string
	Brand       string
	Supplier    string
	StockStatus model.StockStatus `validate:"omitempty,enum"`
}

type listProductsResponse struct {
	Products   []model.Product  `json:"products"`
	Pagination model.Pagination `json:"pagination"`
}

func (s *Service) createProduct(w http.ResponseWriter, r *http.Request) error {
	var req productRequest
	if err := s.decodeBody(r, &req, false); err != nil {
		return err
	}

	product, err := s.svcs.Product.CreateProduct(r.Context(), req.params())
	if err != nil {
		return fmt.Errorf("product service create product: %w", err)
	}

	return s.writeJSON(w, r, http.StatusCreated, product)
}

func (s *Service) listProducts(w http.ResponseWriter, r *http.Request) error {
	page, err := bindPage(r)
	if err != nil {
		return err
	}

	var q listProductsQuery
	for name, dest := range map[string]*string{
		"search":   &q.Search,
		"category": &q.Category,
		"brand":    &q.Brand,
		"supplier": &q.Supplier,
	} {
		if *dest, err = queryValue[string](r, name); err != nil {
			return err
		}
	}
	if q.StockStatus, err = queryValue[model.StockStatus](r, "stockStatus"); err != nil {
		return err
	}
	if err := s.validator.Validate(q); err != nil {
		return err
	}

	res, err := s.svcs.Product.ListProducts(r.Context(), service.ListProductsParams{
		Page:        page.Page,
		Limit:       page.Limit,
		Search:      q.Search,
		Category:    q.Category,
		Brand:       q.Brand,
		Supplier:    q.Supplier,
		StockStatus: q.StockStatus,
	})
	if err != nil {
		return fmt.Errorf("product service list products: %w", err)
	}

	return s.writeJSON(w, r, http.StatusOK, listProductsResponse{
		Products:   orEmpty(res.Products),
		Pagination: res.Pagination,
	})
}

func (s *Service) getProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "product")
	if err != nil {
		return err
	}

	product, err := s.svcs.Product.GetProduct(r.Context(), id)
	if err != nil {
		return fmt.Errorf("product service get product: %w", err)
	}

	return s.writeJSON(w, r, http.StatusOK, product)
}

func (s *Service) updateProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "product")
	if err != nil {
		return err
	}

	var req productRequest
	if err := s.decodeBody(r, &req, false); err != nil {
		return err
	}

	product, err := s.svcs.Product.UpdateProduct(r.Context(), id, req.params())
	if err != nil {
		return fmt.Errorf("product service update product: %w", err)
	}

	return s.writeJSON(w, r, http.StatusOK, product)
}

func (s *Service) deleteProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "product")
	if err != nil {
		return err
	}

	if err := s.svcs.Product.DeleteProduct(r.Context(), id); err != nil {
		return fmt.Errorf("product service delete product: %w", err)
	}

	return s.writeJSON(w, r, http.StatusOK, messageResponse{Message: "Product deleted successfully"})
}

func (s *Service) listLowStock(w http.ResponseWriter, r *http.Request) error {
	products, err := s.svcs.Product.ListLowStock(r.Context())
	if err != nil {
		return fmt.Errorf("product service list low stock: %w", err)
	}

	return s.writeJSON(w, r, http.StatusOK, orEmpty(products))
}

func (s *Service) listDistinct(field repository.ProductField) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		values, err := s.svcs.Product.ListDistinct(r.Context(), field)
		if err != nil {
			return fmt.Errorf("product service list distinct %s: %w", field, err)
		}

		return s.writeJSON(w, r, http.StatusOK, orEmpty(values))
	}
}
