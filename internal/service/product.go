package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/stockroom/internal/apperr"
	"github.com/tuanvumaihuynh/stockroom/internal/model"
	"github.com/tuanvumaihuynh/stockroom/internal/notification"
	"github.com/tuanvumaihuynh/stockroom/internal/repository"
	"github.com/tuanvumaihuynh/stockroom/internal/storage/db"
	"github.com/tuanvumaihuynh/stockroom/pkg/ptr"
)

type VariantParams struct {
	Name         string
	SKU          string
	CostPrice    decimal.Decimal
	SellingPrice decimal.Decimal
	CurrentStock int
	// LowStockThreshold falls back to the configured default when zero.
	LowStockThreshold int
	Location          string
}

// ProductParams describes a product on create and its full replacement on update.
type ProductParams struct {
	Name        string
	Description string
	Category    string
	Brand       string
	Supplier    string
	Variants    []VariantParams
}

type ListProductsParams struct {
	Page        int
	Limit       int
	Search      string
	Category    string
	Brand       string
	Supplier    string
	StockStatus model.StockStatus
}

type ListProductsResult struct {
	Products   []model.Product
	Pagination model.Pagination
}

type ProductService interface {
	CreateProduct(ctx context.Context, params ProductParams) (model.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error)
	ListProducts(ctx context.Context, params ListProductsParams) (ListProductsResult, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, params ProductParams) (model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListLowStock(ctx context.Context) ([]model.LowStockProduct, error)
	ListDistinct(ctx context.Context, field repository.ProductField) ([]string, error)
}

type productService struct {
	db           db.DB
	logger       *slog.Logger
	productRepo  repository.ProductRepository
	settingsRepo repository.SettingsRepository
	sink         NotificationSink
}

func NewProductService(
	db db.DB,
	logger *slog.Logger,
	productRepo repository.ProductRepository,
	settingsRepo repository.SettingsRepository,
	sink NotificationSink,
) ProductService {
	return &productService{
		db:           db,
		logger:       logger.With(slog.String("service", "product")),
		productRepo:  productRepo,
		settingsRepo: settingsRepo,
		sink:         sink,
	}
}

func (s *productService) CreateProduct(ctx context.Context, params ProductParams) (model.Product, error) {
	if err := checkVariants(params.Variants); err != nil {
		return model.Product{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.Product{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	now := time.Now()
	var product model.Product
	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		productRepo := s.productRepo.WithDB(tx)

		if err := s.checkSKUsAvailable(ctx, productRepo, params.Variants, nil); err != nil {
			return err
		}

		threshold, err := s.defaultThreshold(ctx, tx)
		if err != nil {
			return err
		}

		product = buildProduct(id, params, threshold, now, now)
		if err := productRepo.CreateProduct(ctx, product); err != nil {
			return fmt.Errorf("product repository create product: %w", err)
		}

		return nil
	}); err != nil {
		return model.Product{}, conflictOr(fmt.Errorf("db with tx: %w", err))
	}

	publishAll(ctx, s.logger, s.sink, []notification.Event{{
		Type:         model.NotificationTypeProductAdded,
		Message:      "New product added: " + product.Name,
		RelatedTo:    ptr.New(product.ID),
		RelatedModel: model.RelatedModelProduct,
	}})

	return product, nil
}

func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	product, err := s.productRepo.GetProduct(ctx, id)
	if err != nil {
		return model.Product{}, fmt.Errorf("product repository get product: %w", err)
	}
	return product, nil
}

func (s *productService) ListProducts(ctx context.Context, params ListProductsParams) (ListProductsResult, error) {
	page, limit, offset := pageBounds(params.Page, params.Limit, 10)

	products, total, err := s.productRepo.ListProducts(ctx, repository.ListProductsParams{
		Search:      params.Search,
		Category:    params.Category,
		Brand:       params.Brand,
		Supplier:    params.Supplier,
		StockStatus: params.StockStatus,
		Offset:      offset,
		Limit:       limit,
	})
	if err != nil {
		return ListProductsResult{}, fmt.Errorf("product repository list products: %w", err)
	}

	return ListProductsResult{
		Products:   products,
		Pagination: model.NewPagination(total, page, limit),
	}, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, params ProductParams) (model.Product, error) {
	if err := checkVariants(params.Variants); err != nil {
		return model.Product{}, err
	}

	var product model.Product
	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		productRepo := s.productRepo.WithDB(tx)

		current, err := productRepo.GetProductForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("product repository get product for update: %w", err)
		}

		if err := s.checkSKUsAvailable(ctx, productRepo, params.Variants, &id); err != nil {
			return err
		}

		threshold, err := s.defaultThreshold(ctx, tx)
		if err != nil {
			return err
		}

		product = buildProduct(id, params, threshold, current.CreatedAt, time.Now())
		if err := productRepo.UpdateProduct(ctx, product); err != nil {
			return fmt.Errorf("product repository update product: %w", err)
		}

		return nil
	}); err != nil {
		return model.Product{}, conflictOr(fmt.Errorf("db with tx: %w", err))
	}

	publishAll(ctx, s.logger, s.sink, []notification.Event{{
		Type:         model.NotificationTypeProductUpdated,
		Message:      "Product updated: " + product.Name,
		RelatedTo:    ptr.New(product.ID),
		RelatedModel: model.RelatedModelProduct,
	}})

	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	var product model.Product
	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		productRepo := s.productRepo.WithDB(tx)

		var err error
		product, err = productRepo.GetProductForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("product repository get product for update: %w", err)
		}

		if err := productRepo.DeleteProduct(ctx, id); err != nil {
			return fmt.Errorf("product repository delete product: %w", err)
		}

		return nil
	}); err != nil {
		return conflictOr(fmt.Errorf("db with tx: %w", err))
	}

	publishAll(ctx, s.logger, s.sink, []notification.Event{{
		Type:         model.NotificationTypeProductDeleted,
		Message:      "Product deleted: " + product.Name,
		RelatedTo:    ptr.New(product.ID),
		RelatedModel: model.RelatedModelProduct,
	}})

	return nil
}

func (s *productService) ListLowStock(ctx context.Context) ([]model.LowStockProduct, error) {
	products, err := s.productRepo.ListLowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("product repository list low stock: %w", err)
	}
	return products, nil
}

func (s *productService) ListDistinct(ctx context.Context, field repository.ProductField) ([]string, error) {
	values, err := s.productRepo.ListDistinct(ctx, field)
	if err != nil {
		return nil, fmt.Errorf("product repository list distinct: %w", err)
	}
	return values, nil
}

func (s *productService) checkSKUsAvailable(
	ctx context.Context,
	productRepo repository.ProductRepository,
	variants []VariantParams,
	excludeProductID *uuid.UUID,
) error {
	skus := make([]string, 0, len(variants))
	for _, v := range variants {
		skus = append(skus, v.SKU)
	}

	existing, err := productRepo.FindExistingSKUs(ctx, skus, excludeProductID)
	if err != nil {
		return fmt.Errorf("product repository find existing skus: %w", err)
	}
	if len(existing) > 0 {
		return apperr.DuplicateSKUErr.WithMsgf("SKUs already exist: %s", strings.Join(existing, ", "))
	}

	return nil
}

func (s *productService) defaultThreshold(ctx context.Context, tx db.DB) (int, error) {
	settings, found, err := s.settingsRepo.WithDB(tx).GetSettings(ctx)
	if err != nil {
		return 0, fmt.Errorf("settings repository get settings: %w", err)
	}
	if !found || settings.LowStockThreshold < 1 {
		return model.DefaultSettings().LowStockThreshold, nil
	}
	return settings.LowStockThreshold, nil
}

// checkVariants enforces the rules that hold within a single product.
func checkVariants(variants []VariantParams) error {
	if len(variants) == 0 {
		return apperr.ValidationErr.WithMsg("a product must have at least one variant")
	}

	names := make(map[string]struct{}, len(variants))
	skus := make(map[string]struct{}, len(variants))
	for _, v := range variants {
		if _, ok := names[v.Name]; ok {
			return apperr.DuplicateVariantNameErr.WithMsgf("variant name %q is used more than once", v.Name)
		}
		names[v.Name] = struct{}{}

		if _, ok := skus[v.SKU]; ok {
			return apperr.DuplicateSKUErr.WithMsgf("SKU %q is used more than once", v.SKU)
		}
		skus[v.SKU] = struct{}{}
	}

	return nil
}

func buildProduct(id uuid.UUID, params ProductParams, threshold int, createdAt, updatedAt time.Time) model.Product {
	variants := make([]model.Variant, 0, len(params.Variants))
	for _, v := range params.Variants {
		lowStock := v.LowStockThreshold
		if lowStock < 1 {
			lowStock = threshold
		}
		variants = append(variants, model.Variant{
			Name:              v.Name,
			SKU:               v.SKU,
			CostPrice:         v.CostPrice,
			SellingPrice:      v.SellingPrice,
			CurrentStock:      v.CurrentStock,
			LowStockThreshold: lowStock,
			Location:          v.Location,
		})
	}

	return model.Product{
		ID:          id,
		Name:        params.Name,
		Description: params.Description,
		Category:    params.Category,
		Brand:       params.Brand,
		Supplier:    params.Supplier,
		Variants:    variants,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}
