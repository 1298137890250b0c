package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/stockroom/internal/apperr"
	"github.com/tuanvumaihuynh/stockroom/internal/model"
	"github.com/tuanvumaihuynh/stockroom/internal/storage/db"
)

const variantSKUConstraint = "product_variants_sku_key"

type ListProductsParams struct {
	Search      string
	Category    string
	Brand       string
	Supplier    string
	StockStatus model.StockStatus
	Offset      int
	Limit       int
}

// ProductField names the product attributes that can be listed as distinct values.
type ProductField string

const (
	ProductFieldCategory ProductField = "category"
	ProductFieldBrand    ProductField = "brand"
	ProductFieldSupplier ProductField = "supplier"
)

type UpdateVariantStockParams struct {
	ProductID     uuid.UUID
	Variant       string
	PreviousStock int
	NewStock      int
}

type ProductRepository interface {
	WithDB(db db.DB) ProductRepository
	CreateProduct(ctx context.Context, product model.Product) error
	GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error)
	// GetProductForUpdate locks the product and its variants until the transaction ends.
	GetProductForUpdate(ctx context.Context, id uuid.UUID) (model.Product, error)
	ListProductsForUpdate(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)
	ListProducts(ctx context.Context, params ListProductsParams) ([]model.Product, int64, error)
	UpdateProduct(ctx context.Context, product model.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	// UpdateVariantStock writes the new stock only if it still equals PreviousStock.
	UpdateVariantStock(ctx context.Context, params UpdateVariantStockParams) error
	SaveVariants(ctx context.Context, productID uuid.UUID, variants []model.Variant, updatedAt time.Time) error
	FindExistingSKUs(ctx context.Context, skus []string, excludeProductID *uuid.UUID) ([]string, error)
	ListLowStock(ctx context.Context) ([]model.LowStockProduct, error)
	ListDistinct(ctx context.Context, field ProductField) ([]string, error)
}

type productRepository struct {
	db db.DB
}

func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) WithDB(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) CreateProduct(ctx context.Context, product model.Product) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO products (id, name, description, category, brand, supplier, created_at, updated_at)
		VALUES (@id, @name, @description, @category, @brand, @supplier, @created_at, @updated_at)
	`, pgx.NamedArgs{
		"id":          product.ID,
		"name":        product.Name,
		"description": product.Description,
		"category":    product.Category,
		"brand":       product.Brand,
		"supplier":    product.Supplier,
		"created_at":  product.CreatedAt,
		"updated_at":  product.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	if err := r.insertVariants(ctx, product.ID, product.Variants); err != nil {
		return err
	}

	return nil
}

func (r productRepository) insertVariants(ctx context.Context, productID uuid.UUID, variants []model.Variant) error {
	batch := &pgx.Batch{}
	for i, v := range variants {
		batch.Queue(`
			INSERT INTO product_variants (
				product_id, position, name, sku, cost_price, selling_price,
				current_stock, low_stock_threshold, location
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, productID, i, v.Name, v.SKU, v.CostPrice, v.SellingPrice, v.CurrentStock, v.LowStockThreshold, v.Location)
	}

	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		if db.IsUniqueViolation(err, variantSKUConstraint) {
			return apperr.DuplicateSKUErr.WrapParent(err)
		}
		return fmt.Errorf("insert variants: %w", err)
	}

	return nil
}

const selectProductColumns = `id, name, description, category, brand, supplier, created_at, updated_at`

func (r productRepository) GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	return r.getProduct(ctx, id, "")
}

func (r productRepository) GetProductForUpdate(ctx context.Context, id uuid.UUID) (model.Product, error) {
	return r.getProduct(ctx, id, "FOR UPDATE")
}

func (r productRepository) getProduct(ctx context.Context, id uuid.UUID, lock string) (model.Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+selectProductColumns+` FROM products WHERE id = $1 `+lock, id)

	product, err := scanProduct(row)
	if err != nil {
		if db.IsNoRows(err) {
			return model.Product{}, apperr.ProductNotFoundErr.WithMsgf("product %s not found", id)
		}
		return model.Product{}, fmt.Errorf("select product: %w", err)
	}

	variants, err := r.listVariants(ctx, []uuid.UUID{id}, lock)
	if err != nil {
		return model.Product{}, err
	}
	product.Variants = variants[id]
	if product.Variants == nil {
		product.Variants = []model.Variant{}
	}

	return product, nil
}

func (r productRepository) ListProductsForUpdate(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+selectProductColumns+`
		FROM products
		WHERE id = ANY(@ids::uuid[])
		ORDER BY id
		FOR UPDATE
	`, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}

	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Product, error) {
		return scanProduct(row)
	})
	if err != nil {
		return nil, fmt.Errorf("collect products: %w", err)
	}

	return r.attachVariants(ctx, products, "FOR UPDATE")
}

func (r productRepository) ListProducts(ctx context.Context, params ListProductsParams) ([]model.Product, int64, error) {
	const filter = `
		WHERE (@search = '' OR p.name ILIKE '%' || @search || '%'
				OR p.description ILIKE '%' || @search || '%'
				OR EXISTS (SELECT 1 FROM product_variants v WHERE v.product_id = p.id AND v.sku ILIKE '%' || @search || '%'))
			AND (@category = '' OR p.category = @category)
			AND (@brand = '' OR p.brand = @brand)
			AND (@supplier = '' OR p.supplier = @supplier)
			AND (
				@stock_status = ''
				OR (@stock_status = 'in-stock' AND EXISTS (
					SELECT 1 FROM product_variants v
					WHERE v.product_id = p.id AND v.current_stock > 0 AND v.current_stock > v.low_stock_threshold))
				OR (@stock_status = 'low-stock' AND EXISTS (
					SELECT 1 FROM product_variants v
					WHERE v.product_id = p.id AND v.current_stock > 0 AND v.current_stock <= v.low_stock_threshold))
				OR (@stock_status = 'out-of-stock' AND EXISTS (
					SELECT 1 FROM product_variants v
					WHERE v.product_id = p.id AND v.current_stock = 0))
			)
	`
	args := pgx.NamedArgs{
		"search":       params.Search,
		"category":     params.Category,
		"brand":        params.Brand,
		"supplier":     params.Supplier,
		"stock_status": string(params.StockStatus),
		"offset":       params.Offset,
		"limit":        params.Limit,
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products p `+filter, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT p.id, p.name, p.description, p.category, p.brand, p.supplier, p.created_at, p.updated_at
		FROM products p `+filter+`
		ORDER BY p.updated_at DESC, p.id
		OFFSET @offset LIMIT @limit
	`, args)
	if err != nil {
		return nil, 0, fmt.Errorf("select products: %w", err)
	}

	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Product, error) {
		return scanProduct(row)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("collect products: %w", err)
	}

	products, err = r.attachVariants(ctx, products, "")
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r productRepository) UpdateProduct(ctx context.Context, product model.Product) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET name = @name, description = @description, category = @category,
			brand = @brand, supplier = @supplier, updated_at = @updated_at
		WHERE id = @id
	`, pgx.NamedArgs{
		"id":          product.ID,
		"name":        product.Name,
		"description": product.Description,
		"category":    product.Category,
		"brand":       product.Brand,
		"supplier":    product.Supplier,
		"updated_at":  product.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ProductNotFoundErr.WithMsgf("product %s not found", product.ID)
	}

	if _, err := r.db.Exec(ctx, `DELETE FROM product_variants WHERE product_id = $1`, product.ID); err != nil {
		return fmt.Errorf("delete variants: %w", err)
	}

	return r.insertVariants(ctx, product.ID, product.Variants)
}

func (r productRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ProductNotFoundErr.WithMsgf("product %s not found", id)
	}
	return nil
}

func (r productRepository) UpdateVariantStock(ctx context.Context, params UpdateVariantStockParams) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE product_variants
		SET current_stock = @new_stock
		WHERE product_id = @product_id AND name = @variant AND current_stock = @previous_stock
	`, pgx.NamedArgs{
		"product_id":     params.ProductID,
		"variant":        params.Variant,
		"previous_stock": params.PreviousStock,
		"new_stock":      params.NewStock,
	})
	if err != nil {
		if db.IsCheckViolation(err) {
			return apperr.InsufficientStockErr.WrapParent(err)
		}
		return fmt.Errorf("update variant stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.TransactionConflictErr.WithMsgf(
			"stock of %s on product %s changed concurrently, please retry", params.Variant, params.ProductID)
	}

	if _, err := r.db.Exec(ctx, `UPDATE products SET updated_at = NOW() WHERE id = $1`, params.ProductID); err != nil {
		return fmt.Errorf("touch product: %w", err)
	}

	return nil
}

func (r productRepository) SaveVariants(ctx context.Context, productID uuid.UUID, variants []model.Variant, updatedAt time.Time) error {
	batch := &pgx.Batch{}
	for _, v := range variants {
		batch.Queue(`
			UPDATE product_variants
			SET cost_price = $3, selling_price = $4, current_stock = $5, low_stock_threshold = $6, location = $7
			WHERE product_id = $1 AND name = $2
		`, productID, v.Name, v.CostPrice, v.SellingPrice, v.CurrentStock, v.LowStockThreshold, v.Location)
	}
	batch.Queue(`UPDATE products SET updated_at = $2 WHERE id = $1`, productID, updatedAt)

	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("save variants: %w", err)
	}

	return nil
}

func (r productRepository) FindExistingSKUs(ctx context.Context, skus []string, excludeProductID *uuid.UUID) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT sku
		FROM product_variants
		WHERE sku = ANY(@skus::text[])
			AND (@exclude::uuid IS NULL OR product_id <> @exclude::uuid)
		ORDER BY sku
	`, pgx.NamedArgs{
		"skus":    skus,
		"exclude": excludeProductID,
	})
	if err != nil {
		return nil, fmt.Errorf("select skus: %w", err)
	}

	existing, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect skus: %w", err)
	}

	return existing, nil
}

func (r productRepository) ListLowStock(ctx context.Context) ([]model.LowStockProduct, error) {
	rows, err := r.db.Query(ctx, `
		SELECT p.id, p.name, p.brand, p.category, v.name, v.sku, v.current_stock, v.low_stock_threshold
		FROM products p
		JOIN product_variants v ON v.product_id = p.id
		WHERE v.current_stock <= v.low_stock_threshold
		ORDER BY p.name, p.id, v.position
	`)
	if err != nil {
		return nil, fmt.Errorf("select low stock variants: %w", err)
	}
	defer rows.Close()

	var (
		products []model.LowStockProduct
		index    = map[uuid.UUID]int{}
	)
	for rows.Next() {
		var (
			p model.LowStockProduct
			v model.LowStockVariant
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Brand, &p.Category, &v.Name, &v.SKU, &v.CurrentStock, &v.LowStockThreshold); err != nil {
			return nil, fmt.Errorf("scan low stock variant: %w", err)
		}

		i, ok := index[p.ID]
		if !ok {
			i = len(products)
			index[p.ID] = i
			products = append(products, p)
		}
		products[i].LowStockVariants = append(products[i].LowStockVariants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate low stock variants: %w", err)
	}

	return products, nil
}

func (r productRepository) ListDistinct(ctx context.Context, field ProductField) ([]string, error) {
	var column string
	switch field {
	case ProductFieldCategory:
		column = "category"
	case ProductFieldBrand:
		column = "brand"
	case ProductFieldSupplier:
		column = "supplier"
	default:
		return nil, fmt.Errorf("unknown product field: %s", field)
	}

	rows, err := r.db.Query(ctx, `SELECT DISTINCT `+column+` FROM products ORDER BY 1`)
	if err != nil {
		return nil, fmt.Errorf("select distinct %s: %w", column, err)
	}

	values, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect distinct %s: %w", column, err)
	}

	return values, nil
}

func (r productRepository) attachVariants(ctx context.Context, products []model.Product, lock string) ([]model.Product, error) {
	if len(products) == 0 {
		return products, nil
	}

	ids := make([]uuid.UUID, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}

	variants, err := r.listVariants(ctx, ids, lock)
	if err != nil {
		return nil, err
	}

	for i := range products {
		products[i].Variants = variants[products[i].ID]
		if products[i].Variants == nil {
			products[i].Variants = []model.Variant{}
		}
	}

	return products, nil
}

func (r productRepository) listVariants(ctx context.Context, productIDs []uuid.UUID, lock string) (map[uuid.UUID][]model.Variant, error) {
	rows, err := r.db.Query(ctx, `
		SELECT product_id, name, sku, cost_price, selling_price, current_stock, low_stock_threshold, location
		FROM product_variants
		WHERE product_id = ANY(@ids::uuid[])
		ORDER BY product_id, position
		`+lock, pgx.NamedArgs{"ids": productIDs})
	if err != nil {
		return nil, fmt.Errorf("select variants: %w", err)
	}
	defer rows.Close()

	variants := make(map[uuid.UUID][]model.Variant, len(productIDs))
	for rows.Next() {
		var (
			productID uuid.UUID
			v         model.Variant
		)
		if err := rows.Scan(&productID, &v.Name, &v.SKU, &v.CostPrice, &v.SellingPrice,
			&v.CurrentStock, &v.LowStockThreshold, &v.Location); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		variants[productID] = append(variants[productID], v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate variants: %w", err)
	}

	return variants, nil
}

func scanProduct(row pgx.Row) (model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Brand, &p.Supplier, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
